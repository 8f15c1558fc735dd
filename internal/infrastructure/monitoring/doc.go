/*
Package monitoring provides metrics collection for the share server.

# Overview

Prometheus metrics live on a per-instance registry so that several servers (and
tests) can coexist in one process.

# Features

- HTTP request metrics (latency, throughput, size) labelled by route template
- Share operation metrics (duration, error kinds)
- Bytes served and listing sizes
- Tool registry executions
- Uptime, Go runtime and process collectors

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	timer := monitoring.NewTimer(metrics, "list_folder")
	listing, err := svc.ListFolder(path, limit, snapshot)
	timer.Stop(err)
*/
package monitoring
