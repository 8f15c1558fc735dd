/*
Package tracing provides lightweight request tracing for the share server.

# Overview

Every HTTP request gets a span. Callers may continue an existing trace by sending
X-Trace-ID and X-Span-ID; the ids of the new span are echoed back in the same
headers. Finished spans are logged through zap by a single collector goroutine.

# Usage

	tracer := tracing.New("shareview", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	// Manual span creation
	span, ctx := tracer.StartSpan(ctx, "search")
	defer func() {
		span.Finish()
		tracer.Submit(span)
	}()

# Performance

- Buffered span collection (1000 spans), overflow is dropped with a warning
- Ids are random UUIDs
*/
package tracing
