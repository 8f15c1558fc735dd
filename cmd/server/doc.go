// Package main is the entry point for the ShareView backend server.
//
// ShareView exposes one directory tree read-only over HTTP: folder listings,
// file bytes and decoded text, metadata, glob search and the snapshot copies
// kept next to the live tree.
//
// Configuration:
//   - Environment variables (12-factor), or a YAML/TOML file via -config
//   - CLI flags (override both)
//
// Usage:
//
//	# Serve a directory
//	./server -root /srv/share -port 8000
//
//	# From a config file, development logging
//	./server -config shareview.yaml -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
