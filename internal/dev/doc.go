// Package dev implements watch mode for the registry server.
//
// This package implements:
//   - Polling of registry.json, the category collapse map and source roots
//   - Debounced, serialized rebuilds
//   - WebSocket notifications for connected clients
//
// # Usage
//
//	hub := dev.NewReloadHub()
//	session := dev.NewSession(dev.SessionOptions{
//	    Builder:  build.New(cfg, build.Options{}),
//	    Watcher:  dev.NewWatcherForConfig(cfg),
//	    Hub:      hub,
//	    Debounce: cfg.Serve.Debounce,
//	})
//	go session.Run(ctx)
//
// # Reload Protocol
//
// Clients connect to /_kata/reload via WebSocket.
// Messages are JSON-encoded:
//
//	{"type": "rebuilt", "buildId": "...", "built": 42, "durationMs": 120}
//	{"type": "error", "error": "KR121: Source files missing"}
package dev
