// Package server assembles the sitecraft HTTP service.
//
// NewServer wires every component from a config.Config:
//   - blueprint repository (memory, SQLite, Postgres or Redis)
//   - generation backend (disabled, Gemini or a remote HTTP service)
//   - auth provider, demo account and starter blueprints
//   - Gin router with recovery, tracing, metrics, CORS, rate limiting and
//     body size limits, optionally behind gzip compression
//
// Server Lifecycle:
//  1. Load configuration from the environment
//  2. NewServer opens the store and seeds the demo account
//  3. Run serves until Shutdown is called
//  4. Shutdown drains requests, stops background work and closes the store
//
// Example Usage:
//
//	cfg, err := config.Load()
//	srv, err := server.NewServer(ctx, cfg)
//	go srv.Run()
//	<-ctx.Done()
//	srv.Shutdown(shutdownCtx)
package server
