// Package main is the entry point for the sitecraft server.
//
// The server stores user-owned site blueprints, renders them into sanitised
// HTML, and optionally generates new blueprints from a text prompt.
//
// Configuration:
//   - Environment variables (12-factor), see internal/infrastructure/config
//   - CLI flags (override env vars)
//
// Usage:
//
//	# In-memory store, generation disabled
//	./server -port 8000
//
//	# SQLite store with Gemini generation
//	STORE_BACKEND=sqlite GENERATION_BACKEND=gemini GEMINI_API_KEY=... ./server
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
