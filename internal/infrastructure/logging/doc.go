// Package logging builds the root zap logger: sampled JSON in production,
// colored console output with LOG_DEV.
//
// Domain packages take a plain *zap.Logger; the server hands each one a
// named child via Component so entries carry their subsystem:
//
//	logger, _ := logging.New(logging.Config{Level: "info"})
//	renderer := render.New(logger.Component("render"), render.Options{})
package logging
