/*
Package monitoring provides Prometheus metrics for the HTTP API and the
blueprint domain.

Metrics live on a private registry. Domain packages never import this
package; they declare small Recorder interfaces that *Metrics satisfies:

	metrics := monitoring.NewMetrics()
	renderer := render.New(logger, render.Options{Recorder: metrics})
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
*/
package monitoring
