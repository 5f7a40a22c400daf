/*
Package tracing provides lightweight request tracing.

Each HTTP request gets a span; the trace id arrives in X-Trace-ID or is
minted as a request ULID, and is echoed back on the response. Outbound calls
(the remote generation backend) forward it with Headers. Completed spans are
logged through zap by a buffered collector.

	tracer := tracing.New("sitecraft", logger)
	defer tracer.Close()
	router.Use(tracing.HTTPMiddleware(tracer))
*/
package tracing
