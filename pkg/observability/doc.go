/*
Package observability provides tools for monitoring the accelerate engine.

Metrics turns the engine's lifecycle hooks into Prometheus series: steps applied per
operation, step latency, run outcomes and the last recorded cursor.
*/
package observability
