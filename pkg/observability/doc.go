/*
Package observability exposes debot sessions to monitoring.

It turns engine lifecycle events into Prometheus metrics and structured log
records, and serves the metrics over HTTP next to a health probe.
*/
package observability
