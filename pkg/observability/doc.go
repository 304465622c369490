/*
Package observability exposes coordinator lifecycle outcomes as Prometheus
metrics.

The Collector implements txscope.Metrics. Commit, abort and end settlements
are counted per session name and outcome; handler latency is observed in a
histogram split by success and failure.
*/
package observability
