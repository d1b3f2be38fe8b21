/*
Package observability provides lifecycle hooks for monitoring the weft engine.

It includes Prometheus metrics for runs and node calls, structured-log hooks that
narrate the walk through log/slog, and Combine for attaching several hook sets
to one engine.
*/
package observability
