/*
Package observability turns propagation events into structured logs and Prometheus
metrics.

Hooks builds domain.Hooks that log every changed, skipped or failed field through slog and
count them in a Metrics set. Metrics also tracks coercion outcomes and palette
extractions.
*/
package observability
