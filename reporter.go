package ztrace

// Reporter is the pluggable sink a terminal trace actor hands its finished
// batch to. Ingest is expected to be best-effort and non-blocking from the
// actor's perspective: the actor does not wait on delivery success
// (spec.md §4.5).
type Reporter interface {
	Ingest(batch []WireSpan)
}

// NoopReporter discards every batch. Used for unsampled-path tests and as
// the zero-value process default before Configure installs one.
type NoopReporter struct{}

// Ingest discards batch.
func (NoopReporter) Ingest(_ []WireSpan) {}

// LoggingReporter logs each batch via the package logger at info severity.
// Intended for the CLI demo command and for examples; not a collector
// client (spec.md §1 explicitly keeps the reporter transport out of scope).
type LoggingReporter struct{}

// Ingest logs batch.
func (LoggingReporter) Ingest(batch []WireSpan) {
	for _, span := range batch {
		logger().Info().
			Str("traceId", span.TraceID).
			Str("id", span.ID).
			Str("parentId", span.ParentID).
			Str("name", span.Name).
			Int64("duration", span.Duration).
			Msg("span")
	}
}
