package ztrace

import (
	"encoding/binary"

	oteltrace "go.opentelemetry.io/otel/trace"
)

// ToOTelTraceID converts T into an OpenTelemetry trace.TraceID, so a host
// process that also runs an OTel-instrumented dependency can correlate
// identifiers in logs. The process-local uniquifier U never crosses this
// bridge — it has no OTel analogue.
func ToOTelTraceID(t TraceID) oteltrace.TraceID {
	var out oteltrace.TraceID
	binary.BigEndian.PutUint64(out[:8], t.High)
	binary.BigEndian.PutUint64(out[8:], t.Low)
	return out
}

// ToOTelSpanID converts a SpanID into an OpenTelemetry trace.SpanID.
func ToOTelSpanID(s SpanID) oteltrace.SpanID {
	var out oteltrace.SpanID
	binary.BigEndian.PutUint64(out[:], uint64(s))
	return out
}

// FromOTelTraceID converts an OpenTelemetry trace.TraceID into T, pairing
// it with a freshly generated local uniquifier U.
func FromOTelTraceID(id oteltrace.TraceID) TraceID {
	return TraceID{
		High: binary.BigEndian.Uint64(id[:8]),
		Low:  binary.BigEndian.Uint64(id[8:]),
		U:    NewUniquifier(),
	}
}

// FromOTelSpanID converts an OpenTelemetry trace.SpanID into a SpanID.
func FromOTelSpanID(id oteltrace.SpanID) SpanID {
	return SpanID(binary.BigEndian.Uint64(id[:]))
}
