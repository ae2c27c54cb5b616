package ztrace

import "time"

// annotation is a timestamped event attached to a span.
type annotation struct {
	value     AnnotationValue
	timestamp time.Time
	endpoint  *Endpoint
}

// binaryAnnotation is a typed key-value tag attached to a span.
type binaryAnnotation struct {
	typ      BinaryType
	key      string
	value    interface{}
	endpoint *Endpoint
}

// SpanRecord is the mutable, actor-owned representation of one span. It is
// never shared outside the trace actor that owns it; callers only ever hold
// immutable Handle values that name a span by id.
//
//nolint:govet // field order mirrors the teacher's Span, not memory layout
type SpanRecord struct {
	name              string
	id                SpanID
	parentID          SpanID // RootSpanID means "no parent in this trace".
	startTimestamp    time.Time
	endTimestamp      time.Time // zero while open.
	annotations       []annotation
	binaryAnnotations []binaryAnnotation
	binaryIndex       map[string]int // key -> index into binaryAnnotations, last-writer-wins.
	async             bool
}

func newSpanRecord(id, parentID SpanID, name string, start time.Time) *SpanRecord {
	return &SpanRecord{
		name:           name,
		id:             id,
		parentID:       parentID,
		startTimestamp: start,
		binaryIndex:    make(map[string]int),
	}
}

func (s *SpanRecord) isOpen() bool {
	return s.endTimestamp.IsZero()
}

// close stamps endTimestamp if the span is still open; a no-op on an
// already-finished span (spec.md §4.1 finish_span: "stamp endTimestamp := ts
// if still open (else ignore)").
func (s *SpanRecord) close(ts time.Time) {
	if s.isOpen() {
		s.endTimestamp = ts
	}
}

func (s *SpanRecord) annotate(value AnnotationValue, ts time.Time, endpoint *Endpoint) {
	s.annotations = append(s.annotations, annotation{value: value, timestamp: ts, endpoint: endpoint})
}

// binaryAnnotate appends a new tag or replaces the current value for key,
// preserving the replaced entry's position so ordering of first-seen keys
// is stable (spec.md §3 binaryAnnotations: "ordered sequence").
func (s *SpanRecord) binaryAnnotate(key string, typ BinaryType, value interface{}, endpoint *Endpoint) {
	if idx, ok := s.binaryIndex[key]; ok {
		s.binaryAnnotations[idx] = binaryAnnotation{typ: typ, key: key, value: value, endpoint: endpoint}
		return
	}
	s.binaryIndex[key] = len(s.binaryAnnotations)
	s.binaryAnnotations = append(s.binaryAnnotations, binaryAnnotation{typ: typ, key: key, value: value, endpoint: endpoint})
}

// applyDelta mutates the span per one entry of the deltas vocabulary
// (spec.md §4.1 "Deltas"), at event timestamp ts.
func (s *SpanRecord) applyDelta(d Delta, ts time.Time) {
	switch d.kind {
	case deltaName:
		s.name = d.name
	case deltaAsync:
		s.async = true
	case deltaAnnotate:
		s.annotate(d.annotationValue, ts, d.annotationEndpoint)
	case deltaBinaryAnnotate:
		s.binaryAnnotate(d.binaryKey, d.binaryType, d.binaryValue, d.binaryEndpoint)
	}
}

func (s *SpanRecord) applyDeltas(deltas []Delta, ts time.Time) {
	for _, d := range deltas {
		s.applyDelta(d, ts)
	}
}
