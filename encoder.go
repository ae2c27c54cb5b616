package ztrace

import (
	"sort"

	"github.com/eapache/queue"
)

const unknownSpanName = "unknown"

// encodeTrace converts a completed trace's span tree into the external
// protocol span list (spec.md §4.4). Traversal is breadth-first, root
// first, siblings in ascending span-id order, using the pack's
// eapache/queue so batch ordering is deterministic for tests and for
// reporters that stream spans as they arrive.
func encodeTrace(traceID TraceID, debug bool, spans map[SpanID]*SpanRecord, rootID SpanID) []WireSpan {
	children := make(map[SpanID][]SpanID)
	for id, s := range spans {
		children[s.parentID] = append(children[s.parentID], id)
	}
	for _, ids := range children {
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}

	out := make([]WireSpan, 0, len(spans))
	q := queue.New()
	q.Add(rootID)
	visited := make(map[SpanID]bool, len(spans))

	for q.Length() > 0 {
		id := q.Peek().(SpanID)
		q.Remove()
		if visited[id] {
			continue
		}
		visited[id] = true

		if rec, ok := spans[id]; ok {
			out = append(out, encodeSpan(traceID, debug, rec))
		}
		for _, childID := range children[id] {
			q.Add(childID)
		}
	}

	return out
}

func encodeSpan(traceID TraceID, debug bool, s *SpanRecord) WireSpan {
	name := s.name
	if name == "" {
		name = unknownSpanName
	}

	w := WireSpan{
		TraceID:   traceID.HexT(),
		ID:        s.id.String(),
		Name:      name,
		Timestamp: s.startTimestamp.UnixMicro(),
		Debug:     debug,
	}
	if s.parentID != RootSpanID {
		w.ParentID = s.parentID.String()
	}
	if !s.endTimestamp.IsZero() {
		w.Duration = s.endTimestamp.UnixMicro() - s.startTimestamp.UnixMicro()
	}

	for _, a := range s.annotations {
		w.Annotations = append(w.Annotations, WireAnnotation{
			Value:     a.value.wireString(),
			Timestamp: a.timestamp.UnixMicro(),
			Endpoint:  encodeEndpoint(a.endpoint),
		})
	}
	for _, b := range s.binaryAnnotations {
		w.BinaryAnnotations = append(w.BinaryAnnotations, WireBinaryAnnotation{
			Key:      b.key,
			Value:    b.value,
			Type:     binaryTypeWire[b.typ],
			Endpoint: encodeEndpoint(b.endpoint),
		})
	}

	return w
}

// encodeEndpoint renders an Endpoint, accepting IPv4-only, IPv6-only, or
// both, and omitting any unset field rather than emitting null.
func encodeEndpoint(e *Endpoint) *WireEndpoint {
	if e == nil {
		return nil
	}
	w := &WireEndpoint{
		Port:        e.Port,
		ServiceName: e.ServiceName,
	}
	if e.hasIPv4() {
		w.IPv4 = e.IPv4.String()
	}
	if e.hasIPv6() {
		w.IPv6 = e.IPv6.String()
	}
	return w
}
