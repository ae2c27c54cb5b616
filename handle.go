package ztrace

import "fmt"

// Handle is the caller-held, immutable value naming a trace and the
// caller's current position in its span stack. Handles are plain values:
// they may be freely copied across goroutines and outlive the trace actor
// they name (subsequent operations on a stale handle are silent no-ops,
// spec.md §3 "Lifecycles").
type Handle struct {
	traceID       TraceID
	currentSpanID SpanID
	parentStack   []SpanID // most-recent-first ancestor chain.
	sampled       bool
	debug         bool
	ignore        bool // true for the special no-op variant.
}

// Ignore is the special handle variant that carries no trace and makes
// every operation a no-op without touching the registry.
var Ignore = Handle{ignore: true}

// newHandle constructs the initial handle for a trace's root span.
func newHandle(traceID TraceID, rootSpanID SpanID, sampled, debug bool) Handle {
	return Handle{
		traceID:       traceID,
		currentSpanID: rootSpanID,
		sampled:       sampled,
		debug:         debug,
	}
}

// active reports whether operations on h should actually touch the actor.
// Debug overrides sampling: SPEC_FULL.md pins sampled=false && debug=true as
// active, since a debug trace must be recorded regardless of the sampling
// decision.
func (h Handle) active() bool {
	return !h.ignore && (h.sampled || h.debug)
}

// Push returns a new handle with currentSpanID set to newSpanID and the
// previous currentSpanID prepended to the ancestor stack. Sampling, debug,
// and the ignore variant are preserved (spec.md §4.2).
func (h Handle) Push(newSpanID SpanID) Handle {
	if h.ignore {
		return h
	}
	stack := make([]SpanID, len(h.parentStack)+1)
	stack[0] = h.currentSpanID
	copy(stack[1:], h.parentStack)
	h.parentStack = stack
	h.currentSpanID = newSpanID
	return h
}

// Pop returns a new handle with currentSpanID restored to the most recent
// ancestor. Popping an empty stack is a no-op and returns h unchanged
// (spec.md §4.2, §8 boundary case).
func (h Handle) Pop() Handle {
	if h.ignore || len(h.parentStack) == 0 {
		return h
	}
	h.currentSpanID = h.parentStack[0]
	h.parentStack = h.parentStack[1:]
	if len(h.parentStack) == 0 {
		h.parentStack = nil
	}
	return h
}

// TraceID returns the handle's trace identifier.
func (h Handle) TraceID() TraceID { return h.traceID }

// SpanID returns the handle's current span identifier.
func (h Handle) SpanID() SpanID { return h.currentSpanID }

// Sampled reports the handle's sampling decision.
func (h Handle) Sampled() bool { return h.sampled }

// Debug reports the handle's debug override flag.
func (h Handle) Debug() bool { return h.debug }

// IsIgnore reports whether h is the special no-op variant.
func (h Handle) IsIgnore() bool { return h.ignore }

// String renders the handle for logging:
// TraceId<Thex.Udec>:SpanId<Shex>,{SAMPLED|UNSAMPLED}[,DEBUG] (spec.md §4.2).
func (h Handle) String() string {
	if h.ignore {
		return "TraceId<ignore>"
	}
	sampling := "UNSAMPLED"
	if h.sampled {
		sampling = "SAMPLED"
	}
	s := fmt.Sprintf("TraceId<%s.%d>:SpanId<%s>,%s", h.traceID.HexT(), h.traceID.U, h.currentSpanID.String(), sampling)
	if h.debug {
		s += ",DEBUG"
	}
	return s
}

// B3SingleHeader renders the B3 single-header propagation string for this
// handle: {traceId}-{spanId}-{sampled}-{parentId}. This is a formatting
// convenience only; parsing an incoming B3 header stays out of scope
// (spec.md §1).
func (h Handle) B3SingleHeader() string {
	if h.ignore {
		return ""
	}
	sampled := "0"
	if h.sampled {
		sampled = "1"
	}
	if h.debug {
		sampled = "d"
	}
	s := fmt.Sprintf("%s-%s-%s", h.traceID.HexT(), h.currentSpanID.String(), sampled)
	if len(h.parentStack) > 0 {
		s += "-" + h.parentStack[0].String()
	}
	return s
}
