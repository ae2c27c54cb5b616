// Package ztrace is a distributed-tracing client library that produces
// traces compatible with a Zipkin-style collector.
//
// Callers instrument their code with span start/finish and annotation
// calls against an immutable Handle. For each sampled trace, ztrace
// manages the trace's lifecycle asynchronously behind a per-trace actor so
// the calling path incurs minimum work: Start/Join/StartSpan/FinishSpan
// return immediately with an updated Handle, and the actual recording is
// enqueued to the trace's actor.
//
// Basic usage:
//
//	h, _ := ztrace.Start(ztrace.StartOptions{Name: "checkout", Sample: true})
//	h = ztrace.StartSpan(h, ztrace.SpanOptions{Name: "charge-card"})
//	// ... do work ...
//	h = ztrace.FinishSpan(h, ztrace.FinishSpanOptions{})
//	ztrace.Finish(h, ztrace.FinishOptions{})
//
// Thread Safety:
//
// Handle is an immutable value; it may be freely copied across goroutines.
// Every operation either mutates nothing (handle manipulation) or enqueues
// one message to the owning trace actor; neither blocks the caller.
//
// Sampling:
//
// When sampled is false and debug is false, every operation against the
// resulting handle is a no-op and no trace actor is ever created. The
// special Ignore handle behaves the same way unconditionally.
package ztrace

import (
	"context"
	"errors"
	"runtime"
	"time"
)

// globalIDs amortizes crypto/rand overhead across every trace/span id this
// process generates. Pool size scales with CPU count, the way the
// teacher's tracer.go.ensureIDPools sizes its own ID pools.
var globalIDs = newIDGenerator(runtime.NumCPU() * 100)

// SpanOptions configures StartSpan.
type SpanOptions struct {
	// Name is the new span's name.
	Name string
	// Local, if non-empty, adds a string binary annotation keyed "lc"
	// (spec.md §6).
	Local string
	// Annotations are applied as deltas at span-creation time.
	Annotations []Delta
}

// FinishSpanOptions configures FinishSpan.
type FinishSpanOptions struct {
	// Annotations are applied as deltas at the finish timestamp before the
	// span is closed.
	Annotations []Delta
}

// UpdateOptions configures UpdateSpan.
type UpdateOptions struct {
	// Timestamp overrides the event time used for every delta in this
	// call; defaults to time.Now().
	Timestamp time.Time
}

// FinishOptions configures Finish.
type FinishOptions struct {
	// Async, if true, keeps the trace alive after the root span closes so
	// orphaned child spans may still finish (spec.md §4.1).
	Async bool
	// Annotations are applied as deltas to the root span at the finish
	// timestamp.
	Annotations []Delta
}

// StartOptions configures Start and the embedded fields of JoinOptions.
type StartOptions struct {
	// Name is the root span's name; defaults to "unknown" if empty.
	Name string
	// Sample decides whether this trace is recorded at all.
	Sample bool
	// Debug forces recording regardless of Sample (SPEC_FULL.md
	// "Debug override propagation").
	Debug bool
	// Type selects the implicit root-span annotation; defaults to
	// ClientSpanType for Start, ServerSpanType for Join.
	Type SpanType
	// Remote, if set, adds the implicit sa/ca binary annotation naming the
	// remote peer.
	Remote *Endpoint
	// Annotations are applied as deltas to the root span at creation,
	// after the implicit seeding.
	Annotations []Delta
	// TTL overrides the process default idle time-to-live.
	TTL time.Duration
	// Reporter overrides the process-wide default reporter for this trace.
	Reporter Reporter
	// Context, if set, makes the trace actor run its terminal sweep (with
	// an error annotation on the root span) when ctx is done — the Go
	// realization of spec.md §9's "monitor relationships" for an
	// initiating caller that exits or crashes.
	Context context.Context
}

// JoinOptions configures Join. It embeds StartOptions; Type there defaults
// to ServerSpanType rather than ClientSpanType when starting a joined
// trace.
type JoinOptions struct {
	StartOptions
	// Endpoint overrides the default local endpoint recorded for this
	// trace (spec.md §6: "join ... an endpoint option overrides the
	// default local endpoint").
	Endpoint *Endpoint
}

// Start begins a new trace and returns a handle naming its root span.
// Misconfiguration (a negative TTL) is the one surface on which the caller
// observes a synchronous failure (spec.md §7); every later operation is
// fire-and-forget.
func Start(opts StartOptions) (Handle, error) {
	if opts.TTL < 0 {
		return Handle{}, errors.New("ztrace: ttl must be non-negative")
	}

	traceID := globalIDs.NextTraceID()
	rootID := globalIDs.NextSpanID()
	h := newHandle(traceID, rootID, opts.Sample, opts.Debug)
	if !h.active() {
		return h, nil
	}

	cfg := currentConfig()
	spanType := opts.Type
	if spanType == UnspecifiedSpanType {
		spanType = ClientSpanType
	}
	args := startArgs{
		traceID:     traceID,
		rootID:      rootID,
		parentID:    RootSpanID,
		debug:       opts.Debug,
		name:        defaultName(opts.Name),
		spanType:    spanType,
		remote:      opts.Remote,
		local:       localEndpoint(cfg),
		annotations: opts.Annotations,
		ttl:         resolveTTL(opts.TTL, cfg),
		reporter:    resolveReporter(opts.Reporter, cfg),
		clock:       defaultClock,
		callerDone:  doneChan(opts.Context),
	}
	defaultSupervisor.start(args)
	return h, nil
}

// Join begins a trace actor for a propagated trace: traceID and spanID
// name the span being created (typically the server-side root for this
// process), parentSpanID names its parent — RootSpanID if this process is
// the first hop to record it. Options are as Start's, but Type defaults to
// ServerSpanType and opts.Endpoint overrides the default local endpoint.
func Join(traceID TraceID, spanID, parentSpanID SpanID, sampled, debug bool, opts JoinOptions) (Handle, error) {
	if opts.TTL < 0 {
		return Handle{}, errors.New("ztrace: ttl must be non-negative")
	}

	h := newHandle(traceID, spanID, sampled, debug)
	if !h.active() {
		return h, nil
	}

	cfg := currentConfig()
	local := localEndpoint(cfg)
	if opts.Endpoint != nil {
		local = *opts.Endpoint
	}
	spanType := opts.Type
	if spanType == UnspecifiedSpanType {
		spanType = ServerSpanType
	}

	args := startArgs{
		traceID:     traceID,
		rootID:      spanID,
		parentID:    parentSpanID,
		debug:       debug,
		name:        defaultName(opts.Name),
		spanType:    spanType,
		remote:      opts.Remote,
		local:       local,
		annotations: opts.Annotations,
		ttl:         resolveTTL(opts.TTL, cfg),
		reporter:    resolveReporter(opts.Reporter, cfg),
		clock:       defaultClock,
		callerDone:  doneChan(opts.Context),
	}
	defaultSupervisor.start(args)
	return h, nil
}

// StartSpan creates a new child span under h's current span and returns
// the handle advanced to name it. A no-op returning h verbatim when h is
// unsampled/undebugged or the Ignore variant (spec.md §6).
func StartSpan(h Handle, opts SpanOptions) Handle {
	if !h.active() {
		return h
	}
	newID := globalIDs.NextSpanID()
	deltas := opts.Annotations
	if opts.Local != "" {
		deltas = append([]Delta{LocalComponentDelta(opts.Local)}, deltas...)
	}
	sendEvent(h.traceID.RegistryKey(), event{
		kind:     evStartSpan,
		spanID:   newID,
		parentID: h.currentSpanID,
		name:     defaultName(opts.Name),
		ts:       time.Now(),
		deltas:   deltas,
	})
	return h.Push(newID)
}

// FinishSpan closes h's current span and returns the handle popped back to
// its parent. A no-op returning h verbatim when inactive.
func FinishSpan(h Handle, opts FinishSpanOptions) Handle {
	if !h.active() {
		return h
	}
	sendEvent(h.traceID.RegistryKey(), event{
		kind:   evFinishSpan,
		spanID: h.currentSpanID,
		ts:     time.Now(),
		deltas: opts.Annotations,
	})
	return h.Pop()
}

// UpdateSpan applies deltas to h's current span without changing its
// position in the span stack. A no-op returning h verbatim when inactive.
func UpdateSpan(h Handle, deltas []Delta, opts UpdateOptions) Handle {
	if !h.active() {
		return h
	}
	ts := opts.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	sendEvent(h.traceID.RegistryKey(), event{
		kind:   evUpdate,
		spanID: h.currentSpanID,
		ts:     ts,
		deltas: deltas,
	})
	return h
}

// Finish begins termination of h's trace (spec.md §4.1's termination
// protocol). A no-op when inactive.
func Finish(h Handle, opts FinishOptions) {
	if !h.active() {
		return
	}
	sendEvent(h.traceID.RegistryKey(), event{
		kind:   evFinish,
		ts:     time.Now(),
		async:  opts.Async,
		deltas: opts.Annotations,
	})
}

func defaultName(name string) string {
	if name == "" {
		return unknownSpanName
	}
	return name
}

func resolveTTL(ttl time.Duration, cfg *ProcessConfig) time.Duration {
	if ttl > 0 {
		return ttl
	}
	return cfg.TTL
}

func resolveReporter(r Reporter, cfg *ProcessConfig) Reporter {
	if r != nil {
		return r
	}
	return cfg.Reporter
}

func doneChan(ctx context.Context) <-chan struct{} {
	if ctx == nil {
		return nil
	}
	return ctx.Done()
}
