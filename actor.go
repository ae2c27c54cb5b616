package ztrace

import (
	"sync/atomic"
	"time"

	"github.com/zoobzio/clockz"
)

// defaultClock is the clock every new trace actor uses unless overridden.
// Tests within this package swap it for a clockz.FakeClock the way the
// teacher's tracer_test.go injects one via WithClock, to assert TTL-sweep
// and timestamp behavior deterministically.
var defaultClock clockz.Clock = clockz.RealClock

// SpanType selects the implicit annotation/binary-annotation seeded onto a
// trace's root span at creation (spec.md §4.1 "Initial content"). The zero
// value, UnspecifiedSpanType, lets Start and Join apply their own default
// (client and server respectively, per spec.md §6) when the caller's
// options don't set Type explicitly.
type SpanType int

// Span types recognized by Start/Join.
const (
	UnspecifiedSpanType SpanType = iota
	ClientSpanType
	ServerSpanType
)

type eventKind int

const (
	evStartSpan eventKind = iota
	evFinishSpan
	evUpdate
	evFinish
)

// event is the uniform mailbox message type. Only the fields relevant to
// kind are populated; none of this is visible to callers, who only ever
// see the Handle/Delta vocabulary.
type event struct {
	kind     eventKind
	spanID   SpanID
	parentID SpanID
	name     string
	ts       time.Time
	deltas   []Delta
	async    bool
}

// startArgs is the original start/join blueprint a crashed actor is
// recreated from (spec.md §4.1 "Failure semantics": "supervisor restarts a
// fresh actor from the original start/join arguments").
type startArgs struct {
	traceID       TraceID
	rootID        SpanID
	parentID      SpanID
	debug         bool
	name          string
	spanType      SpanType
	remote        *Endpoint
	local         Endpoint
	annotations   []Delta
	ttl           time.Duration
	reporter      Reporter
	clock         clockz.Clock
	callerDone    <-chan struct{}
}

const mailboxCapacity = 256

// traceActor is a per-trace, single-threaded worker owning one trace's
// span tree (spec.md §4.1). The span tree and termination bookkeeping
// below are touched exclusively from the actor's own goroutine; no locking
// is required around them (spec.md §5 "Shared resources"). lastActivity is
// the one exception: the registry watchdog (watchdog.go) reads it from a
// different goroutine, so it is kept as an atomic timestamp rather than a
// plain field.
type traceActor struct {
	key        Key
	traceID    TraceID
	debug      bool
	mailbox    chan event
	reporter   Reporter
	clock      clockz.Clock
	ttl        time.Duration
	registry   *registry
	supervisor *supervisor
	callerDone <-chan struct{}
	args       startArgs
	ready      chan struct{}

	spans            map[SpanID]*SpanRecord
	rootID           SpanID
	lastActivityNano atomic.Int64
	asyncTerminating bool
}

func (a *traceActor) lastActivity() time.Time {
	return time.Unix(0, a.lastActivityNano.Load())
}

func (a *traceActor) markActivity(t time.Time) {
	a.lastActivityNano.Store(t.UnixNano())
}

// markReady signals that the TTL timer is registered and the actor is safe
// to race a clock advance against. Idempotent: a panic before the timer is
// registered still needs to unblock start's wait on ready.
func (a *traceActor) markReady() {
	select {
	case <-a.ready:
	default:
		close(a.ready)
	}
}

func newTraceActor(reg *registry, sup *supervisor, args startArgs) *traceActor {
	a := &traceActor{
		key:        args.traceID.RegistryKey(),
		traceID:    args.traceID,
		debug:      args.debug,
		mailbox:    make(chan event, mailboxCapacity),
		reporter:   args.reporter,
		clock:      args.clock,
		ttl:        args.ttl,
		registry:   reg,
		supervisor: sup,
		callerDone: args.callerDone,
		args:       args,
		ready:      make(chan struct{}),
		spans:      make(map[SpanID]*SpanRecord),
		rootID:     args.rootID,
	}
	a.markActivity(args.clock.Now())
	a.seedRoot(args)
	return a
}

// seedRoot applies spec.md §4.1 "Initial content": the implicit cs/sr
// annotation and optional sa/ca binary annotation, followed by the
// caller-supplied opts.annotations deltas.
func (a *traceActor) seedRoot(args startArgs) {
	now := a.clock.Now()
	root := newSpanRecord(args.rootID, args.parentID, args.name, now)
	a.spans[args.rootID] = root

	local := args.local
	switch args.spanType {
	case ClientSpanType:
		root.annotate(ClientSend, now, &local)
		if args.remote != nil {
			root.binaryAnnotate(KeyServerAddr, BinaryBool, true, args.remote)
		}
	case ServerSpanType:
		root.annotate(ServerRecv, now, &local)
		if args.remote != nil {
			root.binaryAnnotate(KeyClientAddr, BinaryBool, true, args.remote)
		}
	}

	root.applyDeltas(args.annotations, now)
}

// run is the actor's single-threaded event loop. A panic during event
// handling is recovered here, the in-flight span tree is discarded, and the
// supervisor restarts a fresh actor from the original start/join arguments
// (spec.md §7 "Actor crash").
func (a *traceActor) run() {
	defer func() {
		if r := recover(); r != nil {
			a.markReady() // start() must not hang if we never reached the timer.
			logger().Error().
				Interface("panic", r).
				Str("trace", a.traceID.HexT()).
				Msg("trace actor crashed; restarting from original start/join arguments")
			a.registry.deregister(a.key, a)
			a.supervisor.notifyCrashed(a.key, a.args)
		}
	}()

	timer := a.clock.After(a.ttl)
	a.markReady()
	for {
		select {
		case ev, ok := <-a.mailbox:
			if !ok {
				return
			}
			now := a.clock.Now()
			a.markActivity(now)
			if a.handleEvent(ev) {
				a.sweep(now, false)
				return
			}
			timer = a.clock.After(a.ttl)

		case <-timer:
			a.sweep(a.clock.Now(), false)
			return

		case <-a.callerDone:
			a.sweep(a.clock.Now(), true)
			return
		}
	}
}

// handleEvent applies one mailbox message and reports whether the actor
// should run its terminal sweep now.
func (a *traceActor) handleEvent(ev event) bool {
	switch ev.kind {
	case evStartSpan:
		rec := newSpanRecord(ev.spanID, ev.parentID, ev.name, ev.ts)
		a.spans[ev.spanID] = rec
		rec.applyDeltas(ev.deltas, ev.ts)
		return false

	case evFinishSpan:
		if rec, ok := a.spans[ev.spanID]; ok {
			rec.applyDeltas(ev.deltas, ev.ts)
			rec.close(ev.ts)
		}
		return a.asyncTerminating && a.allSpansClosed()

	case evUpdate:
		if rec, ok := a.spans[ev.spanID]; ok {
			rec.applyDeltas(ev.deltas, ev.ts)
		}
		return a.asyncTerminating && a.allSpansClosed()

	case evFinish:
		return a.handleFinish(ev)
	}
	return false
}

// handleFinish implements spec.md §4.1's termination protocol steps 1-2.
func (a *traceActor) handleFinish(ev event) bool {
	root, ok := a.spans[a.rootID]
	if ok {
		root.close(ev.ts)
		root.applyDeltas(ev.deltas, ev.ts)
	}

	async := ev.async || (ok && root.async)
	if !async {
		return true // step 3 immediately: no async mode, terminal sweep now.
	}

	a.asyncTerminating = true
	return a.allSpansClosed()
}

func (a *traceActor) allSpansClosed() bool {
	for _, rec := range a.spans {
		if rec.isOpen() {
			return false
		}
	}
	return true
}

// sweep implements spec.md §4.1 step 3, the terminal sweep: every open span
// is stamped closed and annotated timeout; a caller-exit sweep additionally
// annotates the root span error. The batch is handed to the reporter and
// the actor deregisters itself before exiting.
func (a *traceActor) sweep(now time.Time, callerExit bool) {
	for _, rec := range a.spans {
		if rec.isOpen() {
			rec.close(now)
			rec.annotate(Timeout, now, nil)
		}
	}
	if callerExit {
		if root, ok := a.spans[a.rootID]; ok {
			root.annotate(errorAnn, now, nil)
		}
	}

	batch := encodeTrace(a.traceID, a.debug, a.spans, a.rootID)
	a.safeIngest(batch)

	a.registry.deregister(a.key, a)
	a.supervisor.notifyTerminated(a.key)
}

// safeIngest calls the reporter without letting a panicking or misbehaving
// reporter bring down the actor (spec.md §7 "Reporter failure").
func (a *traceActor) safeIngest(batch []WireSpan) {
	defer func() {
		if r := recover(); r != nil {
			logger().Error().
				Interface("panic", r).
				Str("trace", a.traceID.HexT()).
				Msg("reporter ingest failed")
		}
	}()
	a.reporter.Ingest(batch)
}

// sendEvent looks the trace's actor up in the registry and enqueues ev,
// silently dropping it if the trace is unknown (registry miss, or the
// actor has already run its terminal sweep) or if the mailbox is full
// (spec.md §7).
func sendEvent(key Key, ev event) {
	a, ok := defaultRegistry.lookup(key)
	if !ok {
		return
	}
	select {
	case a.mailbox <- ev:
	default:
	}
}
