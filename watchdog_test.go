package ztrace

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/zoobzio/clockz"
)

func TestWatchdogSweepDoesNotMutateRegistry(t *testing.T) {
	reg := newRegistry()
	clock := clockz.NewFakeClock()

	args := startArgs{
		traceID:  TraceID{Low: 1},
		rootID:   SpanID(1),
		parentID: RootSpanID,
		name:     "stale",
		ttl:      time.Millisecond,
		reporter: NoopReporter{},
		clock:    clock,
	}
	a := newTraceActor(reg, newSupervisor(reg), args)
	reg.register(a.key, a)

	clock.Advance(time.Hour)

	w := &Watchdog{cron: nil, reg: reg}
	assert.NotPanics(t, func() { w.sweep() })

	_, ok := reg.lookup(a.key)
	assert.True(t, ok, "the watchdog is diagnostic only and never deregisters a stale actor itself")
}
