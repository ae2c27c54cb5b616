package ztrace

import (
	"github.com/robfig/cron/v3"
)

// Watchdog periodically scans the registry for actors whose lastActivity
// is older than 2x their configured ttl: an actor's own TTL timer should
// already have swept it by then, so a hit here is a correctness bug, not
// an expected condition. It never mutates actor state — diagnostic only
// (SPEC_FULL.md §2 item 12).
type Watchdog struct {
	cron *cron.Cron
	reg  *registry
}

// NewWatchdog creates a watchdog against the process-wide registry. Call
// Start to begin the periodic sweep and Stop to end it.
func NewWatchdog() *Watchdog {
	return &Watchdog{
		cron: cron.New(),
		reg:  defaultRegistry,
	}
}

// Start schedules the sweep on the given cron spec (e.g. "@every 1m").
func (w *Watchdog) Start(spec string) error {
	_, err := w.cron.AddFunc(spec, w.sweep)
	if err != nil {
		return err
	}
	w.cron.Start()
	return nil
}

// Stop ends the periodic sweep.
func (w *Watchdog) Stop() {
	w.cron.Stop()
}

func (w *Watchdog) sweep() {
	for key, a := range w.reg.snapshot() {
		staleAfter := a.ttl * 2
		if a.clock.Now().Sub(a.lastActivity()) <= staleAfter {
			continue
		}
		logger().Error().
			Str("trace", a.traceID.HexT()).
			Uint64("u", key.U).
			Msg("registry watchdog: actor overdue for TTL sweep, TTL timer may have failed to fire")
	}
}
