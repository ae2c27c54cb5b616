package ztrace

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// supervisorDedupSize bounds the restart-dedup cache the way the teacher
// bounds its ID pools relative to expected concurrency, not to a single
// fixed number chosen without reason.
const supervisorDedupSize = 4096

// supervisor starts a fresh trace actor on demand and applies the
// "transient" restart policy named in spec.md §4.3: a spontaneous crash
// gets restarted from the original arguments, a normal termination (after
// the terminal sweep) does not. It does not cascade a caller's crash to
// other traces; each trace is its own isolation boundary.
type supervisor struct {
	registry *registry
	// recentlyRestarted bounds restart storms: it counts restarts per key,
	// and a key that has already been restarted maxRestartAttempts times is
	// logged and given up on rather than restarted indefinitely.
	recentlyRestarted *lru.Cache[Key, int]
}

func newSupervisor(reg *registry) *supervisor {
	cache, err := lru.New[Key, int](supervisorDedupSize)
	if err != nil {
		// Only size<=0 can make lru.New fail; supervisorDedupSize is a
		// positive constant, so this path is unreachable.
		panic(err)
	}
	return &supervisor{registry: reg, recentlyRestarted: cache}
}

const maxRestartAttempts = 3

// start creates a fresh actor for args, registers it, and runs it. It
// blocks until the actor's TTL timer is registered so that a caller who
// immediately advances a fake clock (tests) or races a real TTL (production)
// never does so before the actor is listening for it.
func (s *supervisor) start(args startArgs) *traceActor {
	a := newTraceActor(s.registry, s, args)
	s.registry.register(a.key, a)
	go a.run()
	<-a.ready
	return a
}

// notifyTerminated is called by an actor's terminal sweep. Normal
// termination never restarts; clear any restart bookkeeping for the key.
func (s *supervisor) notifyTerminated(key Key) {
	s.recentlyRestarted.Remove(key)
}

// notifyCrashed is called by an actor's panic recovery. It restarts a
// fresh actor from args unless this key has already exhausted its restart
// budget, in which case the trace is abandoned and the failure is logged.
func (s *supervisor) notifyCrashed(key Key, args startArgs) {
	attempts, _ := s.recentlyRestarted.Get(key)
	if attempts >= maxRestartAttempts {
		logger().Error().
			Str("trace", args.traceID.HexT()).
			Int("attempts", attempts).
			Msg("trace actor crashed repeatedly; abandoning trace without further restarts")
		return
	}
	s.recentlyRestarted.Add(key, attempts+1)
	logger().Warn().
		Str("trace", args.traceID.HexT()).
		Int("attempt", attempts+1).
		Msg("trace actor crashed; restarting from original start/join arguments")
	s.start(args)
}

// defaultSupervisor is the process-wide supervisor used by the public API.
var defaultSupervisor = newSupervisor(defaultRegistry)
