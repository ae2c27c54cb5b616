package ztrace

import (
	"hash/maphash"
	"sync"
)

// registryShardCount follows the teacher's pool-sizing convention
// (runtime.NumCPU()-scaled pools in tracer.go's ensureIDPools) but uses a
// fixed power of two here since the registry's shard count only needs to
// reduce lock contention, not track CPU count precisely.
const registryShardCount = 16

// registry maps (T, U) to the owning trace actor's address. Lookups are
// read-only against a striped set of shards (spec.md §4.3: "a
// sharded/striped or snapshot map suffices"). Inserts happen at actor
// start, removals at actor termination. A lookup of a missing key returns
// ok=false; callers that race against termination treat that as a silent
// drop, never an error.
type registry struct {
	shards [registryShardCount]registryShard
	seed   maphash.Seed
}

type registryShard struct {
	mu      sync.RWMutex
	actors  map[Key]*traceActor
}

func newRegistry() *registry {
	r := &registry{seed: maphash.MakeSeed()}
	for i := range r.shards {
		r.shards[i].actors = make(map[Key]*traceActor)
	}
	return r
}

func (r *registry) shardFor(k Key) *registryShard {
	var h maphash.Hash
	h.SetSeed(r.seed)
	var buf [24]byte
	putUint64(buf[0:8], k.High)
	putUint64(buf[8:16], k.Low)
	putUint64(buf[16:24], k.U)
	_, _ = h.Write(buf[:])
	return &r.shards[h.Sum64()%registryShardCount]
}

func putUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (56 - 8*i))
	}
}

// register inserts a, keyed by its trace's (T, U) pair. At most one actor
// is registered per key: a register for a key that already maps to an
// actor replaces that mapping, and the replaced actor is not stopped. A
// crashed actor deregisters itself before the supervisor registers its
// replacement; a Start or Join whose (T, U) pair is already live also
// replaces the earlier mapping.
func (r *registry) register(key Key, a *traceActor) {
	shard := r.shardFor(key)
	shard.mu.Lock()
	shard.actors[key] = a
	shard.mu.Unlock()
}

// lookup returns the actor for key, or ok=false if none is registered.
func (r *registry) lookup(key Key) (*traceActor, bool) {
	shard := r.shardFor(key)
	shard.mu.RLock()
	defer shard.mu.RUnlock()
	a, ok := shard.actors[key]
	return a, ok
}

// deregister removes key if it still maps to a. A terminal actor always
// deregisters itself this way so a racing register (supervisor restart)
// is never clobbered by a late deregister from the actor it replaced.
func (r *registry) deregister(key Key, a *traceActor) {
	shard := r.shardFor(key)
	shard.mu.Lock()
	if shard.actors[key] == a {
		delete(shard.actors, key)
	}
	shard.mu.Unlock()
}

// snapshot returns every (key, actor) pair currently registered, used only
// by the registry watchdog's periodic health sweep.
func (r *registry) snapshot() map[Key]*traceActor {
	out := make(map[Key]*traceActor)
	for i := range r.shards {
		shard := &r.shards[i]
		shard.mu.RLock()
		for k, a := range shard.actors {
			out[k] = a
		}
		shard.mu.RUnlock()
	}
	return out
}

// defaultRegistry is the process-wide registry used by the public API.
var defaultRegistry = newRegistry()
