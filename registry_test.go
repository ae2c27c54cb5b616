package ztrace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryRegisterLookupDeregister(t *testing.T) {
	r := newRegistry()
	key := Key{High: 1, Low: 2, U: 3}
	a := &traceActor{}

	_, ok := r.lookup(key)
	assert.False(t, ok)

	r.register(key, a)
	got, ok := r.lookup(key)
	assert.True(t, ok)
	assert.Same(t, a, got)

	r.deregister(key, a)
	_, ok = r.lookup(key)
	assert.False(t, ok)
}

func TestRegistryDeregisterIsIdentityChecked(t *testing.T) {
	r := newRegistry()
	key := Key{High: 1, Low: 2, U: 3}
	stale := &traceActor{}
	fresh := &traceActor{}

	r.register(key, stale)
	r.register(key, fresh) // simulates a supervisor restart under the same key

	// A late deregister from the actor that was replaced must not evict
	// the actor that replaced it.
	r.deregister(key, stale)
	got, ok := r.lookup(key)
	assert.True(t, ok)
	assert.Same(t, fresh, got)
}

func TestRegistrySnapshotCoversAllShards(t *testing.T) {
	r := newRegistry()
	want := make(map[Key]*traceActor)
	for i := uint64(0); i < 64; i++ {
		key := Key{Low: i}
		a := &traceActor{}
		r.register(key, a)
		want[key] = a
	}

	snap := r.snapshot()
	assert.Len(t, snap, len(want))
	for k, a := range want {
		assert.Same(t, a, snap[k])
	}
}
