package ztrace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopReporterDiscards(t *testing.T) {
	NoopReporter{}.Ingest([]WireSpan{{ID: "1"}})
}

func TestBufferedReporterSyncModeBuffersImmediately(t *testing.T) {
	r := NewBufferedReporter("test", 4)
	defer r.Close()
	r.SetSyncMode(true)

	r.Ingest([]WireSpan{{ID: "1"}, {ID: "2"}})
	assert.Equal(t, 2, r.Count())
}

func TestBufferedReporterIngestEmptyBatchIsNoop(t *testing.T) {
	r := NewBufferedReporter("test", 4)
	defer r.Close()
	r.SetSyncMode(true)

	r.Ingest(nil)
	assert.Equal(t, 0, r.Count())
}

func TestBufferedReporterExportClearsBuffer(t *testing.T) {
	r := NewBufferedReporter("test", 4)
	defer r.Close()
	r.SetSyncMode(true)

	r.Ingest([]WireSpan{{ID: "1"}})
	batch := r.Export()
	require.Len(t, batch, 1)
	assert.Equal(t, 0, r.Count())
}

func TestBufferedReporterExportOfEmptyBufferIsNil(t *testing.T) {
	r := NewBufferedReporter("test", 4)
	defer r.Close()
	assert.Nil(t, r.Export())
}

func TestBufferedReporterDropsOnBackpressure(t *testing.T) {
	// Built directly rather than via NewBufferedReporter: no drain goroutine
	// is started, so batchCh fills deterministically after exactly one send
	// and every later Ingest for this trace is guaranteed to hit the drop
	// path, instead of racing a real drain loop.
	r := &BufferedReporter{
		name:         "test",
		spans:        make([]WireSpan, 0, defaultSpanCapacity),
		batchCh:      make(chan []WireSpan, 1),
		stopCh:       make(chan struct{}),
		done:         make(chan struct{}),
		droppedTrace: make(map[string]int64),
	}

	r.Ingest([]WireSpan{{TraceID: "deadbeef", ID: "a"}})
	r.Ingest([]WireSpan{{TraceID: "deadbeef", ID: "b"}})
	r.Ingest([]WireSpan{{TraceID: "deadbeef", ID: "c"}})

	assert.Equal(t, int64(2), r.DroppedCount())
	assert.Equal(t, map[string]int64{"deadbeef": 2}, r.DroppedTraces())
}

func TestBufferedReporterIngestAfterCloseInSyncModeDrops(t *testing.T) {
	r := NewBufferedReporter("test", 4)
	r.SetSyncMode(true)
	r.Close()

	r.Ingest([]WireSpan{{ID: "1"}})
	assert.Equal(t, int64(1), r.DroppedCount())
}

func TestBufferedReporterReset(t *testing.T) {
	r := NewBufferedReporter("test", 4)
	defer r.Close()
	r.SetSyncMode(true)

	r.Ingest([]WireSpan{{ID: "1"}})
	r.Reset()
	assert.Equal(t, 0, r.Count())
	assert.Equal(t, int64(0), r.DroppedCount())
}
