package ztrace

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeTraceOmitsParentIDOnRoot(t *testing.T) {
	start := time.Now()
	root := newSpanRecord(1, RootSpanID, "root", start)
	root.close(start.Add(time.Millisecond))

	spans := map[SpanID]*SpanRecord{1: root}
	batch := encodeTrace(TraceID{Low: 1}, false, spans, 1)

	require.Len(t, batch, 1)
	assert.Empty(t, batch[0].ParentID)
}

func TestEncodeTraceChildCarriesParentID(t *testing.T) {
	start := time.Now()
	root := newSpanRecord(1, RootSpanID, "root", start)
	child := newSpanRecord(2, 1, "child", start.Add(10*time.Microsecond))
	child.close(start.Add(20 * time.Microsecond))
	root.close(start.Add(30 * time.Microsecond))

	spans := map[SpanID]*SpanRecord{1: root, 2: child}
	batch := encodeTrace(TraceID{Low: 1}, false, spans, 1)

	require.Len(t, batch, 2)
	var childWire *WireSpan
	for i := range batch {
		if batch[i].ID == SpanID(2).String() {
			childWire = &batch[i]
		}
	}
	require.NotNil(t, childWire)
	assert.Equal(t, SpanID(1).String(), childWire.ParentID)
	assert.Equal(t, int64(10), childWire.Duration)
}

func TestEncodeSpanDefaultsUnnamedToUnknown(t *testing.T) {
	s := newSpanRecord(1, RootSpanID, "", time.Now())
	wire := encodeSpan(TraceID{Low: 1}, false, s)
	assert.Equal(t, "unknown", wire.Name)
}

func TestEncodeSpanOmitsDurationWhileOpen(t *testing.T) {
	s := newSpanRecord(1, RootSpanID, "op", time.Now())
	wire := encodeSpan(TraceID{Low: 1}, false, s)
	assert.Zero(t, wire.Duration)
}

func TestEncodeTraceIDWidth(t *testing.T) {
	root64 := newSpanRecord(1, RootSpanID, "root", time.Now())
	wire64 := encodeSpan(TraceID{Low: 1}, false, root64)
	assert.Len(t, wire64.TraceID, 16)

	wire128 := encodeSpan(TraceID{High: 1, Low: 1}, false, root64)
	assert.Len(t, wire128.TraceID, 32)
}

func TestEncodeEndpointOmitsUnsetFamily(t *testing.T) {
	v4Only := &Endpoint{IPv4: net.ParseIP("10.0.0.1"), ServiceName: "svc"}
	w := encodeEndpoint(v4Only)
	require.NotNil(t, w)
	assert.NotEmpty(t, w.IPv4)
	assert.Empty(t, w.IPv6)

	v6Only := &Endpoint{IPv6: net.ParseIP("::1"), ServiceName: "svc"}
	w6 := encodeEndpoint(v6Only)
	require.NotNil(t, w6)
	assert.Empty(t, w6.IPv4)
	assert.NotEmpty(t, w6.IPv6)
}

func TestEncodeEndpointNilIsNil(t *testing.T) {
	assert.Nil(t, encodeEndpoint(nil))
}

func TestEncodeTraceBreadthFirstDeterministic(t *testing.T) {
	start := time.Now()
	root := newSpanRecord(1, RootSpanID, "root", start)
	a := newSpanRecord(2, 1, "a", start)
	b := newSpanRecord(3, 1, "b", start)
	grandchild := newSpanRecord(4, 2, "grandchild", start)

	spans := map[SpanID]*SpanRecord{1: root, 2: a, 3: b, 4: grandchild}
	batch := encodeTrace(TraceID{Low: 1}, false, spans, 1)

	require.Len(t, batch, 4)
	assert.Equal(t, SpanID(1).String(), batch[0].ID, "root is visited first")
	assert.Equal(t, SpanID(2).String(), batch[1].ID)
	assert.Equal(t, SpanID(3).String(), batch[2].ID)
	assert.Equal(t, SpanID(4).String(), batch[3].ID, "grandchild follows every child of the root")
}
