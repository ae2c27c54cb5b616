package ztrace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlePushPop(t *testing.T) {
	h := newHandle(TraceID{Low: 1}, SpanID(10), true, false)

	pushed := h.Push(SpanID(20))
	assert.Equal(t, SpanID(20), pushed.SpanID())
	assert.Equal(t, []SpanID{SpanID(10)}, pushed.parentStack)

	popped := pushed.Pop()
	assert.Equal(t, h, popped)
}

func TestHandlePopOnEmptyStackIsNoOp(t *testing.T) {
	h := newHandle(TraceID{Low: 1}, SpanID(10), true, false)
	popped := h.Pop()
	assert.Equal(t, h, popped)
}

func TestHandlePushPreservesSamplingAndIgnore(t *testing.T) {
	sampled := newHandle(TraceID{Low: 1}, SpanID(1), true, false).Push(SpanID(2))
	assert.True(t, sampled.Sampled())

	ignored := Ignore.Push(SpanID(99))
	assert.True(t, ignored.IsIgnore())
	assert.Equal(t, Ignore, ignored)
}

func TestHandleActiveRules(t *testing.T) {
	cases := []struct {
		name    string
		h       Handle
		active  bool
	}{
		{"sampled", newHandle(TraceID{}, 1, true, false), true},
		{"unsampled-undebugged", newHandle(TraceID{}, 1, false, false), false},
		{"debug-overrides-unsampled", newHandle(TraceID{}, 1, false, true), true},
		{"ignore-always-inactive", Ignore, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.active, c.h.active())
		})
	}
}

func TestHandleStringFormat(t *testing.T) {
	h := newHandle(TraceID{Low: 0xabc, U: 7}, SpanID(0x1), true, true)
	s := h.String()
	assert.Contains(t, s, "TraceId<")
	assert.Contains(t, s, ".7>")
	assert.Contains(t, s, "SpanId<")
	assert.Contains(t, s, "SAMPLED")
	assert.Contains(t, s, "DEBUG")
}

func TestHandleStringUnsampled(t *testing.T) {
	h := newHandle(TraceID{Low: 1}, SpanID(1), false, false)
	assert.Contains(t, h.String(), "UNSAMPLED")
	assert.NotContains(t, h.String(), "DEBUG")
}

func TestHandleB3SingleHeader(t *testing.T) {
	h := newHandle(TraceID{Low: 1}, SpanID(2), true, false)
	h = h.Push(SpanID(3))
	header := h.B3SingleHeader()
	assert.Contains(t, header, "-1-")
	assert.True(t, len(header) > 0)
}

func TestHandleB3SingleHeaderIgnoreEmpty(t *testing.T) {
	assert.Equal(t, "", Ignore.B3SingleHeader())
}
