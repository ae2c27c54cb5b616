package ztrace

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// RootSpanID is the sentinel parent id meaning "no parent in this trace".
const RootSpanID SpanID = 0

// TraceID is the pair (T, U): the 128-bit wire identifier T and the
// process-local uniquifier U that disambiguates two local traces sharing
// the same propagated T.
type TraceID struct {
	High uint64 // upper 64 bits of T; zero when the peer only carries a 64-bit id.
	Low  uint64 // lower 64 bits of T.
	U    uint64 // process-local uniquifier, never reported externally.
}

// SpanID is a 64-bit span identifier.
type SpanID uint64

// Is64Bit reports whether T fits in the low 64 bits, the way a 64-bit-only
// peer would have generated it.
func (t TraceID) Is64Bit() bool {
	return t.High == 0
}

// HexT renders T as lowercase hex: 16 nibbles if it fits in 64 bits, else 32.
func (t TraceID) HexT() string {
	if t.Is64Bit() {
		return fmt.Sprintf("%016x", t.Low)
	}
	return fmt.Sprintf("%016x%016x", t.High, t.Low)
}

// Key is the registry lookup key: (T, U) as a comparable struct.
type Key struct {
	High, Low, U uint64
}

// RegistryKey returns the (T, U) pair used to index the trace registry.
func (t TraceID) RegistryKey() Key {
	return Key{High: t.High, Low: t.Low, U: t.U}
}

// String renders the span id as lowercase hex, zero-padded to 16 nibbles.
func (s SpanID) String() string {
	return fmt.Sprintf("%016x", uint64(s))
}

// ParseTraceIDHex parses a 16- or 32-nibble lowercase hex string into a T
// value. U is left zero; callers that need registry identity must supply it
// separately (U is never carried on the wire).
func ParseTraceIDHex(s string) (TraceID, error) {
	switch len(s) {
	case 16:
		low, err := hexToUint64(s)
		if err != nil {
			return TraceID{}, err
		}
		return TraceID{Low: low}, nil
	case 32:
		high, err := hexToUint64(s[:16])
		if err != nil {
			return TraceID{}, err
		}
		low, err := hexToUint64(s[16:])
		if err != nil {
			return TraceID{}, err
		}
		return TraceID{High: high, Low: low}, nil
	default:
		return TraceID{}, fmt.Errorf("ztrace: trace id %q must be 16 or 32 hex nibbles", s)
	}
}

// ParseSpanIDHex parses up to 16 hex nibbles into a SpanID.
func ParseSpanIDHex(s string) (SpanID, error) {
	if len(s) == 0 || len(s) > 16 {
		return 0, fmt.Errorf("ztrace: span id %q must be 1-16 hex nibbles", s)
	}
	v, err := hexToUint64(s)
	if err != nil {
		return 0, err
	}
	return SpanID(v), nil
}

func hexToUint64(s string) (uint64, error) {
	padded := s
	if len(padded) < 16 {
		padded = fmt.Sprintf("%016s", padded)
	}
	b, err := hex.DecodeString(padded)
	if err != nil {
		return 0, fmt.Errorf("ztrace: invalid hex %q: %w", s, err)
	}
	if len(b) != 8 {
		return 0, errors.New("ztrace: decoded id is not 8 bytes")
	}
	return binary.BigEndian.Uint64(b), nil
}

// NewUniquifier draws the process-local disambiguator U from a distinct
// entropy source (google/uuid) than the wire-visible trace/span ids below,
// which stay on the teacher's crypto/rand-backed IDPool.
func NewUniquifier() uint64 {
	id := uuid.New()
	return binary.BigEndian.Uint64(id[8:16])
}

// idGenerator amortizes crypto/rand overhead by pre-generating ids on a
// background refill goroutine, the way the teacher's IDPool did for tracez's
// hex-string ids. Here it hands back raw 128-bit/64-bit values instead of
// pre-formatted hex strings, since ztrace keeps ids as integers internally
// and only formats them at the wire/logging boundary.
type idGenerator struct {
	traceIDs chan [16]byte
	spanIDs  chan [8]byte
	stopCh   chan struct{}
}

func newIDGenerator(poolSize int) *idGenerator {
	g := &idGenerator{
		traceIDs: make(chan [16]byte, poolSize),
		spanIDs:  make(chan [8]byte, poolSize),
		stopCh:   make(chan struct{}),
	}
	go g.refillTraceIDs()
	go g.refillSpanIDs()
	return g
}

func (g *idGenerator) refillTraceIDs() {
	for {
		select {
		case <-g.stopCh:
			return
		default:
		}
		var b [16]byte
		if _, err := rand.Read(b[:]); err != nil {
			continue
		}
		select {
		case g.traceIDs <- b:
		case <-g.stopCh:
			return
		}
	}
}

func (g *idGenerator) refillSpanIDs() {
	for {
		select {
		case <-g.stopCh:
			return
		default:
		}
		var b [8]byte
		if _, err := rand.Read(b[:]); err != nil {
			continue
		}
		select {
		case g.spanIDs <- b:
		case <-g.stopCh:
			return
		}
	}
}

// NextTraceID returns a fresh, randomly generated 128-bit T with a fresh U.
func (g *idGenerator) NextTraceID() TraceID {
	var b [16]byte
	select {
	case b = <-g.traceIDs:
	default:
		_, _ = rand.Read(b[:])
	}
	return TraceID{
		High: binary.BigEndian.Uint64(b[:8]),
		Low:  binary.BigEndian.Uint64(b[8:]),
		U:    NewUniquifier(),
	}
}

// NextSpanID returns a fresh, randomly generated 64-bit span id.
func (g *idGenerator) NextSpanID() SpanID {
	var b [8]byte
	select {
	case b = <-g.spanIDs:
	default:
		_, _ = rand.Read(b[:])
	}
	return SpanID(binary.BigEndian.Uint64(b[:]))
}

func (g *idGenerator) Close() {
	close(g.stopCh)
}
