package ztrace

// AnnotationValue is a tagged variant over the Zipkin v1 shorthand symbols
// plus free-form strings. The shorthand expansion is deliberately kept as a
// symbol rather than pre-expanded into its wire string, so a reader of the
// span record can tell a standard annotation from a free-form one; the
// encoder does the expansion (§9 design note: "do not encode the shorthand
// expansion in the data model").
type AnnotationValue struct {
	symbol annotationSymbol
	free   string
}

type annotationSymbol int

const (
	symbolFree annotationSymbol = iota
	symbolClientSend
	symbolClientRecv
	symbolServerSend
	symbolServerRecv
	symbolWireSend
	symbolWireRecv
	symbolTimeout
	symbolError
)

var symbolWire = map[annotationSymbol]string{
	symbolClientSend: "cs",
	symbolClientRecv: "cr",
	symbolServerSend: "ss",
	symbolServerRecv: "sr",
	symbolWireSend:    "ws",
	symbolWireRecv:    "wr",
	symbolTimeout:     "timeout",
	symbolError:       "error",
}

// Standard shorthand annotation values.
var (
	ClientSend = AnnotationValue{symbol: symbolClientSend}
	ClientRecv = AnnotationValue{symbol: symbolClientRecv}
	ServerSend = AnnotationValue{symbol: symbolServerSend}
	ServerRecv = AnnotationValue{symbol: symbolServerRecv}
	WireSend   = AnnotationValue{symbol: symbolWireSend}
	WireRecv   = AnnotationValue{symbol: symbolWireRecv}
	Timeout    = AnnotationValue{symbol: symbolTimeout}
	errorAnn   = AnnotationValue{symbol: symbolError}
)

// FreeAnnotation wraps an arbitrary string as a free-form annotation value.
func FreeAnnotation(s string) AnnotationValue {
	return AnnotationValue{symbol: symbolFree, free: s}
}

// wireString renders the value the way the encoder puts it on the wire:
// shorthand symbols expand to their Zipkin v1 string, free-form values pass
// through verbatim.
func (v AnnotationValue) wireString() string {
	if v.symbol == symbolFree {
		return v.free
	}
	return symbolWire[v.symbol]
}

// BinaryType is the type tag of a binary annotation value.
type BinaryType int

// Binary annotation value types, per spec.md §3.
const (
	BinaryString BinaryType = iota
	BinaryBool
	BinaryInt16
	BinaryInt32
	BinaryInt64
	BinaryDouble
	BinaryBytes
)

var binaryTypeWire = map[BinaryType]string{
	BinaryString: "STRING",
	BinaryBool:   "BOOL",
	BinaryInt16:  "I16",
	BinaryInt32:  "I32",
	BinaryInt64:  "I64",
	BinaryDouble: "DOUBLE",
	BinaryBytes:  "BYTES",
}

// Well-known binary annotation keys used by the implicit-content rules in
// spec.md §4.1 and the "local" span convenience in SPEC_FULL.md.
const (
	KeyServerAddr   = "sa"
	KeyClientAddr   = "ca"
	KeyLocalComponent = "lc"
)

// deltaKind distinguishes the four members of the delta vocabulary
// (spec.md §4.1 "Deltas").
type deltaKind int

const (
	deltaName deltaKind = iota
	deltaAsync
	deltaAnnotate
	deltaBinaryAnnotate
)

// Delta is the uniform mutation vocabulary shared by start_span's initial
// annotations, update_span, and finish_span's annotations.
type Delta struct {
	kind deltaKind

	name string // deltaName

	annotationValue    AnnotationValue // deltaAnnotate
	annotationEndpoint *Endpoint       // deltaAnnotate, optional

	binaryType     BinaryType // deltaBinaryAnnotate
	binaryKey      string     // deltaBinaryAnnotate
	binaryValue    interface{} // deltaBinaryAnnotate
	binaryEndpoint *Endpoint   // deltaBinaryAnnotate, optional
}

// NameDelta replaces the span's name.
func NameDelta(name string) Delta {
	return Delta{kind: deltaName, name: name}
}

// AsyncDelta marks the span (and by propagation the trace) async.
func AsyncDelta() Delta {
	return Delta{kind: deltaAsync}
}

// AnnotateDelta appends a timed annotation, optionally naming a remote
// endpoint the event pertains to.
func AnnotateDelta(value AnnotationValue, endpoint *Endpoint) Delta {
	return Delta{kind: deltaAnnotate, annotationValue: value, annotationEndpoint: endpoint}
}

// BinaryAnnotateDelta appends or replaces a keyed tag. A later delta on the
// same key within the same span supersedes an earlier one.
func BinaryAnnotateDelta(key string, typ BinaryType, value interface{}, endpoint *Endpoint) Delta {
	return Delta{kind: deltaBinaryAnnotate, binaryKey: key, binaryType: typ, binaryValue: value, binaryEndpoint: endpoint}
}

// LocalComponentDelta is the `local` convenience named in spec.md §6's
// startSpan options: a string binary annotation keyed "lc".
func LocalComponentDelta(component string) Delta {
	return BinaryAnnotateDelta(KeyLocalComponent, BinaryString, component, nil)
}
