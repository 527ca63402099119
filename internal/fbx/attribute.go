// Package fbx holds the decoded FBX document model: typed node attributes,
// the flat attribute store, the node tree and the event interfaces a
// tokenizer implements to feed them.
package fbx

import "unicode/utf8"

// Attribute is one typed node attribute value. The set of implementations
// is closed: SingleBool, SingleI16, SingleI32, SingleI64, SingleF32,
// SingleF64, ArrayBool, ArrayI32, ArrayI64, ArrayF32, ArrayF64, String and
// Binary.
type Attribute interface {
	// TypeString returns the fixed type label of the case.
	TypeString() string
	// ValueString returns the display form of the value.
	ValueString() string

	attribute()
}

type (
	SingleBool bool
	SingleI16  int16
	SingleI32  int32
	SingleI64  int64
	SingleF32  float32
	SingleF64  float64

	ArrayBool []bool
	ArrayI32  []int32
	ArrayI64  []int64
	ArrayF32  []float32
	ArrayF64  []float64

	// Binary is an opaque byte payload.
	Binary []byte
)

// String is a text attribute. FBX does not guarantee UTF-8, so a payload
// that fails to decode keeps its original bytes instead.
type String struct {
	text  string
	raw   []byte
	valid bool
}

// NewString interprets b as UTF-8 text, falling back to a copy of the raw
// bytes when b is not valid UTF-8.
func NewString(b []byte) String {
	if utf8.Valid(b) {
		return String{text: string(b), valid: true}
	}
	return String{raw: append([]byte{}, b...)}
}

// Text returns the decoded text and whether the payload was valid UTF-8.
func (s String) Text() (string, bool) {
	return s.text, s.valid
}

// Raw returns the payload bytes: the original bytes for undecodable text,
// the UTF-8 encoding of the text otherwise.
func (s String) Raw() []byte {
	if s.valid {
		return []byte(s.text)
	}
	return append([]byte{}, s.raw...)
}

func (SingleBool) attribute() {}
func (SingleI16) attribute()  {}
func (SingleI32) attribute()  {}
func (SingleI64) attribute()  {}
func (SingleF32) attribute()  {}
func (SingleF64) attribute()  {}
func (ArrayBool) attribute()  {}
func (ArrayI32) attribute()   {}
func (ArrayI64) attribute()   {}
func (ArrayF32) attribute()   {}
func (ArrayF64) attribute()   {}
func (String) attribute()     {}
func (Binary) attribute()     {}

func (SingleBool) TypeString() string { return "bool" }
func (SingleI16) TypeString() string  { return "i16" }
func (SingleI32) TypeString() string  { return "i32" }
func (SingleI64) TypeString() string  { return "i64" }
func (SingleF32) TypeString() string  { return "f32" }
func (SingleF64) TypeString() string  { return "f64" }
func (ArrayBool) TypeString() string  { return "[bool]" }
func (ArrayI32) TypeString() string   { return "[i32]" }
func (ArrayI64) TypeString() string   { return "[i64]" }
func (ArrayF32) TypeString() string   { return "[f32]" }
func (ArrayF64) TypeString() string   { return "[f64]" }
func (String) TypeString() string     { return "String" }
func (Binary) TypeString() string     { return "[u8]" }
