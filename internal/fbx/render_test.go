package fbx

import (
	"math"
	"strings"
	"testing"
)

func TestTypeStringLabels(t *testing.T) {
	cases := []struct {
		attr Attribute
		want string
	}{
		{SingleBool(true), "bool"},
		{SingleI16(1), "i16"},
		{SingleI32(1), "i32"},
		{SingleI64(1), "i64"},
		{SingleF32(1), "f32"},
		{SingleF64(1), "f64"},
		{ArrayBool{true}, "[bool]"},
		{ArrayI32{1}, "[i32]"},
		{ArrayI64{1}, "[i64]"},
		{ArrayF32{1}, "[f32]"},
		{ArrayF64{1}, "[f64]"},
		{NewString([]byte("x")), "String"},
		{NewString([]byte{0xff}), "String"},
		{Binary{1}, "[u8]"},
	}
	for _, tc := range cases {
		if got := tc.attr.TypeString(); got != tc.want {
			t.Fatalf("%T: got %q want %q", tc.attr, got, tc.want)
		}
	}
}

func TestScalarValueStrings(t *testing.T) {
	cases := []struct {
		attr Attribute
		want string
	}{
		{SingleBool(true), "true"},
		{SingleBool(false), "false"},
		{SingleI16(-32768), "-32768"},
		{SingleI32(5), "5"},
		{SingleI64(math.MaxInt64), "9223372036854775807"},
		{SingleF32(0.1), "0.1"},
		{SingleF32(1e-7), "0.0000001"},
		{SingleF64(1), "1"},
		{SingleF64(-2.5), "-2.5"},
		{SingleF64(math.Copysign(0, -1)), "-0"},
		{SingleF64(math.Inf(1)), "inf"},
		{SingleF32(float32(math.Inf(-1))), "-inf"},
		{SingleF64(math.NaN()), "NaN"},
	}
	for _, tc := range cases {
		if got := tc.attr.ValueString(); got != tc.want {
			t.Fatalf("%T(%v): got %q want %q", tc.attr, tc.attr, got, tc.want)
		}
	}
}

func TestArrayLineBreakAfterSixteenthElement(t *testing.T) {
	seventeen := make(ArrayI32, 17)
	for i := range seventeen {
		seventeen[i] = int32(i)
	}
	got := seventeen.ValueString()
	want := "0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15,\n16, "
	if got != want {
		t.Fatalf("17 elements:\ngot  %q\nwant %q", got, want)
	}
	if strings.Count(got, "\n") != 1 {
		t.Fatalf("expected exactly one line break, got %q", got)
	}

	sixteen := seventeen[:16]
	got = sixteen.ValueString()
	if !strings.HasSuffix(got, "14, 15,\n") {
		t.Fatalf("16 elements should end with the line-break separator, got %q", got)
	}
	if strings.Count(got, "\n") != 1 {
		t.Fatalf("expected exactly one line break, got %q", got)
	}
}

func TestArrayValueStrings(t *testing.T) {
	if got := (ArrayBool{true, false, true}).ValueString(); got != "1, 0, 1, " {
		t.Fatalf("bool array: %q", got)
	}
	if got := (ArrayI64{-1, 2}).ValueString(); got != "-1, 2, " {
		t.Fatalf("i64 array: %q", got)
	}
	if got := (ArrayF32{0.5, 3}).ValueString(); got != "0.5, 3, " {
		t.Fatalf("f32 array: %q", got)
	}
	if got := (ArrayF64{1.25}).ValueString(); got != "1.25, " {
		t.Fatalf("f64 array: %q", got)
	}
	if got := (ArrayF64{}).ValueString(); got != "" {
		t.Fatalf("empty array: %q", got)
	}

	bools := make(ArrayBool, 32)
	got := bools.ValueString()
	if strings.Count(got, ",\n") != 2 || !strings.HasSuffix(got, "0,\n") {
		t.Fatalf("32 bools: %q", got)
	}
}

func TestBinaryValueString(t *testing.T) {
	if got := (Binary{0x00, 0x0a, 0xff}).ValueString(); got != "00, 0a, ff, " {
		t.Fatalf("binary: %q", got)
	}
	raw := make(Binary, 17)
	raw[15] = 0xab
	got := raw.ValueString()
	if !strings.Contains(got, "ab,\n00, ") {
		t.Fatalf("binary wrap: %q", got)
	}
}

func TestInvalidUTF8TextRendersAsHex(t *testing.T) {
	s := NewString([]byte{0xff, 0xfe})
	if _, ok := s.Text(); ok {
		t.Fatalf("expected undecodable text")
	}
	if got := s.ValueString(); got != "ff, fe, " {
		t.Fatalf("got %q", got)
	}
	raw := s.Raw()
	if len(raw) != 2 || raw[0] != 0xff || raw[1] != 0xfe {
		t.Fatalf("raw bytes not preserved: %v", raw)
	}
}

func TestTextControlCharacterEscaping(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"a\x01b", `a\x01b`},
		{"line\r\n", "line\\r\n"},
		{"tab\there", "tab\there"},
		{"del\x7f", `del\x7f`},
		{"\x1f", `\x1f`},
		{"Model::Cube", "Model::Cube"},
		{"héllo", "héllo"},
	}
	for _, tc := range cases {
		s := NewString([]byte(tc.in))
		text, ok := s.Text()
		if !ok || text != tc.in {
			t.Fatalf("%q: expected valid text", tc.in)
		}
		if got := s.ValueString(); got != tc.want {
			t.Fatalf("%q: got %q want %q", tc.in, got, tc.want)
		}
	}
}

func TestRenderingIsPure(t *testing.T) {
	attrs := []Attribute{
		SingleF64(3.14159),
		ArrayI32{1, 2, 3},
		NewString([]byte("a\rb")),
		NewString([]byte{0xc3}),
		Binary{1, 2},
	}
	for _, a := range attrs {
		first, second := a.ValueString(), a.ValueString()
		if first != second {
			t.Fatalf("%T rendered differently: %q vs %q", a, first, second)
		}
	}
}
