package fbx

import (
	"math"
	"strconv"
	"strings"
)

// elementsPerLine is the number of array elements rendered before a line
// break.
const elementsPerLine = 16

func (v SingleBool) ValueString() string { return strconv.FormatBool(bool(v)) }
func (v SingleI16) ValueString() string  { return strconv.FormatInt(int64(v), 10) }
func (v SingleI32) ValueString() string  { return strconv.FormatInt(int64(v), 10) }
func (v SingleI64) ValueString() string  { return strconv.FormatInt(int64(v), 10) }
func (v SingleF32) ValueString() string  { return formatFloat(float64(v), 32) }
func (v SingleF64) ValueString() string  { return formatFloat(float64(v), 64) }

func (v ArrayBool) ValueString() string {
	return joinElements(len(v), func(b *strings.Builder, i int) {
		if v[i] {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	})
}

func (v ArrayI32) ValueString() string {
	return joinElements(len(v), func(b *strings.Builder, i int) {
		b.WriteString(strconv.FormatInt(int64(v[i]), 10))
	})
}

func (v ArrayI64) ValueString() string {
	return joinElements(len(v), func(b *strings.Builder, i int) {
		b.WriteString(strconv.FormatInt(v[i], 10))
	})
}

func (v ArrayF32) ValueString() string {
	return joinElements(len(v), func(b *strings.Builder, i int) {
		b.WriteString(formatFloat(float64(v[i]), 32))
	})
}

func (v ArrayF64) ValueString() string {
	return joinElements(len(v), func(b *strings.Builder, i int) {
		b.WriteString(formatFloat(v[i], 64))
	})
}

func (v Binary) ValueString() string {
	return hexBytes(v)
}

func (s String) ValueString() string {
	if !s.valid {
		return hexBytes(s.raw)
	}
	var b strings.Builder
	b.Grow(len(s.text))
	for _, c := range s.text {
		switch {
		case c == '\n' || c == '\t':
			b.WriteRune(c)
		case c == '\r':
			b.WriteString(`\r`)
		case c <= 0x1f || c == 0x7f:
			b.WriteString(`\x`)
			b.WriteByte(hexDigits[c>>4])
			b.WriteByte(hexDigits[c&0x0f])
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}

const hexDigits = "0123456789abcdef"

func hexBytes(raw []byte) string {
	return joinElements(len(raw), func(b *strings.Builder, i int) {
		b.WriteByte(hexDigits[raw[i]>>4])
		b.WriteByte(hexDigits[raw[i]&0x0f])
	})
}

// joinElements writes n elements, each followed by ", " or, after every
// 16th element, by ",\n".
func joinElements(n int, write func(b *strings.Builder, i int)) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		write(&b, i)
		if (i+1)%elementsPerLine == 0 {
			b.WriteString(",\n")
		} else {
			b.WriteString(", ")
		}
	}
	return b.String()
}

// formatFloat renders the shortest decimal that round-trips at the given
// bit size, never in exponent form.
func formatFloat(f float64, bitSize int) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	return strconv.FormatFloat(f, 'f', -1, bitSize)
}
