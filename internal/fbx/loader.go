package fbx

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
)

// ErrArrayElement is returned when an element of an array attribute could
// not be decoded. No partial array is kept.
var ErrArrayElement = errors.New("fbx: array element decode failed")

// Loader turns one tokenizer-classified attribute into an Attribute.
// Array elements arrive as a lazy sequence together with the announced
// element count; string and binary payloads as a reader of n bytes.
type Loader interface {
	LoadBool(v bool) (Attribute, error)
	LoadI16(v int16) (Attribute, error)
	LoadI32(v int32) (Attribute, error)
	LoadI64(v int64) (Attribute, error)
	LoadF32(v float32) (Attribute, error)
	LoadF64(v float64) (Attribute, error)

	LoadSeqBool(seq iter.Seq2[bool, error], n int) (Attribute, error)
	LoadSeqI32(seq iter.Seq2[int32, error], n int) (Attribute, error)
	LoadSeqI64(seq iter.Seq2[int64, error], n int) (Attribute, error)
	LoadSeqF32(seq iter.Seq2[float32, error], n int) (Attribute, error)
	LoadSeqF64(seq iter.Seq2[float64, error], n int) (Attribute, error)

	LoadString(r io.Reader, n uint64) (Attribute, error)
	LoadBinary(r io.Reader, n uint64) (Attribute, error)
}

// AttributeLoader loads every attribute kind into the matching Attribute
// case without conversion.
type AttributeLoader struct{}

var _ Loader = AttributeLoader{}

func (AttributeLoader) LoadBool(v bool) (Attribute, error)   { return SingleBool(v), nil }
func (AttributeLoader) LoadI16(v int16) (Attribute, error)   { return SingleI16(v), nil }
func (AttributeLoader) LoadI32(v int32) (Attribute, error)   { return SingleI32(v), nil }
func (AttributeLoader) LoadI64(v int64) (Attribute, error)   { return SingleI64(v), nil }
func (AttributeLoader) LoadF32(v float32) (Attribute, error) { return SingleF32(v), nil }
func (AttributeLoader) LoadF64(v float64) (Attribute, error) { return SingleF64(v), nil }

func (AttributeLoader) LoadSeqBool(seq iter.Seq2[bool, error], n int) (Attribute, error) {
	vs, err := collect(seq, n)
	if err != nil {
		return nil, err
	}
	return ArrayBool(vs), nil
}

func (AttributeLoader) LoadSeqI32(seq iter.Seq2[int32, error], n int) (Attribute, error) {
	vs, err := collect(seq, n)
	if err != nil {
		return nil, err
	}
	return ArrayI32(vs), nil
}

func (AttributeLoader) LoadSeqI64(seq iter.Seq2[int64, error], n int) (Attribute, error) {
	vs, err := collect(seq, n)
	if err != nil {
		return nil, err
	}
	return ArrayI64(vs), nil
}

func (AttributeLoader) LoadSeqF32(seq iter.Seq2[float32, error], n int) (Attribute, error) {
	vs, err := collect(seq, n)
	if err != nil {
		return nil, err
	}
	return ArrayF32(vs), nil
}

func (AttributeLoader) LoadSeqF64(seq iter.Seq2[float64, error], n int) (Attribute, error) {
	vs, err := collect(seq, n)
	if err != nil {
		return nil, err
	}
	return ArrayF64(vs), nil
}

func (AttributeLoader) LoadString(r io.Reader, n uint64) (Attribute, error) {
	buf, err := readPayload(r, n)
	if err != nil {
		return nil, err
	}
	return NewString(buf), nil
}

func (AttributeLoader) LoadBinary(r io.Reader, n uint64) (Attribute, error) {
	buf, err := readPayload(r, n)
	if err != nil {
		return nil, err
	}
	return Binary(buf), nil
}

// maxElementHint bounds the preallocation for an announced element count.
const maxElementHint = 1 << 16

func collect[T any](seq iter.Seq2[T, error], n int) ([]T, error) {
	out := make([]T, 0, max(0, min(n, maxElementHint)))
	for v, err := range seq {
		if err != nil {
			return nil, fmt.Errorf("%w: element %d: %w", ErrArrayElement, len(out), err)
		}
		out = append(out, v)
	}
	return out, nil
}

// readPayload reads r to EOF. n only sizes the initial buffer.
func readPayload(r io.Reader, n uint64) ([]byte, error) {
	const maxHint = 1 << 20
	if n > maxHint {
		n = maxHint
	}
	buf := bytes.NewBuffer(make([]byte, 0, n))
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
