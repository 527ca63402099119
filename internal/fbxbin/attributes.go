package fbxbin

import (
	"encoding/binary"
	"fmt"
	"io"
	"iter"
	"math"

	"github.com/danmuck/fbxtree/internal/fbx"
	"github.com/klauspost/compress/zlib"
)

const (
	arrayEncodingRaw  = 0
	arrayEncodingZlib = 1
)

// attributes is the attribute list of the most recently started node.
// It is valid until the parser moves on to the next event.
type attributes struct {
	p       *Parser
	total   uint64
	index   uint64
	listEnd int64
	// attrEnd is where the attribute handed out last ends.
	attrEnd int64
	closed  bool
}

var _ fbx.CountedSource = (*attributes)(nil)

func (a *attributes) TotalCount() uint64 {
	return a.total
}

func (a *attributes) LoadNext(l fbx.Loader) (fbx.Attribute, bool, error) {
	p := a.p
	if a.closed || p.done {
		return nil, false, p.errorAt(p.r.off, int(a.index), fmt.Errorf("%w: attribute list closed", ErrFinished))
	}
	if a.index >= a.total {
		return nil, false, nil
	}
	if err := p.r.skipTo(a.attrEnd); err != nil {
		return nil, false, a.fail(p.r.off, err)
	}
	start := p.r.off
	attr, err := a.load(l)
	if err != nil {
		return nil, false, a.fail(start, err)
	}
	if err := p.r.skipTo(a.attrEnd); err != nil {
		return nil, false, a.fail(start, err)
	}
	a.index++
	return attr, true, nil
}

func (a *attributes) fail(offset int64, err error) error {
	a.p.done = true
	return a.p.errorAt(offset, int(a.index), err)
}

// claim reserves the next n bytes of the attribute list for the current
// attribute.
func (a *attributes) claim(n int64) error {
	end := a.p.r.off + n
	if n < 0 || end > a.listEnd {
		return fmt.Errorf("%w: attribute needs %d bytes, %d left", ErrAttributeListLength, n, a.listEnd-a.p.r.off)
	}
	a.attrEnd = end
	return nil
}

// fixed reads an n byte field claimed for the current attribute.
func (a *attributes) fixed(n int) ([]byte, error) {
	if err := a.claim(int64(n)); err != nil {
		return nil, err
	}
	buf := a.p.scratch[:n]
	if _, err := io.ReadFull(a.p.r, buf); err != nil {
		return nil, truncated(err)
	}
	return buf, nil
}

func (a *attributes) load(l fbx.Loader) (fbx.Attribute, error) {
	b, err := a.fixed(1)
	if err != nil {
		return nil, err
	}
	switch code := b[0]; code {
	case 'C':
		b, err := a.fixed(1)
		if err != nil {
			return nil, err
		}
		if !validBool(b[0]) {
			a.p.warnAt(a.p.position(a.p.r.off-1, int(a.index)), fmt.Errorf("%w: 0x%02x", WarnIncorrectBoolean, b[0]))
		}
		return l.LoadBool(b[0]&1 == 1)
	case 'Y':
		b, err := a.fixed(2)
		if err != nil {
			return nil, err
		}
		return l.LoadI16(int16(binary.LittleEndian.Uint16(b)))
	case 'I':
		b, err := a.fixed(4)
		if err != nil {
			return nil, err
		}
		return l.LoadI32(int32(binary.LittleEndian.Uint32(b)))
	case 'L':
		b, err := a.fixed(8)
		if err != nil {
			return nil, err
		}
		return l.LoadI64(int64(binary.LittleEndian.Uint64(b)))
	case 'F':
		b, err := a.fixed(4)
		if err != nil {
			return nil, err
		}
		return l.LoadF32(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	case 'D':
		b, err := a.fixed(8)
		if err != nil {
			return nil, err
		}
		return l.LoadF64(math.Float64frombits(binary.LittleEndian.Uint64(b)))
	case 'b', 'i', 'l', 'f', 'd':
		return a.loadArray(l, code)
	case 'S', 'R':
		return a.loadBytes(l, code)
	default:
		return nil, fmt.Errorf("%w: type code 0x%02x", ErrUnknownAttributeType, code)
	}
}

func validBool(c byte) bool {
	return c == 'T' || c == 'Y'
}

func elementSize(code byte) int {
	switch code {
	case 'b':
		return 1
	case 'i', 'f':
		return 4
	default:
		return 8
	}
}

func (a *attributes) loadArray(l fbx.Loader, code byte) (fbx.Attribute, error) {
	at := a.p.r.off - 1
	b, err := a.fixed(12)
	if err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint32(b[0:4])
	encoding := binary.LittleEndian.Uint32(b[4:8])
	size := binary.LittleEndian.Uint32(b[8:12])

	if limit := a.p.limits.MaxArrayElements; limit > 0 && n > limit {
		return nil, fmt.Errorf("%w: array of %d elements, limit %d", ErrLimitExceeded, n, limit)
	}
	if err := a.claim(int64(size)); err != nil {
		return nil, err
	}

	body := io.LimitReader(a.p.r, int64(size))
	var src io.Reader
	switch encoding {
	case arrayEncodingRaw:
		if want := uint64(n) * uint64(elementSize(code)); uint64(size) != want {
			return nil, fmt.Errorf("%w: raw array of %d elements stored in %d bytes", ErrAttributeListLength, n, size)
		}
		src = body
	case arrayEncodingZlib:
		zr, err := zlib.NewReader(body)
		if err != nil {
			return nil, fmt.Errorf("zlib array: %w", truncated(err))
		}
		defer zr.Close()
		src = zr
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownArrayEncoding, encoding)
	}

	count := int(n)
	switch code {
	case 'b':
		var bad byte
		badCount := 0
		attr, err := l.LoadSeqBool(elements(src, count, 1, func(b []byte) bool {
			if !validBool(b[0]) {
				if badCount == 0 {
					bad = b[0]
				}
				badCount++
			}
			return b[0]&1 == 1
		}), count)
		if err == nil && badCount > 0 {
			a.p.warnAt(a.p.position(at, int(a.index)),
				fmt.Errorf("%w: %d array elements, first 0x%02x", WarnIncorrectBoolean, badCount, bad))
		}
		return attr, err
	case 'i':
		return l.LoadSeqI32(elements(src, count, 4, func(b []byte) int32 {
			return int32(binary.LittleEndian.Uint32(b))
		}), count)
	case 'l':
		return l.LoadSeqI64(elements(src, count, 8, func(b []byte) int64 {
			return int64(binary.LittleEndian.Uint64(b))
		}), count)
	case 'f':
		return l.LoadSeqF32(elements(src, count, 4, func(b []byte) float32 {
			return math.Float32frombits(binary.LittleEndian.Uint32(b))
		}), count)
	default:
		return l.LoadSeqF64(elements(src, count, 8, func(b []byte) float64 {
			return math.Float64frombits(binary.LittleEndian.Uint64(b))
		}), count)
	}
}

// elements decodes n fixed-size little-endian values from src on demand.
func elements[T any](src io.Reader, n, size int, decode func([]byte) T) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var buf [8]byte
		for range n {
			if _, err := io.ReadFull(src, buf[:size]); err != nil {
				var zero T
				yield(zero, truncated(err))
				return
			}
			if !yield(decode(buf[:size]), nil) {
				return
			}
		}
	}
}

func (a *attributes) loadBytes(l fbx.Loader, code byte) (fbx.Attribute, error) {
	b, err := a.fixed(4)
	if err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint32(b)
	if limit := a.p.limits.MaxStringBytes; limit > 0 && n > limit {
		return nil, fmt.Errorf("%w: %d byte payload, limit %d", ErrLimitExceeded, n, limit)
	}
	if err := a.claim(int64(n)); err != nil {
		return nil, err
	}
	body := io.LimitReader(a.p.r, int64(n))
	if code == 'S' {
		return l.LoadString(body, uint64(n))
	}
	return l.LoadBinary(body, uint64(n))
}
