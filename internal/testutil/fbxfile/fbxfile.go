// Package fbxfile builds synthetic binary FBX files for tests.
package fbxfile

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/danmuck/fbxtree/internal/fbxbin"
	"github.com/klauspost/compress/zlib"
)

// Node describes one node record. A null end marker is written when the
// node has children or EndMarker is set, unless OmitEndMarker is set.
type Node struct {
	Name          string
	Attrs         [][]byte
	Children      []Node
	EndMarker     bool
	OmitEndMarker bool
}

func headerLen(version uint32) int {
	if version >= fbxbin.Version7500 {
		return 25
	}
	return 13
}

// Build encodes nodes as a complete file with header, top-level end marker
// and footer.
func Build(version uint32, nodes ...Node) []byte {
	var buf bytes.Buffer
	buf.Write(fbxbin.EncodeHeader(version))
	for _, n := range nodes {
		writeNode(&buf, version, n)
	}
	buf.Write(make([]byte, headerLen(version)))
	buf.Write(fbxbin.EncodeFooter(int64(buf.Len()), version))
	return buf.Bytes()
}

func writeNode(buf *bytes.Buffer, version uint32, n Node) {
	hlen := headerLen(version)
	start := buf.Len()
	buf.Write(make([]byte, hlen))
	buf.WriteString(n.Name)
	listStart := buf.Len()
	for _, a := range n.Attrs {
		buf.Write(a)
	}
	listLen := buf.Len() - listStart
	for _, c := range n.Children {
		writeNode(buf, version, c)
	}
	if (len(n.Children) > 0 || n.EndMarker) && !n.OmitEndMarker {
		buf.Write(make([]byte, hlen))
	}
	end := buf.Len()

	hdr := buf.Bytes()[start : start+hlen]
	if version >= fbxbin.Version7500 {
		binary.LittleEndian.PutUint64(hdr[0:8], uint64(end))
		binary.LittleEndian.PutUint64(hdr[8:16], uint64(len(n.Attrs)))
		binary.LittleEndian.PutUint64(hdr[16:24], uint64(listLen))
	} else {
		binary.LittleEndian.PutUint32(hdr[0:4], uint32(end))
		binary.LittleEndian.PutUint32(hdr[4:8], uint32(len(n.Attrs)))
		binary.LittleEndian.PutUint32(hdr[8:12], uint32(listLen))
	}
	hdr[hlen-1] = byte(len(n.Name))
}

// Bool encodes a boolean attribute with the raw representation byte c.
func Bool(c byte) []byte { return []byte{'C', c} }

func I16(v int16) []byte {
	b := []byte{'Y', 0, 0}
	binary.LittleEndian.PutUint16(b[1:], uint16(v))
	return b
}

func I32(v int32) []byte {
	b := []byte{'I', 0, 0, 0, 0}
	binary.LittleEndian.PutUint32(b[1:], uint32(v))
	return b
}

func I64(v int64) []byte {
	b := make([]byte, 9)
	b[0] = 'L'
	binary.LittleEndian.PutUint64(b[1:], uint64(v))
	return b
}

func F32(v float32) []byte {
	b := []byte{'F', 0, 0, 0, 0}
	binary.LittleEndian.PutUint32(b[1:], math.Float32bits(v))
	return b
}

func F64(v float64) []byte {
	b := make([]byte, 9)
	b[0] = 'D'
	binary.LittleEndian.PutUint64(b[1:], math.Float64bits(v))
	return b
}

func String(s string) []byte { return lengthPrefixed('S', []byte(s)) }

func Binary(p []byte) []byte { return lengthPrefixed('R', p) }

func lengthPrefixed(code byte, p []byte) []byte {
	b := make([]byte, 5, 5+len(p))
	b[0] = code
	binary.LittleEndian.PutUint32(b[1:], uint32(len(p)))
	return append(b, p...)
}

// Array encodes an array attribute header followed by payload as stored.
func Array(code byte, n, encoding uint32, payload []byte) []byte {
	b := make([]byte, 13, 13+len(payload))
	b[0] = code
	binary.LittleEndian.PutUint32(b[1:5], n)
	binary.LittleEndian.PutUint32(b[5:9], encoding)
	binary.LittleEndian.PutUint32(b[9:13], uint32(len(payload)))
	return append(b, payload...)
}

func ArrayF64(vs ...float64) []byte {
	payload := make([]byte, 8*len(vs))
	for i, v := range vs {
		binary.LittleEndian.PutUint64(payload[8*i:], math.Float64bits(v))
	}
	return Array('d', uint32(len(vs)), 0, payload)
}

func ArrayBool(vs ...bool) []byte {
	payload := make([]byte, len(vs))
	for i, v := range vs {
		payload[i] = 'T'
		if v {
			payload[i] = 'Y'
		}
	}
	return Array('b', uint32(len(vs)), 0, payload)
}

// ArrayI32Zlib encodes a zlib-compressed i32 array.
func ArrayI32Zlib(vs ...int32) []byte {
	raw := make([]byte, 4*len(vs))
	for i, v := range vs {
		binary.LittleEndian.PutUint32(raw[4*i:], uint32(v))
	}
	return Array('i', uint32(len(vs)), 1, Zlib(raw))
}

// Zlib compresses p.
func Zlib(p []byte) []byte {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, _ = zw.Write(p)
	_ = zw.Close()
	return buf.Bytes()
}

// WriteFile stores data under dir and returns its path.
func WriteFile(t testing.TB, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
