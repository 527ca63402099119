package fbxbin

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const (
	// Magic opens every binary FBX file.
	Magic     = "Kaydara FBX Binary  \x00\x1a\x00"
	HeaderLen = len(Magic) + 4

	MinVersion = 7000
	MaxVersion = 7999

	// Version7500 widens node header fields from 32 to 64 bits.
	Version7500 = 7500
)

// Limits constrains memory use while decoding untrusted files. A zero
// field disables that check.
type Limits struct {
	MaxArrayElements uint32
	MaxStringBytes   uint32
	MaxDepth         int
}

func DefaultLimits() Limits {
	return Limits{
		MaxArrayElements: 64 * 1024 * 1024,
		MaxStringBytes:   256 * 1024 * 1024,
		MaxDepth:         256,
	}
}

// DecodeHeader validates the fixed file header and returns the version.
func DecodeHeader(b []byte) (uint32, error) {
	if len(b) != HeaderLen {
		return 0, fmt.Errorf("%w: header is %d bytes", ErrTruncated, len(b))
	}
	if !bytes.Equal(b[:len(Magic)], []byte(Magic)) {
		return 0, ErrInvalidMagic
	}
	version := binary.LittleEndian.Uint32(b[len(Magic):])
	if version < MinVersion || version > MaxVersion {
		return version, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	return version, nil
}

// EncodeHeader returns the fixed file header for version.
func EncodeHeader(version uint32) []byte {
	buf := make([]byte, HeaderLen)
	copy(buf, Magic)
	binary.LittleEndian.PutUint32(buf[len(Magic):], version)
	return buf
}

// nodeHeader is the fixed part of a node record.
type nodeHeader struct {
	EndOffset   uint64
	NumAttrs    uint64
	AttrListLen uint64
	NameLen     uint8
}

func (h nodeHeader) isEndMarker() bool {
	return h == nodeHeader{}
}

func nodeHeaderLen(version uint32) int {
	if version >= Version7500 {
		return 25
	}
	return 13
}

func decodeNodeHeader(b []byte, version uint32) nodeHeader {
	if version >= Version7500 {
		return nodeHeader{
			EndOffset:   binary.LittleEndian.Uint64(b[0:8]),
			NumAttrs:    binary.LittleEndian.Uint64(b[8:16]),
			AttrListLen: binary.LittleEndian.Uint64(b[16:24]),
			NameLen:     b[24],
		}
	}
	return nodeHeader{
		EndOffset:   uint64(binary.LittleEndian.Uint32(b[0:4])),
		NumAttrs:    uint64(binary.LittleEndian.Uint32(b[4:8])),
		AttrListLen: uint64(binary.LittleEndian.Uint32(b[8:12])),
		NameLen:     b[12],
	}
}
