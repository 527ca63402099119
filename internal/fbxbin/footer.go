package fbxbin

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/danmuck/fbxtree/internal/diag"
)

// FooterMagic closes every binary FBX file.
var FooterMagic = [16]byte{
	0xf8, 0x5a, 0x8c, 0x6a, 0xde, 0xf5, 0xd9, 0x7e,
	0xec, 0xe9, 0x0c, 0xe3, 0x75, 0x8f, 0x29, 0x0b,
}

// Footer layout after the top-level end marker: a 16 byte footer id,
// zero padding up to a 16 byte boundary, 4 zero bytes, the version,
// 120 zero bytes and FooterMagic.
const (
	footerIDLen    = 16
	footerFixedLen = footerIDLen + 4 + 4 + 120 + len(FooterMagic)
	// maxFooterLen is the most that is buffered after the top-level end
	// marker: the fixed fields, a full 16 byte padding and some slack.
	maxFooterLen = footerFixedLen + 16 + 16
)

// readFooter consumes the footer. Only a footer too short to hold its
// fixed fields is an error; anything else is a warning. Input past
// maxFooterLen is left unread.
func (p *Parser) readFooter() error {
	start := p.r.off
	rest, err := io.ReadAll(io.LimitReader(p.r, int64(maxFooterLen)+1))
	if err != nil {
		return p.errorAt(start, -1, err)
	}
	n := len(rest)
	if n < footerFixedLen {
		return p.errorAt(start, -1, fmt.Errorf("%w: footer is %d bytes, need at least %d", ErrTruncated, n, footerFixedLen))
	}

	padStart := start + footerIDLen
	want := int((16 - padStart%16) % 16)
	if n > maxFooterLen {
		p.warnAt(diag.At(start+int64(maxFooterLen)), fmt.Errorf("%w: more than %d bytes after the last node", WarnFooterTrailingData, maxFooterLen))
		// Check the fields where a well-formed footer would put them.
		n = footerFixedLen + want
		rest = rest[:n]
	} else if pad := n - footerFixedLen; pad != want && !(want == 0 && pad == 16) {
		p.warnAt(diag.At(padStart), fmt.Errorf("%w: %d bytes, expected %d", WarnFooterPadding, pad, want))
	}

	field := func(at int, format string, args ...any) {
		p.warnAt(diag.At(start+int64(at)), fmt.Errorf("%w: "+format, append([]any{WarnFooterField}, args...)...))
	}
	if !allZero(rest[n-144 : n-140]) {
		field(n-144, "non-zero bytes before version")
	}
	if v := binary.LittleEndian.Uint32(rest[n-140 : n-136]); v != p.version {
		field(n-140, "version %d, header has %d", v, p.version)
	}
	if !allZero(rest[n-136 : n-16]) {
		field(n-136, "non-zero reserved block")
	}
	if !bytes.Equal(rest[n-16:], FooterMagic[:]) {
		field(n-16, "magic mismatch")
	}
	return nil
}

func allZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

// EncodeFooter returns a footer for a stream whose top-level end marker
// finishes at offset.
func EncodeFooter(offset int64, version uint32) []byte {
	padStart := offset + footerIDLen
	pad := int((16 - padStart%16) % 16)
	buf := make([]byte, footerFixedLen+pad)
	n := len(buf)
	binary.LittleEndian.PutUint32(buf[n-140:n-136], version)
	copy(buf[n-16:], FooterMagic[:])
	return buf
}
