package fbxbin

import (
	"errors"
	"fmt"

	"github.com/danmuck/fbxtree/internal/diag"
)

var (
	ErrInvalidMagic         = errors.New("fbxbin: invalid magic")
	ErrUnsupportedVersion   = errors.New("fbxbin: unsupported version")
	ErrTruncated            = errors.New("fbxbin: truncated data")
	ErrNodeLength           = errors.New("fbxbin: node length mismatch")
	ErrAttributeListLength  = errors.New("fbxbin: attribute list length mismatch")
	ErrUnknownAttributeType = errors.New("fbxbin: unknown attribute type")
	ErrUnknownArrayEncoding = errors.New("fbxbin: unknown array encoding")
	ErrLimitExceeded        = errors.New("fbxbin: limit exceeded")
	ErrDepthExceeded        = errors.New("fbxbin: node depth exceeded")
	ErrFinished             = errors.New("fbxbin: parser finished")
)

// Warnings are passed to the warning handler, usually wrapped with detail.
var (
	WarnEmptyNodeName        = errors.New("node name is empty")
	WarnIncorrectBoolean     = errors.New("incorrect boolean representation")
	WarnMissingNodeEndMarker = errors.New("node end marker missing")
	WarnFooterPadding        = errors.New("unexpected footer padding")
	WarnFooterField          = errors.New("unexpected footer field value")
	WarnFooterTrailingData   = errors.New("trailing data after footer")
)

// Error is a fatal parse error at a known stream position.
type Error struct {
	Pos diag.Position
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v at %s", e.Err, e.Pos)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Position exposes where the error occurred to diagnostic logs.
func (e *Error) Position() *diag.Position {
	pos := e.Pos
	return &pos
}
