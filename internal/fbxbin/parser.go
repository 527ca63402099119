package fbxbin

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/danmuck/fbxtree/internal/diag"
	"github.com/danmuck/fbxtree/internal/fbx"
)

// WarningHandler receives recoverable problems with their position.
type WarningHandler func(warning error, pos diag.Position)

type openNode struct {
	name        string
	end         int64
	hasChildren bool
}

// Parser yields the structural events of one binary FBX stream. It is not
// safe for concurrent use.
type Parser struct {
	r       *countingReader
	version uint32
	limits  Limits
	warn    WarningHandler

	open    []openNode
	attrs   *attributes
	done    bool
	scratch [25]byte
}

var _ fbx.EventSource = (*Parser)(nil)

// NewParser reads and validates the file header from r.
func NewParser(r io.Reader, limits Limits) (*Parser, error) {
	p := &Parser{
		r:      &countingReader{r: bufio.NewReader(r)},
		limits: limits,
	}
	var hdr [HeaderLen]byte
	if _, err := io.ReadFull(p.r, hdr[:]); err != nil {
		return nil, p.errorAt(0, -1, truncated(err))
	}
	version, err := DecodeHeader(hdr[:])
	if err != nil {
		return nil, p.errorAt(0, -1, err)
	}
	p.version = version
	return p, nil
}

func (p *Parser) Version() uint32 {
	return p.version
}

// Offset reports the number of bytes consumed so far.
func (p *Parser) Offset() int64 {
	return p.r.off
}

func (p *Parser) SetWarningHandler(h WarningHandler) {
	p.warn = h
}

// NextEvent returns the next structural event. Attributes of the previous
// node that were not loaded are skipped first. After EndStream or a fatal
// error every call fails with ErrFinished.
func (p *Parser) NextEvent() (fbx.Event, error) {
	if p.done {
		return fbx.Event{}, p.errorAt(p.r.off, -1, ErrFinished)
	}
	if p.attrs != nil {
		end := p.attrs.listEnd
		p.attrs.closed = true
		p.attrs = nil
		if err := p.r.skipTo(end); err != nil {
			return p.fail(p.r.off, err)
		}
	}

	if n := len(p.open); n > 0 {
		top := p.open[n-1]
		if p.r.off == top.end {
			if top.hasChildren {
				p.warnAt(p.position(p.r.off, -1), fmt.Errorf("%w: %q", WarnMissingNodeEndMarker, top.name))
			}
			p.open = p.open[:n-1]
			return fbx.Event{Kind: fbx.EventEndNode}, nil
		}
		if p.r.off > top.end {
			return p.fail(p.r.off, fmt.Errorf("%w: node %q ends at %d", ErrNodeLength, top.name, top.end))
		}
	}

	start := p.r.off
	hlen := nodeHeaderLen(p.version)
	if _, err := io.ReadFull(p.r, p.scratch[:hlen]); err != nil {
		return p.fail(start, truncated(err))
	}
	h := decodeNodeHeader(p.scratch[:hlen], p.version)
	if !h.isEndMarker() {
		return p.startNode(start, h)
	}

	n := len(p.open)
	if n == 0 {
		p.done = true
		return fbx.Event{Kind: fbx.EventEndStream, Err: p.readFooter()}, nil
	}
	if top := p.open[n-1]; p.r.off != top.end {
		return p.fail(start, fmt.Errorf("%w: end marker of %q at %d, node ends at %d", ErrNodeLength, top.name, p.r.off, top.end))
	}
	p.open = p.open[:n-1]
	return fbx.Event{Kind: fbx.EventEndNode}, nil
}

func (p *Parser) startNode(start int64, h nodeHeader) (fbx.Event, error) {
	if p.limits.MaxDepth > 0 && len(p.open) >= p.limits.MaxDepth {
		return p.fail(start, fmt.Errorf("%w: limit %d", ErrDepthExceeded, p.limits.MaxDepth))
	}
	raw := make([]byte, h.NameLen)
	if _, err := io.ReadFull(p.r, raw); err != nil {
		return p.fail(start, truncated(err))
	}
	name := string(raw)

	body := p.r.off
	if h.EndOffset > math.MaxInt64 || int64(h.EndOffset) < body {
		return p.fail(start, fmt.Errorf("%w: node %q ends at %d before its body at %d", ErrNodeLength, name, h.EndOffset, body))
	}
	end := int64(h.EndOffset)
	if h.AttrListLen > uint64(end-body) {
		return p.fail(start, fmt.Errorf("%w: node %q has %d attribute bytes in a %d byte body", ErrAttributeListLength, name, h.AttrListLen, end-body))
	}

	if n := len(p.open); n > 0 {
		p.open[n-1].hasChildren = true
	}
	p.open = append(p.open, openNode{name: name, end: end})
	if name == "" {
		p.warnAt(p.position(start, -1), WarnEmptyNodeName)
	}

	p.attrs = &attributes{
		p:       p,
		total:   h.NumAttrs,
		listEnd: body + int64(h.AttrListLen),
		attrEnd: body,
	}
	return fbx.Event{Kind: fbx.EventStartNode, Name: name, Attributes: p.attrs}, nil
}

// position snapshots the open node path at offset.
func (p *Parser) position(offset int64, attr int) diag.Position {
	path := make([]string, len(p.open))
	for i, n := range p.open {
		path[i] = n.name
	}
	return diag.Position{Offset: offset, NodePath: path, Attribute: attr}
}

func (p *Parser) errorAt(offset int64, attr int, err error) *Error {
	return &Error{Pos: p.position(offset, attr), Err: err}
}

// fail ends the parse with a positioned error.
func (p *Parser) fail(offset int64, err error) (fbx.Event, error) {
	p.done = true
	return fbx.Event{}, p.errorAt(offset, -1, err)
}

func (p *Parser) warnAt(pos diag.Position, warning error) {
	if p.warn != nil {
		p.warn(warning, pos)
	}
}
