package diag

import (
	"strconv"
	"strings"
)

// Position locates a diagnostic within the source stream.
type Position struct {
	// Offset is the absolute byte offset from the start of the stream.
	Offset int64
	// NodePath holds the names of the nodes open at Offset, outermost first.
	NodePath []string
	// Attribute is the index within the current attribute list, or -1.
	Attribute int
}

// At returns a position outside any attribute list.
func At(offset int64, path ...string) Position {
	return Position{Offset: offset, NodePath: path, Attribute: -1}
}

func (p Position) String() string {
	var b strings.Builder
	b.WriteString("offset=")
	b.WriteString(strconv.FormatInt(p.Offset, 10))
	b.WriteString(" path=/")
	b.WriteString(strings.Join(p.NodePath, "/"))
	if p.Attribute >= 0 {
		b.WriteString(" attr=")
		b.WriteString(strconv.Itoa(p.Attribute))
	}
	return b.String()
}

// clone detaches the node path so later mutation by the producer is not
// observed through a recorded entry.
func (p Position) clone() *Position {
	out := p
	if p.NodePath != nil {
		out.NodePath = append([]string(nil), p.NodePath...)
	}
	return &out
}
