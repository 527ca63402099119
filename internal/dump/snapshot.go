// Package dump renders decoded documents for the command line: a nested
// node listing with optional attribute rows and the diagnostic log, as
// plain text or as JSON, YAML or CBOR.
package dump

import (
	"github.com/danmuck/fbxtree/internal/decode"
	"github.com/danmuck/fbxtree/internal/fbx"
)

// Snapshot is the serialisable view of one decoded document.
type Snapshot struct {
	Path        string         `json:"path" yaml:"path" cbor:"path"`
	Version     uint32         `json:"version" yaml:"version" cbor:"version"`
	OK          bool           `json:"ok" yaml:"ok" cbor:"ok"`
	Error       string         `json:"error,omitempty" yaml:"error,omitempty" cbor:"error,omitempty"`
	Nodes       []NodeSnapshot `json:"nodes" yaml:"nodes" cbor:"nodes"`
	Diagnostics []Diagnostic   `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty" cbor:"diagnostics,omitempty"`
}

type NodeSnapshot struct {
	Name       string         `json:"name" yaml:"name" cbor:"name"`
	Sentinel   bool           `json:"sentinel,omitempty" yaml:"sentinel,omitempty" cbor:"sentinel,omitempty"`
	AttrStart  int            `json:"attr_start" yaml:"attr_start" cbor:"attr_start"`
	AttrCount  int            `json:"attr_count" yaml:"attr_count" cbor:"attr_count"`
	Attributes []Attribute    `json:"attributes,omitempty" yaml:"attributes,omitempty" cbor:"attributes,omitempty"`
	Children   []NodeSnapshot `json:"children,omitempty" yaml:"children,omitempty" cbor:"children,omitempty"`
}

// Attribute is one (index, type, value) row of a node.
type Attribute struct {
	Index int    `json:"index" yaml:"index" cbor:"index"`
	Type  string `json:"type" yaml:"type" cbor:"type"`
	Value string `json:"value" yaml:"value" cbor:"value"`
}

type Diagnostic struct {
	Seq      uint64 `json:"seq" yaml:"seq" cbor:"seq"`
	Severity string `json:"severity" yaml:"severity" cbor:"severity"`
	Message  string `json:"message" yaml:"message" cbor:"message"`
	Depth    int    `json:"depth" yaml:"depth" cbor:"depth"`
	Position string `json:"position,omitempty" yaml:"position,omitempty" cbor:"position,omitempty"`
}

// NewSnapshot captures doc. Attribute rows are rendered only when
// withAttributes is set.
func NewSnapshot(doc *decode.Document, withAttributes bool) (Snapshot, error) {
	s := Snapshot{
		Path:    doc.Path,
		Version: doc.Version,
		OK:      doc.Err == nil,
	}
	if doc.Err != nil {
		s.Error = doc.Err.Error()
	}

	for _, id := range doc.Tree.Roots() {
		n, err := snapshotNode(doc, id, withAttributes)
		if err != nil {
			return Snapshot{}, err
		}
		s.Nodes = append(s.Nodes, n)
	}

	for e := range doc.Log.All() {
		d := Diagnostic{
			Seq:      e.Seq,
			Severity: e.Severity.String(),
			Message:  e.Message,
			Depth:    e.Depth,
		}
		if e.Position != nil {
			d.Position = e.Position.String()
		}
		s.Diagnostics = append(s.Diagnostics, d)
	}
	return s, nil
}

func snapshotNode(doc *decode.Document, id fbx.NodeID, withAttributes bool) (NodeSnapshot, error) {
	node := doc.Tree.Node(id)
	out := NodeSnapshot{
		Name:      node.Name,
		Sentinel:  node.Sentinel,
		AttrStart: node.AttrStart,
		AttrCount: node.AttrCount,
	}
	if withAttributes && node.AttrCount > 0 {
		rows, err := doc.Store.NodeRows(node)
		if err != nil {
			return NodeSnapshot{}, err
		}
		out.Attributes = make([]Attribute, len(rows))
		for i, r := range rows {
			out.Attributes[i] = Attribute(r)
		}
	}
	for _, child := range node.Children {
		n, err := snapshotNode(doc, child, withAttributes)
		if err != nil {
			return NodeSnapshot{}, err
		}
		out.Children = append(out.Children, n)
	}
	return out, nil
}
