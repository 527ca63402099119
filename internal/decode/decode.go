// Package decode runs one complete decode of a binary FBX document: it
// wires the tokenizer to the structural walker and collects the tree, the
// attribute store and the diagnostic log into a Document.
package decode

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/danmuck/fbxtree/internal/diag"
	"github.com/danmuck/fbxtree/internal/fbx"
	"github.com/danmuck/fbxtree/internal/fbxbin"
	"github.com/danmuck/fbxtree/internal/observability"
	"github.com/danmuck/fbxtree/internal/walker"
	"github.com/rs/zerolog"
)

// Document is the result of one decode. Tree and Store hold everything
// committed before a failure; Err is nil when the stream ended cleanly.
type Document struct {
	Path     string
	Version  uint32
	Tree     *fbx.Tree
	Store    *fbx.Store
	Log      *diag.Log
	Err      error
	Stats    walker.Stats
	Duration time.Duration
}

func (d *Document) fail(err error) {
	d.Err = err
	d.Log.RecordError(err, nil)
}

// Report summarises the document for logging and metrics.
func (d *Document) Report() observability.DecodeReport {
	return observability.DecodeReport{
		Path:       d.Path,
		Version:    d.Version,
		Duration:   d.Duration,
		Nodes:      d.Stats.Nodes,
		Attributes: d.Stats.Attributes,
		Warnings:   d.Log.Count(diag.SeverityWarning),
		Errors:     d.Log.Count(diag.SeverityError),
		Err:        d.Err,
	}
}

// Decoder produces Documents. Only the warning sink of the most recent
// decode is live; starting a decode revokes the previous one.
type Decoder struct {
	limits fbxbin.Limits
	loader fbx.Loader
	logger zerolog.Logger

	mu   sync.Mutex
	sink *diag.Sink
}

type Option func(*Decoder)

func WithLimits(limits fbxbin.Limits) Option {
	return func(d *Decoder) {
		d.limits = limits
	}
}

func WithLoader(l fbx.Loader) Option {
	return func(d *Decoder) {
		d.loader = l
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(d *Decoder) {
		d.logger = logger
	}
}

func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{
		limits: fbxbin.DefaultLimits(),
		loader: fbx.AttributeLoader{},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DecodeFile decodes the file at path. A file that cannot be opened yields
// a Document whose log holds the open error and whose tree is empty.
func (d *Decoder) DecodeFile(path string) *Document {
	f, err := os.Open(path)
	if err != nil {
		doc, _ := d.begin(path)
		doc.fail(err)
		d.finish(doc, time.Now())
		return doc
	}
	defer f.Close()
	return d.decode(path, f)
}

// Decode decodes a document from r.
func (d *Decoder) Decode(r io.Reader) *Document {
	return d.decode("", r)
}

func (d *Decoder) decode(path string, r io.Reader) *Document {
	started := time.Now()
	doc, sink := d.begin(path)
	defer d.finish(doc, started)

	p, err := fbxbin.NewParser(r, d.limits)
	if err != nil {
		doc.fail(err)
		return doc
	}
	doc.Version = p.Version()

	p.SetWarningHandler(func(warning error, pos diag.Position) {
		sink.Warn(warning, pos)
	})

	w := walker.New(p, doc.Tree, doc.Store,
		walker.WithLoader(d.loader),
		walker.WithLogger(d.logger),
	)
	err = w.Walk()
	doc.Stats = w.Stats()
	if err != nil {
		doc.fail(err)
	}
	return doc
}

// begin creates a fresh document and makes its log the only live warning
// target.
func (d *Decoder) begin(path string) (*Document, *diag.Sink) {
	doc := &Document{
		Path:  path,
		Tree:  fbx.NewTree(),
		Store: fbx.NewStore(),
		Log:   diag.NewLog(),
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sink.Revoke()
	d.sink = doc.Log.Sink()
	return doc, d.sink
}

func (d *Decoder) finish(doc *Document, started time.Time) {
	doc.Duration = time.Since(started)
	report := doc.Report()
	observability.RecordDecode(report)
	observability.LogDecode(d.logger, report)
}
