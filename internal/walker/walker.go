// Package walker rebuilds the node hierarchy of an FBX event stream.
//
// A Walker pulls events from an fbx.EventSource, drains each node's
// attributes into an fbx.Store and records the node, with its attribute
// range, in an fbx.Tree. Attribute indices are allocated globally in
// encounter order, so every node owns a contiguous, disjoint range.
package walker

import (
	"errors"
	"fmt"

	"github.com/danmuck/fbxtree/internal/fbx"
	"github.com/rs/zerolog"
)

const (
	HeaderName = "(FBX header)"
	FooterName = "(FBX footer)"
)

var (
	ErrUnbalancedEnd  = errors.New("walker: end node without open node")
	ErrUnclosedNodes  = errors.New("walker: stream ended with open nodes")
	ErrAttributeCount = errors.New("walker: attribute count mismatch")
	ErrUnknownEvent   = errors.New("walker: unknown event kind")
	ErrFinished       = errors.New("walker: walk already finished")
)

type state uint8

const (
	stateAwaitingHeader state = iota
	stateWalking
	stateFinished
)

// Stats summarises one walk.
type Stats struct {
	Events     int
	Nodes      int
	Attributes int
	MaxDepth   int
}

// Walker is single-use: once the stream ends or a fatal error occurs it
// refuses further events.
type Walker struct {
	src    fbx.EventSource
	tree   *fbx.Tree
	store  *fbx.Store
	loader fbx.Loader
	logger zerolog.Logger

	open    []fbx.NodeID
	pending []fbx.Attribute
	state   state
	stats   Stats
}

type Option func(*Walker)

// WithLoader replaces the default fbx.AttributeLoader.
func WithLoader(l fbx.Loader) Option {
	return func(w *Walker) {
		w.loader = l
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(w *Walker) {
		w.logger = logger
	}
}

// New returns a walker that fills tree and store from src.
func New(src fbx.EventSource, tree *fbx.Tree, store *fbx.Store, opts ...Option) *Walker {
	w := &Walker{
		src:    src,
		tree:   tree,
		store:  store,
		loader: fbx.AttributeLoader{},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Walk consumes events until the stream ends or a fatal error occurs.
// On failure the tree and store keep everything committed before it.
func (w *Walker) Walk() error {
	for {
		done, err := w.Step()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// Step consumes one event. It reports true once the stream has ended.
func (w *Walker) Step() (bool, error) {
	switch w.state {
	case stateFinished:
		return true, ErrFinished
	case stateAwaitingHeader:
		w.tree.AppendSentinel(HeaderName)
		w.state = stateWalking
	}

	ev, err := w.src.NextEvent()
	if err != nil {
		return w.fail(err)
	}
	w.stats.Events++

	switch ev.Kind {
	case fbx.EventStartNode:
		if err := w.startNode(ev); err != nil {
			return w.fail(err)
		}
		return false, nil
	case fbx.EventEndNode:
		if len(w.open) == 0 {
			return w.fail(ErrUnbalancedEnd)
		}
		w.open = w.open[:len(w.open)-1]
		return false, nil
	case fbx.EventEndStream:
		return w.endStream(ev)
	default:
		return w.fail(fmt.Errorf("%w: %d", ErrUnknownEvent, ev.Kind))
	}
}

// Stats returns counters for the events consumed so far.
func (w *Walker) Stats() Stats {
	return w.stats
}

// Depth reports the number of currently open nodes.
func (w *Walker) Depth() int {
	return len(w.open)
}

func (w *Walker) startNode(ev fbx.Event) error {
	parent := fbx.NoNode
	if len(w.open) > 0 {
		parent = w.open[len(w.open)-1]
	}

	attrs, err := w.drain(ev.Attributes)
	if err != nil {
		return fmt.Errorf("node %q: %w", ev.Name, err)
	}

	start := w.store.Append(attrs...)
	id := w.tree.Append(parent, ev.Name, len(attrs), start)
	w.open = append(w.open, id)

	w.stats.Nodes++
	w.stats.Attributes += len(attrs)
	if len(w.open) > w.stats.MaxDepth {
		w.stats.MaxDepth = len(w.open)
	}
	w.logger.Trace().
		Str("name", ev.Name).
		Int("depth", len(w.open)).
		Int("attr_start", start).
		Int("attr_count", len(attrs)).
		Msg("walker.start_node")
	return nil
}

// drain loads every attribute of src before anything is committed, so a
// failing node leaves no attributes behind.
func (w *Walker) drain(src fbx.AttributeSource) ([]fbx.Attribute, error) {
	w.pending = w.pending[:0]
	if src == nil {
		return nil, nil
	}
	for {
		attr, ok, err := src.LoadNext(w.loader)
		if err != nil {
			return nil, fmt.Errorf("attribute %d: %w", len(w.pending), err)
		}
		if !ok {
			break
		}
		w.pending = append(w.pending, attr)
	}
	if counted, ok := src.(fbx.CountedSource); ok {
		if total := counted.TotalCount(); total != uint64(len(w.pending)) {
			return nil, fmt.Errorf("%w: announced %d, loaded %d", ErrAttributeCount, total, len(w.pending))
		}
	}
	return w.pending, nil
}

func (w *Walker) endStream(ev fbx.Event) (bool, error) {
	w.tree.AppendSentinel(FooterName)
	w.state = stateFinished
	if ev.Err != nil {
		w.logger.Debug().Err(ev.Err).Msg("walker.end_stream failed")
		return true, fmt.Errorf("walker: stream ended with error: %w", ev.Err)
	}
	if len(w.open) > 0 {
		return true, fmt.Errorf("%w: %d", ErrUnclosedNodes, len(w.open))
	}
	w.logger.Debug().
		Int("nodes", w.stats.Nodes).
		Int("attributes", w.stats.Attributes).
		Msg("walker.end_stream")
	return true, nil
}

func (w *Walker) fail(err error) (bool, error) {
	w.state = stateFinished
	w.logger.Debug().Err(err).Int("depth", len(w.open)).Msg("walker.abort")
	return true, err
}
