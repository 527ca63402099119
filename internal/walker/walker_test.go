package walker

import (
	"errors"
	"iter"
	"math/rand/v2"
	"slices"
	"sort"
	"testing"

	"github.com/danmuck/fbxtree/internal/fbx"
	"github.com/danmuck/fbxtree/internal/logging"
	"github.com/danmuck/fbxtree/internal/testutil/testlog"
)

type rawAttr func(l fbx.Loader) (fbx.Attribute, error)

func i32(v int32) rawAttr {
	return func(l fbx.Loader) (fbx.Attribute, error) { return l.LoadI32(v) }
}

func f64s(vs ...float64) rawAttr {
	return func(l fbx.Loader) (fbx.Attribute, error) {
		return l.LoadSeqF64(func(yield func(float64, error) bool) {
			for _, v := range vs {
				if !yield(v, nil) {
					return
				}
			}
		}, len(vs))
	}
}

var errCorruptElement = errors.New("corrupt element")

func brokenI32s() rawAttr {
	return func(l fbx.Loader) (fbx.Attribute, error) {
		var seq iter.Seq2[int32, error] = func(yield func(int32, error) bool) {
			if !yield(1, nil) {
				return
			}
			yield(0, errCorruptElement)
		}
		return l.LoadSeqI32(seq, 2)
	}
}

type attrList struct {
	attrs []rawAttr
	next  int
}

func (a *attrList) LoadNext(l fbx.Loader) (fbx.Attribute, bool, error) {
	if a.next >= len(a.attrs) {
		return nil, false, nil
	}
	raw := a.attrs[a.next]
	a.next++
	attr, err := raw(l)
	if err != nil {
		return nil, false, err
	}
	return attr, true, nil
}

type countedList struct {
	attrList
	total uint64
}

func (c *countedList) TotalCount() uint64 { return c.total }

var errScriptExhausted = errors.New("script exhausted")

type script struct {
	events []fbx.Event
	pulled int
}

func (s *script) NextEvent() (fbx.Event, error) {
	if s.pulled >= len(s.events) {
		return fbx.Event{}, errScriptExhausted
	}
	ev := s.events[s.pulled]
	s.pulled++
	return ev, nil
}

func start(name string, attrs ...rawAttr) fbx.Event {
	return fbx.Event{Kind: fbx.EventStartNode, Name: name, Attributes: &attrList{attrs: attrs}}
}

func end() fbx.Event { return fbx.Event{Kind: fbx.EventEndNode} }

func endStream(err error) fbx.Event { return fbx.Event{Kind: fbx.EventEndStream, Err: err} }

func newWalker(events ...fbx.Event) (*Walker, *script, *fbx.Tree, *fbx.Store) {
	src := &script{events: events}
	tree := fbx.NewTree()
	store := fbx.NewStore()
	return New(src, tree, store, WithLogger(logging.For("walker-test"))), src, tree, store
}

func names(tree *fbx.Tree) []string {
	var out []string
	tree.Walk(func(id fbx.NodeID, _ int) bool {
		out = append(out, tree.Node(id).Name)
		return true
	})
	return out
}

func TestWalkBuildsTreeWithSentinelsAndRanges(t *testing.T) {
	testlog.Start(t)
	w, _, tree, store := newWalker(
		start("Root", i32(5)),
		start("Child"),
		end(),
		end(),
		endStream(nil),
	)
	if err := w.Walk(); err != nil {
		t.Fatalf("walk: %v", err)
	}

	roots := tree.Roots()
	if len(roots) != 3 {
		t.Fatalf("expected header, Root, footer; got %v", names(tree))
	}
	header, root, footer := tree.Node(roots[0]), tree.Node(roots[1]), tree.Node(roots[2])
	if header.Name != HeaderName || !header.Sentinel || header.AttrCount != 0 {
		t.Fatalf("unexpected header %+v", header)
	}
	if footer.Name != FooterName || !footer.Sentinel || footer.AttrCount != 0 {
		t.Fatalf("unexpected footer %+v", footer)
	}
	if root.Name != "Root" || root.AttrCount != 1 || root.AttrStart != 0 {
		t.Fatalf("unexpected root %+v", root)
	}
	if len(root.Children) != 1 {
		t.Fatalf("expected one child, got %v", root.Children)
	}
	child := tree.Node(root.Children[0])
	if child.Name != "Child" || child.AttrCount != 0 || child.AttrStart != 1 || child.Parent != roots[1] {
		t.Fatalf("unexpected child %+v", child)
	}
	if store.Len() != 1 {
		t.Fatalf("expected one attribute, got %d", store.Len())
	}
	if a, _ := store.At(0); a != fbx.SingleI32(5) {
		t.Fatalf("unexpected attribute %#v", a)
	}
	stats := w.Stats()
	if stats.Nodes != 2 || stats.Attributes != 1 || stats.MaxDepth != 2 || stats.Events != 5 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestEndNodeWithoutOpenNodeIsFatal(t *testing.T) {
	w, src, tree, _ := newWalker(end(), endStream(nil))
	err := w.Walk()
	if !errors.Is(err, ErrUnbalancedEnd) {
		t.Fatalf("expected ErrUnbalancedEnd, got %v", err)
	}
	if tree.Len() != 1 || tree.Node(0).Name != HeaderName {
		t.Fatalf("expected only the header sentinel, got %v", names(tree))
	}
	if src.pulled != 1 {
		t.Fatalf("walk must stop at the failing event, pulled %d", src.pulled)
	}
}

func TestAttributeFailureAbortsAndDropsFailingNode(t *testing.T) {
	w, src, tree, store := newWalker(
		start("Objects", i32(1)),
		start("Geometry", f64s(1, 2), brokenI32s()),
		end(),
		end(),
		endStream(nil),
	)
	err := w.Walk()
	if !errors.Is(err, fbx.ErrArrayElement) || !errors.Is(err, errCorruptElement) {
		t.Fatalf("expected array element failure, got %v", err)
	}
	if got := names(tree); !slices.Equal(got, []string{HeaderName, "Objects"}) {
		t.Fatalf("unexpected nodes after abort %v", got)
	}
	if store.Len() != 1 {
		t.Fatalf("failing node attributes must not be committed, store has %d", store.Len())
	}
	if src.pulled != 2 {
		t.Fatalf("no event may be consumed after the failure, pulled %d", src.pulled)
	}
	if _, err := w.Step(); !errors.Is(err, ErrFinished) {
		t.Fatalf("expected ErrFinished after abort, got %v", err)
	}
}

func TestEndStreamErrorIsTerminalAndFooterAppended(t *testing.T) {
	footerErr := errors.New("footer magic mismatch")
	w, _, tree, _ := newWalker(start("A"), end(), endStream(footerErr))
	err := w.Walk()
	if !errors.Is(err, footerErr) {
		t.Fatalf("expected footer error, got %v", err)
	}
	got := names(tree)
	if got[len(got)-1] != FooterName {
		t.Fatalf("footer must be appended on failure too, got %v", got)
	}
	done, err := w.Step()
	if !done || !errors.Is(err, ErrFinished) {
		t.Fatalf("expected finished walker, got done=%v err=%v", done, err)
	}
}

func TestEndStreamWithOpenNodesIsFatal(t *testing.T) {
	w, _, tree, _ := newWalker(start("A"), endStream(nil))
	if err := w.Walk(); !errors.Is(err, ErrUnclosedNodes) {
		t.Fatalf("expected ErrUnclosedNodes, got %v", err)
	}
	if got := names(tree); got[len(got)-1] != FooterName {
		t.Fatalf("expected footer, got %v", got)
	}
}

func TestSourceErrorIsFatal(t *testing.T) {
	w, _, _, _ := newWalker(start("A"))
	if err := w.Walk(); !errors.Is(err, errScriptExhausted) {
		t.Fatalf("expected source error, got %v", err)
	}
}

func TestUnknownEventKindIsFatal(t *testing.T) {
	w, _, _, _ := newWalker(fbx.Event{Kind: 42})
	if err := w.Walk(); !errors.Is(err, ErrUnknownEvent) {
		t.Fatalf("expected ErrUnknownEvent, got %v", err)
	}
}

func TestCountedSourceMismatchIsFatal(t *testing.T) {
	counted := &countedList{attrList: attrList{attrs: []rawAttr{i32(1)}}, total: 2}
	w, _, _, store := newWalker(
		fbx.Event{Kind: fbx.EventStartNode, Name: "Counted", Attributes: counted},
		end(),
		endStream(nil),
	)
	if err := w.Walk(); !errors.Is(err, ErrAttributeCount) {
		t.Fatalf("expected ErrAttributeCount, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("mismatched node must not commit attributes")
	}

	ok := &countedList{attrList: attrList{attrs: []rawAttr{i32(1), i32(2)}}, total: 2}
	w, _, _, store = newWalker(
		fbx.Event{Kind: fbx.EventStartNode, Name: "Counted", Attributes: ok},
		end(),
		endStream(nil),
	)
	if err := w.Walk(); err != nil {
		t.Fatalf("walk: %v", err)
	}
	if store.Len() != 2 {
		t.Fatalf("expected 2 attributes, got %d", store.Len())
	}
}

func TestNilAttributeSourceMeansNoAttributes(t *testing.T) {
	w, _, tree, _ := newWalker(
		fbx.Event{Kind: fbx.EventStartNode, Name: "Bare"},
		end(),
		endStream(nil),
	)
	if err := w.Walk(); err != nil {
		t.Fatalf("walk: %v", err)
	}
	if n := tree.Node(tree.Roots()[1]); n.AttrCount != 0 || n.AttrStart != 0 {
		t.Fatalf("unexpected node %+v", n)
	}
}

// randomEvents produces a balanced stream with random nesting and
// attribute counts.
func randomEvents(r *rand.Rand, budget int) []fbx.Event {
	var events []fbx.Event
	depth := 0
	for budget > 0 || depth > 0 {
		if budget > 0 && (depth == 0 || r.IntN(3) != 0) {
			attrs := make([]rawAttr, r.IntN(4))
			for i := range attrs {
				attrs[i] = i32(int32(r.IntN(1000)))
			}
			events = append(events, start("N", attrs...))
			depth++
			budget--
			continue
		}
		events = append(events, end())
		depth--
	}
	return append(events, endStream(nil))
}

func TestAttributeRangesAreDisjointAndCoverStore(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		r := rand.New(rand.NewPCG(seed, seed*7))
		w, _, tree, store := newWalker(randomEvents(r, 40)...)
		if err := w.Walk(); err != nil {
			t.Fatalf("seed %d: walk: %v", seed, err)
		}

		type span struct{ start, end int }
		var spans []span
		tree.Walk(func(id fbx.NodeID, _ int) bool {
			n := tree.Node(id)
			if !n.Sentinel && n.AttrCount > 0 {
				spans = append(spans, span{n.AttrStart, n.AttrStart + n.AttrCount})
			}
			return true
		})
		sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

		next := 0
		for _, s := range spans {
			if s.start != next {
				t.Fatalf("seed %d: gap or overlap at %d (expected %d)", seed, s.start, next)
			}
			next = s.end
		}
		if next != store.Len() {
			t.Fatalf("seed %d: ranges cover [0,%d), store has %d", seed, next, store.Len())
		}
	}
}
