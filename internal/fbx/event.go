package fbx

// EventKind identifies a structural stream event.
type EventKind uint8

const (
	EventStartNode EventKind = iota + 1
	EventEndNode
	EventEndStream
)

func (k EventKind) String() string {
	switch k {
	case EventStartNode:
		return "start_node"
	case EventEndNode:
		return "end_node"
	case EventEndStream:
		return "end_stream"
	default:
		return "unknown"
	}
}

// Event is one structural event pulled from a tokenizer.
type Event struct {
	Kind EventKind
	// Name and Attributes are set for EventStartNode.
	Name       string
	Attributes AttributeSource
	// Err is the stream result carried by EventEndStream.
	Err error
}

// EventSource yields the events of one stream in order.
type EventSource interface {
	NextEvent() (Event, error)
}

// AttributeSource yields the attributes of one node. LoadNext reports
// false once the list is exhausted.
type AttributeSource interface {
	LoadNext(l Loader) (Attribute, bool, error)
}

// CountedSource is implemented by attribute sources that announce their
// attribute count before being drained.
type CountedSource interface {
	AttributeSource
	TotalCount() uint64
}
