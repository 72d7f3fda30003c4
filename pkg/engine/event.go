package engine

// Names of Other events engines emit when playback stops.
const (
	EventEndFile  = "end-file"
	EventShutdown = "shutdown"
)

// EventKind classifies events polled from the engine.
type EventKind int

const (
	// KindNone means no event is pending.
	KindNone EventKind = iota
	KindPropertyChange
	KindOther
)

// Event is one polled engine event. It is not retained past a drain cycle.
type Event struct {
	Kind  EventKind
	Name  string
	Value Value
}

// None is returned by WaitEvent when the queue is empty.
var None = Event{Kind: KindNone}

// PropertyChange builds an observed-property notification.
func PropertyChange(name string, v Value) Event {
	return Event{Kind: KindPropertyChange, Name: name, Value: v}
}

// Other builds an event the player does not interpret (end-file, log lines).
func Other(name string) Event {
	return Event{Kind: KindOther, Name: name}
}
