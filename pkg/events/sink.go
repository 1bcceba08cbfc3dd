package events

// EventSink receives events during a streamed completion. Sinks must not
// block for long; the assembler publishes from the hot streaming loop.
type EventSink interface {
	PublishEvent(event Event) error
}

// NullSink discards all events.
type NullSink struct{}

func (NullSink) PublishEvent(Event) error {
	return nil
}

var _ EventSink = NullSink{}
