package events

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type EventType string

const (
	// EventTypeStart to EventTypeFinal are the lifecycle of one streamed completion
	EventTypeStart             EventType = "start"
	EventTypeFinal             EventType = "final"
	EventTypePartialCompletion EventType = "partial"

	// EventTypeInterrupt is published when a stop request aborts the stream mid-flight
	EventTypeInterrupt EventType = "interrupt"
	EventTypeError     EventType = "error"
)

// EventMetadata ties a stream of events to the completion that produced them.
type EventMetadata struct {
	ID    uuid.UUID `json:"message_id"`
	Model string    `json:"model,omitempty"`
}

func (em EventMetadata) MarshalZerologObject(e *zerolog.Event) {
	e.Str("message_id", em.ID.String())
	if em.Model != "" {
		e.Str("model", em.Model)
	}
}

type Event interface {
	Type() EventType
	Metadata() EventMetadata
	Payload() []byte
}

type EventImpl struct {
	Type_     EventType     `json:"type"`
	Metadata_ EventMetadata `json:"meta,omitempty"`

	// raw JSON this event was deserialized from (see NewEventFromJson)
	payload []byte
}

func (e *EventImpl) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("type", string(e.Type_))
	ev.Object("meta", e.Metadata_)
}

func (e *EventImpl) Type() EventType {
	return e.Type_
}

func (e *EventImpl) Metadata() EventMetadata {
	return e.Metadata_
}

func (e *EventImpl) Payload() []byte {
	return e.payload
}

func (e *EventImpl) SetPayload(b []byte) {
	e.payload = b
}

var _ Event = &EventImpl{}

type EventPartialCompletionStart struct {
	EventImpl
}

func NewStartEvent(metadata EventMetadata) *EventPartialCompletionStart {
	return &EventPartialCompletionStart{
		EventImpl: EventImpl{
			Type_:     EventTypeStart,
			Metadata_: metadata,
		},
	}
}

var _ Event = &EventPartialCompletionStart{}

// EventPartialCompletion carries one streamed text fragment.
type EventPartialCompletion struct {
	EventImpl
	Delta string `json:"delta"`
	// the complete completion string so far
	Completion string `json:"completion"`
}

func NewPartialCompletionEvent(metadata EventMetadata, delta string, completion string) *EventPartialCompletion {
	return &EventPartialCompletion{
		EventImpl: EventImpl{
			Type_:     EventTypePartialCompletion,
			Metadata_: metadata,
		},
		Delta:      delta,
		Completion: completion,
	}
}

var _ Event = &EventPartialCompletion{}

type EventFinal struct {
	EventImpl
	Text string `json:"text"`
}

func NewFinalEvent(metadata EventMetadata, text string) *EventFinal {
	return &EventFinal{
		EventImpl: EventImpl{
			Type_:     EventTypeFinal,
			Metadata_: metadata,
		},
		Text: text,
	}
}

var _ Event = &EventFinal{}

// EventInterrupt carries the text accumulated up to the stop request.
type EventInterrupt struct {
	EventImpl
	Text string `json:"text"`
}

func NewInterruptEvent(metadata EventMetadata, text string) *EventInterrupt {
	return &EventInterrupt{
		EventImpl: EventImpl{
			Type_:     EventTypeInterrupt,
			Metadata_: metadata,
		},
		Text: text,
	}
}

var _ Event = &EventInterrupt{}

type EventError struct {
	EventImpl
	ErrorString string `json:"error_string"`
}

func NewErrorEvent(metadata EventMetadata, err error) *EventError {
	return &EventError{
		EventImpl: EventImpl{
			Type_:     EventTypeError,
			Metadata_: metadata,
		},
		ErrorString: err.Error(),
	}
}

var _ Event = &EventError{}

// NewEventFromJson decodes an event that went over the wire (the watermill
// message payload) back into its concrete type.
func NewEventFromJson(b []byte) (Event, error) {
	var impl EventImpl
	if err := json.Unmarshal(b, &impl); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal event")
	}
	impl.SetPayload(b)

	switch impl.Type_ {
	case EventTypeStart:
		return &EventPartialCompletionStart{EventImpl: impl}, nil

	case EventTypePartialCompletion:
		ret := &EventPartialCompletion{EventImpl: impl}
		if err := json.Unmarshal(b, ret); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal partial completion event")
		}
		ret.SetPayload(b)
		return ret, nil

	case EventTypeFinal:
		ret := &EventFinal{EventImpl: impl}
		if err := json.Unmarshal(b, ret); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal final event")
		}
		ret.SetPayload(b)
		return ret, nil

	case EventTypeInterrupt:
		ret := &EventInterrupt{EventImpl: impl}
		if err := json.Unmarshal(b, ret); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal interrupt event")
		}
		ret.SetPayload(b)
		return ret, nil

	case EventTypeError:
		ret := &EventError{EventImpl: impl}
		if err := json.Unmarshal(b, ret); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal error event")
		}
		ret.SetPayload(b)
		return ret, nil

	default:
		return nil, errors.Errorf("unknown event type %q", impl.Type_)
	}
}
