package inference

import (
	"io"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/mangiafuoco/pkg/events"
)

// Assembler consumes a ChatStream and accumulates its text fragments.
//
// Cancellation is cooperative: the stop predicate is polled before every
// Recv, never between appends, so already-received text is never
// discarded. Whatever was accumulated is always returned, even the empty
// string, so the caller can persist a partial assistant turn.
type Assembler struct {
	sink events.EventSink
}

type AssemblerOption func(*Assembler)

func WithSink(sink events.EventSink) AssemblerOption {
	return func(a *Assembler) {
		a.sink = sink
	}
}

func NewAssembler(options ...AssemblerOption) *Assembler {
	ret := &Assembler{
		sink: events.NullSink{},
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Assemble pulls fragments until the stream completes, fails, or stopCheck
// turns true. It returns the accumulated text, whether the stream was
// aborted by a stop request, and the stream error if one occurred.
//
// A mid-stream error is not fatal to the session: the partial text is
// returned alongside it with aborted == false. If Recv fails because the
// stop request cancelled the underlying context, the failure is reported
// as an abort instead.
func (a *Assembler) Assemble(metadata events.EventMetadata, stream ChatStream, stopCheck func() bool) (string, bool, error) {
	defer func() {
		_ = stream.Close()
	}()

	a.publishBlind(events.NewStartEvent(metadata))

	completion := ""

	for {
		if stopCheck() {
			a.publishBlind(events.NewInterruptEvent(metadata, completion))
			return completion, true, nil
		}

		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			a.publishBlind(events.NewFinalEvent(metadata, completion))
			return completion, false, nil
		}
		if err != nil {
			// the stop signal cancels the stream context to unblock Recv
			if stopCheck() {
				a.publishBlind(events.NewInterruptEvent(metadata, completion))
				return completion, true, nil
			}

			a.publishBlind(events.NewErrorEvent(metadata, err))
			return completion, false, errors.Wrap(err, "stream receive failed")
		}

		if chunk.Delta == "" {
			continue
		}

		completion += chunk.Delta
		a.publishBlind(events.NewPartialCompletionEvent(metadata, chunk.Delta, completion))
	}
}

func (a *Assembler) publishBlind(event events.Event) {
	if err := a.sink.PublishEvent(event); err != nil {
		log.Warn().Err(err).Str("event_type", string(event.Type())).Msg("failed to publish event")
	}
}
