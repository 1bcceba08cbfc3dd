package ui

import (
	"github.com/ThreeDotsLabs/watermill/message"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/mangiafuoco/pkg/events"
)

// StreamEventMsg wraps a chat event delivered over the watermill bus so
// the bubbletea update loop can render streamed fragments live.
type StreamEventMsg struct {
	Event events.Event
}

// ForwardToProgram returns a watermill handler that re-delivers chat
// events as bubbletea messages.
func ForwardToProgram(p *tea.Program) func(msg *message.Message) error {
	return func(msg *message.Message) error {
		e, err := events.NewEventFromJson(msg.Payload)
		if err != nil {
			// don't kill the handler for one bad message
			log.Warn().Err(err).Str("message_id", msg.UUID).Msg("failed to parse chat event")
			return nil
		}

		p.Send(StreamEventMsg{Event: e})
		return nil
	}
}
