package conversation

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleAssistant Role = "assistant"
	RoleUser      Role = "user"
)

// Valid reports whether r is one of the three chat roles. Anything else
// (tool, function, ...) is rejected at message construction.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleAssistant, RoleUser:
		return true
	default:
		return false
	}
}

// Message is a single entry in the interview transcript. Messages are
// immutable once created; insertion order is conversation order.
type Message struct {
	ID   uuid.UUID `json:"id"`
	Role Role      `json:"role"`
	Text string    `json:"text"`
	Time time.Time `json:"time"`
}

type MessageOption func(*Message)

func WithID(id uuid.UUID) MessageOption {
	return func(message *Message) {
		message.ID = id
	}
}

func WithTime(t time.Time) MessageOption {
	return func(message *Message) {
		message.Time = t
	}
}

func NewMessage(role Role, text string, options ...MessageOption) (*Message, error) {
	if !role.Valid() {
		return nil, errors.Errorf("invalid message role %q", role)
	}

	ret := &Message{
		ID:   uuid.New(),
		Role: role,
		Text: text,
		Time: time.Now(),
	}

	for _, option := range options {
		option(ret)
	}

	return ret, nil
}

// MustNewMessage is for call sites that pass one of the role constants.
func MustNewMessage(role Role, text string, options ...MessageOption) *Message {
	msg, err := NewMessage(role, text, options...)
	if err != nil {
		panic(err)
	}
	return msg
}

func (m *Message) View() string {
	return fmt.Sprintf("%s: %s", m.Role, m.Text)
}

type Conversation []*Message

// Render returns the plain-text transcript, one "role: content" line per
// message, in conversation order. This is both the download format and
// the rendering handed to the feedback scorer.
func (messages Conversation) Render() string {
	lines := make([]string, 0, len(messages))
	for _, message := range messages {
		lines = append(lines, message.View())
	}

	return strings.Join(lines, "\n")
}

// WithoutSystem returns the conversation minus system messages, which is
// what gets displayed in the chat view.
func (messages Conversation) WithoutSystem() Conversation {
	ret := make(Conversation, 0, len(messages))
	for _, message := range messages {
		if message.Role != RoleSystem {
			ret = append(ret, message)
		}
	}

	return ret
}
