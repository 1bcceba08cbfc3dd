package conversation

import (
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type ManagerImpl struct {
	ConversationID uuid.UUID
	messages       Conversation
}

var _ Manager = (*ManagerImpl)(nil)

type ManagerOption func(*ManagerImpl)

func WithMessages(messages ...*Message) ManagerOption {
	return func(m *ManagerImpl) {
		m.AppendMessages(messages...)
	}
}

func WithManagerConversationID(conversationID uuid.UUID) ManagerOption {
	return func(m *ManagerImpl) {
		m.ConversationID = conversationID
	}
}

func NewManager(options ...ManagerOption) *ManagerImpl {
	ret := &ManagerImpl{
		ConversationID: uuid.Nil,
	}
	for _, option := range options {
		option(ret)
	}

	if ret.ConversationID == uuid.Nil {
		ret.ConversationID = uuid.New()
	}

	return ret
}

func (c *ManagerImpl) GetConversation() Conversation {
	ret := make(Conversation, len(c.messages))
	copy(ret, c.messages)
	return ret
}

func (c *ManagerImpl) AppendMessages(messages ...*Message) {
	for _, msg := range messages {
		log.Trace().
			Str("conversation_id", c.ConversationID.String()).
			Str("message_id", msg.ID.String()).
			Str("role", string(msg.Role)).
			Int("text_length", len(msg.Text)).
			Msg("appending message")
	}

	c.messages = append(c.messages, messages...)
}

func (c *ManagerImpl) UserMessageCount() int {
	count := 0
	for _, msg := range c.messages {
		if msg.Role == RoleUser {
			count++
		}
	}
	return count
}

// SaveToFile writes the plain-text transcript rendering, which is the
// format offered for download (interview_transcript.txt).
func (c *ManagerImpl) SaveToFile(s string) error {
	return os.WriteFile(s, []byte(c.messages.Render()), 0644)
}
