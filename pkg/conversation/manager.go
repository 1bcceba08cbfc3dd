package conversation

// Package conversation provides the message log for an interview session.
//
// Unlike a general chat client there is no branching or editing here: the
// transcript is a linear, append-only log. Exactly one system message
// exists once the interview has started, and it is always first.

// Manager defines the interface for transcript operations.
type Manager interface {
	GetConversation() Conversation
	AppendMessages(msgs ...*Message)
	UserMessageCount() int
	SaveToFile(filename string) error
}
