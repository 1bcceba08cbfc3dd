package inference

import (
	"context"

	"github.com/go-go-golems/mangiafuoco/pkg/conversation"
)

// StreamChunk is one fragment received from the completion service.
// Role-only control frames carry an empty Delta.
type StreamChunk struct {
	Role  string
	Delta string
}

// ChatStream is a finite, pull-based fragment source. It is not
// restartable: once consumed it cannot be replayed. Recv returns io.EOF
// when the source signals completion, and may return other errors
// mid-sequence.
type ChatStream interface {
	Recv() (StreamChunk, error)
	Close() error
}

// Engine opens a streamed chat completion over the full ordered
// conversation (system message plus all prior turns).
type Engine interface {
	StreamChat(ctx context.Context, messages conversation.Conversation) (ChatStream, error)
}

// Scorer is the synchronous scoring service used for post-interview
// feedback. A single call, no retries; the returned text is surfaced
// verbatim.
type Scorer interface {
	Score(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}
