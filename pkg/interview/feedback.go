package interview

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/mangiafuoco/pkg/conversation"
	"github.com/go-go-golems/mangiafuoco/pkg/inference"
)

// FeedbackRequestor turns a finished transcript into a score report by
// issuing exactly one synchronous call to the scoring service.
//
// Eligibility (at least one user message, not stopped early) is enforced
// by the session controller before this is ever called.
type FeedbackRequestor struct {
	scorer inference.Scorer
}

func NewFeedbackRequestor(scorer inference.Scorer) *FeedbackRequestor {
	return &FeedbackRequestor{
		scorer: scorer,
	}
}

// RequestFeedback renders the transcript as "role: content" lines and
// asks the scorer for a score line plus feedback paragraph. The returned
// text is not parsed or validated. A failure leaves no trace on the
// session; the caller may retry.
func (f *FeedbackRequestor) RequestFeedback(ctx context.Context, messages conversation.Conversation) (string, error) {
	transcript := messages.Render()

	log.Debug().
		Int("message_count", len(messages)).
		Int("transcript_length", len(transcript)).
		Msg("requesting feedback")

	text, err := f.scorer.Score(ctx, FeedbackSystemPrompt, FeedbackUserPrompt(transcript))
	if err != nil {
		return "", errors.Wrap(err, "scoring service call failed")
	}

	return text, nil
}
