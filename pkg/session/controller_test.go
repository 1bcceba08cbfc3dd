package session

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-go-golems/mangiafuoco/pkg/conversation"
	"github.com/go-go-golems/mangiafuoco/pkg/inference"
	"github.com/go-go-golems/mangiafuoco/pkg/interview"
)

type scriptedStream struct {
	chunks   []inference.StreamChunk
	finalErr error
	idx      int
	// called before chunk i is returned, used to inject stop requests
	beforeChunk func(i int)
}

func newScriptedStream(fragments ...string) *scriptedStream {
	chunks := make([]inference.StreamChunk, 0, len(fragments))
	for _, f := range fragments {
		chunks = append(chunks, inference.StreamChunk{Delta: f})
	}
	return &scriptedStream{chunks: chunks}
}

func (s *scriptedStream) Recv() (inference.StreamChunk, error) {
	if s.idx >= len(s.chunks) {
		if s.finalErr != nil {
			return inference.StreamChunk{}, s.finalErr
		}
		return inference.StreamChunk{}, io.EOF
	}

	if s.beforeChunk != nil {
		s.beforeChunk(s.idx)
	}

	chunk := s.chunks[s.idx]
	s.idx++
	return chunk, nil
}

func (s *scriptedStream) Close() error {
	return nil
}

type fakeEngine struct {
	calls        int
	lastMessages conversation.Conversation
	// optional per-call stream factory; defaults to a canned reply
	streamFn func(call int) (inference.ChatStream, error)
}

func (e *fakeEngine) StreamChat(_ context.Context, messages conversation.Conversation) (inference.ChatStream, error) {
	e.calls++
	e.lastMessages = messages
	if e.streamFn != nil {
		return e.streamFn(e.calls)
	}
	return newScriptedStream("Thanks", " for sharing."), nil
}

type fakeScorer struct {
	calls int
	user  string
	ret   string
	err   error
}

func (s *fakeScorer) Score(_ context.Context, _ string, userPrompt string) (string, error) {
	s.calls++
	s.user = userPrompt
	if s.err != nil {
		return "", s.err
	}
	return s.ret, nil
}

func testProfile() interview.Profile {
	return interview.Profile{
		Name:       "Ada",
		Experience: "5 years of data pipelines",
		Skills:     "Python, SQL, Go",
		Level:      "Mid-level",
		Position:   "Data Engineer",
		Company:    "Spotify",
	}
}

func newTestController(engine *fakeEngine, scorer *fakeScorer) *Controller {
	return NewController(engine, interview.NewFeedbackRequestor(scorer))
}

func startedController(t *testing.T, engine *fakeEngine, scorer *fakeScorer) *Controller {
	t.Helper()
	c := newTestController(engine, scorer)
	require.NoError(t, c.CompleteSetup(testProfile()))
	return c
}

func TestCompleteSetupCreatesSystemMessage(t *testing.T) {
	c := startedController(t, &fakeEngine{}, &fakeScorer{})

	assert.Equal(t, PhaseInterviewing, c.Phase())

	messages := c.Conversation()
	require.Len(t, messages, 1)
	assert.Equal(t, conversation.RoleSystem, messages[0].Role)
	assert.Contains(t, messages[0].Text, "Ada")
	assert.Contains(t, messages[0].Text, "Data Engineer")
}

func TestCompleteSetupTwiceFails(t *testing.T) {
	c := startedController(t, &fakeEngine{}, &fakeScorer{})
	assert.Error(t, c.CompleteSetup(testProfile()))
}

func TestSubmitBeforeSetupIsRejected(t *testing.T) {
	c := newTestController(&fakeEngine{}, &fakeScorer{})

	_, err := c.SubmitUserMessage(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrInputRejected)
}

func TestFiveTurnsCompleteTheInterview(t *testing.T) {
	engine := &fakeEngine{}
	c := startedController(t, engine, &fakeScorer{})

	for i := 0; i < 5; i++ {
		result, err := c.SubmitUserMessage(context.Background(), "answer")
		require.NoError(t, err)

		if i < 4 {
			require.NotNil(t, result.Reply)
			assert.Equal(t, "Thanks for sharing.", result.Reply.Text)
		} else {
			// the 5th turn never triggers generation
			assert.Nil(t, result.Reply)
		}
	}

	assert.Equal(t, PhaseCompleted, c.Phase())
	assert.Equal(t, 5, c.UserTurnCount())
	assert.Equal(t, 4, engine.calls)

	// budget exhausted
	_, err := c.SubmitUserMessage(context.Background(), "one more")
	assert.ErrorIs(t, err, ErrInputRejected)
}

func TestTurnSendsFullOrderedConversation(t *testing.T) {
	engine := &fakeEngine{}
	c := startedController(t, engine, &fakeScorer{})

	_, err := c.SubmitUserMessage(context.Background(), "hi, I'm Ada")
	require.NoError(t, err)

	require.Len(t, engine.lastMessages, 2)
	assert.Equal(t, conversation.RoleSystem, engine.lastMessages[0].Role)
	assert.Equal(t, conversation.RoleUser, engine.lastMessages[1].Role)

	_, err = c.SubmitUserMessage(context.Background(), "second answer")
	require.NoError(t, err)

	// system + user + assistant + user
	require.Len(t, engine.lastMessages, 4)
	assert.Equal(t, conversation.RoleAssistant, engine.lastMessages[2].Role)
}

func TestStopBeforeAnyMessageIsEarly(t *testing.T) {
	scorer := &fakeScorer{ret: "score"}
	c := startedController(t, &fakeEngine{}, scorer)

	c.RequestStop("stop-key")

	assert.Equal(t, PhaseStopped, c.Phase())
	assert.True(t, c.StoppedEarly())

	_, err := c.SubmitUserMessage(context.Background(), "too late")
	assert.ErrorIs(t, err, ErrInputRejected)

	_, err = c.RequestFeedback(context.Background())
	assert.ErrorIs(t, err, ErrFeedbackUnavailable)
	assert.Equal(t, 0, scorer.calls)
}

func TestStopAfterTwoTurnsCompletes(t *testing.T) {
	c := startedController(t, &fakeEngine{}, &fakeScorer{ret: "score"})

	for i := 0; i < 2; i++ {
		_, err := c.SubmitUserMessage(context.Background(), "answer")
		require.NoError(t, err)
	}
	assert.Equal(t, PhaseInterviewing, c.Phase())

	c.RequestStop("stop-key")

	assert.Equal(t, PhaseCompleted, c.Phase())
	assert.False(t, c.StoppedEarly())

	_, err := c.RequestFeedback(context.Background())
	assert.NoError(t, err)
}

func TestStopIsIdempotentAcrossSources(t *testing.T) {
	c := startedController(t, &fakeEngine{}, &fakeScorer{})

	c.RequestStop("stop-key")
	c.RequestStop("esc")
	c.RequestStop("esc")

	assert.Equal(t, PhaseStopped, c.Phase())
	assert.True(t, c.StoppedEarly())
}

func TestStopMidStreamKeepsPartialReply(t *testing.T) {
	var c *Controller

	engine := &fakeEngine{
		streamFn: func(int) (inference.ChatStream, error) {
			stream := newScriptedStream("Hel", "lo ", "world")
			stream.beforeChunk = func(i int) {
				if i == 1 {
					c.RequestStop("stop-key")
				}
			}
			return stream, nil
		},
	}
	scorer := &fakeScorer{ret: "score"}
	c = startedController(t, engine, scorer)

	result, err := c.SubmitUserMessage(context.Background(), "hi")
	require.NoError(t, err)

	assert.True(t, result.Aborted)
	require.NotNil(t, result.Reply)
	assert.Equal(t, "Hello ", result.Reply.Text)

	// turn 1 was in flight, so this is not an early stop
	assert.False(t, c.StoppedEarly())
	assert.Equal(t, 1, c.UserTurnCount())
	assert.Equal(t, PhaseCompleted, c.Phase())

	// partial assistant turn persisted
	messages := c.Conversation()
	require.Len(t, messages, 3)
	assert.Equal(t, "Hello ", messages[2].Text)

	// feedback is reachable after a mid-stream stop
	_, err = c.RequestFeedback(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, scorer.calls)
}

func TestStreamFailureKeepsPartialAndSpendsTurn(t *testing.T) {
	engine := &fakeEngine{
		streamFn: func(int) (inference.ChatStream, error) {
			stream := newScriptedStream("Hel")
			stream.finalErr = errors.New("connection reset")
			return stream, nil
		},
	}
	c := startedController(t, engine, &fakeScorer{})

	result, err := c.SubmitUserMessage(context.Background(), "hi")
	require.NoError(t, err)

	assert.False(t, result.Aborted)
	require.Error(t, result.StreamErr)
	require.NotNil(t, result.Reply)
	assert.Equal(t, "Hel", result.Reply.Text)

	// non-fatal: the session continues
	assert.Equal(t, 1, c.UserTurnCount())
	assert.Equal(t, PhaseInterviewing, c.Phase())
}

func TestCompletionCallFailureSpendsTurnWithoutReply(t *testing.T) {
	engine := &fakeEngine{
		streamFn: func(int) (inference.ChatStream, error) {
			return nil, errors.New("bad gateway")
		},
	}
	c := startedController(t, engine, &fakeScorer{})

	result, err := c.SubmitUserMessage(context.Background(), "hi")
	require.NoError(t, err)

	assert.Nil(t, result.Reply)
	require.Error(t, result.StreamErr)
	assert.Equal(t, 1, c.UserTurnCount())

	messages := c.Conversation()
	require.Len(t, messages, 2)
	assert.Equal(t, conversation.RoleUser, messages[1].Role)
}

func TestFeedbackFailureLeavesPhaseRetryable(t *testing.T) {
	scorer := &fakeScorer{err: errors.New("rate limited")}
	c := startedController(t, &fakeEngine{}, scorer)

	_, err := c.SubmitUserMessage(context.Background(), "hi")
	require.NoError(t, err)
	c.RequestStop("stop-key")
	require.Equal(t, PhaseCompleted, c.Phase())

	_, err = c.RequestFeedback(context.Background())
	require.Error(t, err)
	assert.Equal(t, PhaseCompleted, c.Phase())

	// retry after the service recovers
	scorer.err = nil
	scorer.ret = "Overall Score: 6"
	text, err := c.RequestFeedback(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Overall Score: 6", text)
	assert.Equal(t, PhaseFeedbackShown, c.Phase())
}

func TestFeedbackScenario(t *testing.T) {
	scorer := &fakeScorer{ret: "Overall Score: 8\nFeedback: great"}
	c := startedController(t, &fakeEngine{}, scorer)

	result, err := c.SubmitUserMessage(context.Background(), "hi, I'm Ada")
	require.NoError(t, err)
	require.NotNil(t, result.Reply)
	assert.Equal(t, 1, c.UserTurnCount())

	c.RequestStop("stop-key")
	require.Equal(t, PhaseCompleted, c.Phase())

	text, err := c.RequestFeedback(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Overall Score: 8\nFeedback: great", text)

	// exactly one scoring call, carrying all three transcript lines
	assert.Equal(t, 1, scorer.calls)
	assert.Contains(t, scorer.user, "system: ")
	assert.Contains(t, scorer.user, "user: hi, I'm Ada")
	assert.Contains(t, scorer.user, "assistant: Thanks for sharing.")
}

func TestTranscriptExportFormat(t *testing.T) {
	c := startedController(t, &fakeEngine{}, &fakeScorer{})

	_, err := c.SubmitUserMessage(context.Background(), "hi")
	require.NoError(t, err)

	export := c.TranscriptExport()
	lines := strings.Split(export, "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "system: "))
	assert.True(t, strings.HasPrefix(lines[1], "user: "))
	assert.True(t, strings.HasPrefix(lines[2], "assistant: "))
}

func TestRestartResetsEverything(t *testing.T) {
	c := startedController(t, &fakeEngine{}, &fakeScorer{})

	_, err := c.SubmitUserMessage(context.Background(), "hi")
	require.NoError(t, err)
	c.RequestStop("stop-key")

	c.Restart()

	assert.Equal(t, PhaseSetup, c.Phase())
	assert.Equal(t, 0, c.UserTurnCount())
	assert.False(t, c.StopRequested())
	assert.Empty(t, c.Conversation())
}

func TestStopIgnoredOutsideInterview(t *testing.T) {
	c := newTestController(&fakeEngine{}, &fakeScorer{})

	c.RequestStop("stop-key")
	assert.Equal(t, PhaseSetup, c.Phase())
	assert.False(t, c.StopRequested())

	require.NoError(t, c.CompleteSetup(testProfile()))
	assert.Equal(t, PhaseInterviewing, c.Phase())
}
