package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/mangiafuoco/pkg/conversation"
	"github.com/go-go-golems/mangiafuoco/pkg/events"
	"github.com/go-go-golems/mangiafuoco/pkg/inference"
	"github.com/go-go-golems/mangiafuoco/pkg/interview"
)

var (
	// ErrInputRejected means a turn was submitted outside the budget or
	// after a stop request. No state was mutated; callers drop the input.
	ErrInputRejected = errors.New("input rejected")

	// ErrFeedbackUnavailable means feedback was requested after an early
	// stop or with zero user turns. The scoring service is never called.
	ErrFeedbackUnavailable = errors.New("feedback unavailable for this session")
)

// Controller is the interview session state machine. It owns the session
// State and is the only component that mutates it.
//
// All methods are safe to call from the UI goroutine while a turn is
// streaming; RequestStop in particular is expected to race an in-flight
// SubmitUserMessage.
type Controller struct {
	mu    sync.Mutex
	state *State

	engine    inference.Engine
	feedback  *interview.FeedbackRequestor
	assembler *inference.Assembler
	model     string
}

type ControllerOption func(*Controller)

// WithEventSink routes streaming events (start/partial/final/interrupt)
// to the given sink, typically a watermill publisher the UI subscribes to.
func WithEventSink(sink events.EventSink) ControllerOption {
	return func(c *Controller) {
		c.assembler = inference.NewAssembler(inference.WithSink(sink))
	}
}

// WithModelName tags event metadata with the chat model name.
func WithModelName(model string) ControllerOption {
	return func(c *Controller) {
		c.model = model
	}
}

func NewController(engine inference.Engine, feedback *interview.FeedbackRequestor, options ...ControllerOption) *Controller {
	ret := &Controller{
		state:     newState(),
		engine:    engine,
		feedback:  feedback,
		assembler: inference.NewAssembler(),
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Phase
}

func (c *Controller) UserTurnCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.UserTurnCount
}

func (c *Controller) Profile() interview.Profile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Profile
}

func (c *Controller) StopRequested() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Stop.Requested()
}

func (c *Controller) StoppedEarly() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Stop.StoppedEarly()
}

// Conversation returns a snapshot of the transcript.
func (c *Controller) Conversation() conversation.Conversation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Manager.GetConversation()
}

// CompleteSetup freezes the profile, seeds the transcript with the system
// message, and moves the session into the interview phase.
func (c *Controller) CompleteSetup(profile interview.Profile) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Phase != PhaseSetup {
		return errors.Errorf("cannot complete setup in phase %s", c.state.Phase)
	}

	systemMsg, err := conversation.NewMessage(conversation.RoleSystem, interview.SystemPrompt(profile))
	if err != nil {
		return err
	}

	c.state.Profile = profile
	c.state.Manager.AppendMessages(systemMsg)
	c.state.Phase = PhaseInterviewing

	log.Info().
		Str("position", profile.Position).
		Str("company", profile.Company).
		Str("level", profile.Level).
		Msg("setup complete, interview started")

	return nil
}

// RequestStop is called by any trigger source. Idempotent: the first call
// decides whether the stop counts as early (no user message accepted
// yet), every later call is a no-op.
func (c *Controller) RequestStop(source string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Phase != PhaseInterviewing {
		log.Debug().Str("source", source).Str("phase", string(c.state.Phase)).Msg("ignoring stop request")
		return
	}

	early := c.state.Manager.UserMessageCount() == 0
	if c.state.Stop.Request(early) {
		log.Info().Str("source", source).Bool("early", early).Msg("stop requested")
	}

	c.evaluatePhaseLocked()
}

// TurnResult reports what happened to one accepted user turn.
type TurnResult struct {
	// Reply is the appended assistant message, nil if no reply was
	// generated (5th turn, or the completion call failed outright).
	Reply *conversation.Message
	// Aborted is true when a stop request cut the stream short. The
	// partial text is still in Reply.
	Aborted bool
	// StreamErr is the non-fatal completion failure to surface as a
	// notice. The turn still counts.
	StreamErr error
}

// SubmitUserMessage runs one interview turn: append the user message,
// stream a reply if the budget allows, count the turn, re-evaluate the
// phase. The turn is spent even if the reply was aborted or failed.
func (c *Controller) SubmitUserMessage(ctx context.Context, text string) (*TurnResult, error) {
	c.mu.Lock()

	if c.state.Phase != PhaseInterviewing ||
		c.state.Stop.Requested() ||
		!AcceptsInput(c.state.UserTurnCount) {
		c.mu.Unlock()
		return nil, ErrInputRejected
	}

	userMsg, err := conversation.NewMessage(conversation.RoleUser, text)
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	c.state.Manager.AppendMessages(userMsg)

	generates := GeneratesReply(c.state.UserTurnCount)
	messages := c.state.Manager.GetConversation()
	stop := c.state.Stop
	c.mu.Unlock()

	result := &TurnResult{}
	if generates {
		c.generateReply(ctx, messages, stop, result)
	}

	c.mu.Lock()
	c.state.UserTurnCount++
	c.evaluatePhaseLocked()
	c.mu.Unlock()

	return result, nil
}

func (c *Controller) generateReply(
	ctx context.Context,
	messages conversation.Conversation,
	stop *StopSignal,
	result *TurnResult,
) {
	// a stop request cancels the request context so a blocked stream read
	// unblocks; the assembler still polls the flag between fragments
	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-stop.Done():
			cancel()
		case <-streamCtx.Done():
		}
	}()

	stream, err := c.engine.StreamChat(streamCtx, messages)
	if err != nil {
		if stop.Requested() {
			result.Aborted = true
			return
		}
		log.Warn().Err(err).Msg("completion call failed")
		result.StreamErr = err
		return
	}

	metadata := events.EventMetadata{
		ID:    uuid.New(),
		Model: c.model,
	}

	text, aborted, streamErr := c.assembler.Assemble(metadata, stream, stop.Requested)
	result.Aborted = aborted
	result.StreamErr = streamErr
	if streamErr != nil {
		log.Warn().Err(streamErr).Int("partial_length", len(text)).Msg("stream failed mid-completion")
	}

	// whatever was accumulated is kept, even the empty string
	assistantMsg, err := conversation.NewMessage(conversation.RoleAssistant, text)
	if err != nil {
		result.StreamErr = err
		return
	}

	c.mu.Lock()
	c.state.Manager.AppendMessages(assistantMsg)
	c.mu.Unlock()

	result.Reply = assistantMsg
}

// evaluatePhaseLocked transitions out of Interviewing once the turn
// budget is exhausted or a stop was requested. Arbitration between
// Stopped and Completed happens exactly once, here.
func (c *Controller) evaluatePhaseLocked() {
	if c.state.Phase != PhaseInterviewing {
		return
	}

	if c.state.UserTurnCount >= MaxUserTurns || c.state.Stop.Requested() {
		if c.state.Stop.StoppedEarly() {
			c.state.Phase = PhaseStopped
		} else {
			c.state.Phase = PhaseCompleted
		}

		log.Info().
			Str("phase", string(c.state.Phase)).
			Int("user_turns", c.state.UserTurnCount).
			Msg("interview over")
	}
}

// RequestFeedback asks the scoring service for the score report. Only
// legal in the Completed phase; refused without a service call when the
// session was stopped early or has no user turns. On failure the phase
// does not advance and the request may be retried.
func (c *Controller) RequestFeedback(ctx context.Context) (string, error) {
	c.mu.Lock()

	if c.state.Phase != PhaseCompleted {
		c.mu.Unlock()
		return "", ErrFeedbackUnavailable
	}
	if c.state.Stop.StoppedEarly() || c.state.UserTurnCount == 0 {
		c.mu.Unlock()
		return "", ErrFeedbackUnavailable
	}

	messages := c.state.Manager.GetConversation()
	c.mu.Unlock()

	text, err := c.feedback.RequestFeedback(ctx, messages)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.state.Phase = PhaseFeedbackShown
	c.mu.Unlock()

	return text, nil
}

// TranscriptExport returns the transcript as "role: content" lines, the
// format offered for download under TranscriptFilename.
func (c *Controller) TranscriptExport() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Manager.GetConversation().Render()
}

// SaveTranscript writes the export to the given path.
func (c *Controller) SaveTranscript(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Manager.SaveToFile(path)
}

// Restart discards the whole session state and returns to Setup.
func (c *Controller) Restart() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = newState()
	log.Info().Msg("session restarted")
}
