package session

import (
	"github.com/go-go-golems/mangiafuoco/pkg/conversation"
	"github.com/go-go-golems/mangiafuoco/pkg/interview"
)

type Phase string

const (
	PhaseSetup         Phase = "setup"
	PhaseInterviewing  Phase = "interviewing"
	PhaseStopped       Phase = "stopped"
	PhaseCompleted     Phase = "completed"
	PhaseFeedbackShown Phase = "feedback-shown"
)

// TranscriptFilename is the fixed name the transcript download uses.
const TranscriptFilename = "interview_transcript.txt"

// State is the single mutable aggregate for one interview run. It is
// owned exclusively by the Controller and replaced wholesale on restart;
// there is no partial reset.
type State struct {
	Phase         Phase
	UserTurnCount int
	Profile       interview.Profile
	Manager       *conversation.ManagerImpl
	Stop          *StopSignal
}

func newState() *State {
	return &State{
		Phase:   PhaseSetup,
		Manager: conversation.NewManager(),
		Stop:    NewStopSignal(),
	}
}
