package session

// Turn budget for one interview session. The interview accepts five user
// messages; only the first four get a generated reply. The fifth is
// stored so the candidate has a final say before scoring, but is never
// answered.
const (
	MaxUserTurns    = 5
	MaxRepliedTurns = 4
)

// AcceptsInput reports whether another user message may be accepted.
func AcceptsInput(userTurnCount int) bool {
	return userTurnCount < MaxUserTurns
}

// GeneratesReply reports whether the turn at this count gets a generated
// reply. Decoupled from AcceptsInput on purpose.
func GeneratesReply(userTurnCount int) bool {
	return userTurnCount < MaxRepliedTurns
}
