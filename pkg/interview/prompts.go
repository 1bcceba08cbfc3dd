package interview

import "fmt"

// SystemPrompt renders the interviewer instruction that seeds the
// transcript as its single system message.
func SystemPrompt(p Profile) string {
	return fmt.Sprintf(
		"You are an HR executive that interviews an interviewee called %s "+
			"with experience %s and skills %s. "+
			"You should interview them for the position %s %s at the company %s.",
		p.Name, p.Experience, p.Skills, p.Level, p.Position, p.Company,
	)
}

// FeedbackSystemPrompt fixes the score-then-feedback output format. The
// scorer's answer is surfaced verbatim, so the format lives entirely in
// the instruction.
const FeedbackSystemPrompt = "You are a helpful tool that provides feedback on an interviewee performance. " +
	"Before the Feedback give a score of 1 to 10.\n" +
	"Follow this format:\n" +
	"Overall Score: //Your score\n" +
	"Feedback: //Here you put your feedback\n" +
	"Give only the feedback do not ask any additional questions."

// FeedbackUserPrompt wraps the rendered transcript for the scoring call.
func FeedbackUserPrompt(transcript string) string {
	return fmt.Sprintf(
		"This is the interview you need to evaluate. "+
			"Keep in mind that you are only a tool. "+
			"And you shouldn't engage in any conversation: %s",
		transcript,
	)
}
