package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/muesli/reflow/wordwrap"
	"github.com/pkg/errors"

	"github.com/go-go-golems/mangiafuoco/pkg/conversation"
	"github.com/go-go-golems/mangiafuoco/pkg/events"
	"github.com/go-go-golems/mangiafuoco/pkg/interview"
	"github.com/go-go-golems/mangiafuoco/pkg/session"
)

// MaxAnswerChars caps a single chat answer at the input boundary.
const MaxAnswerChars = 1000

const (
	fieldName = iota
	fieldExperience
	fieldSkills
	fieldLevel
	fieldPosition
	fieldCompany
	numSetupFields
)

type turnDoneMsg struct {
	result *session.TurnResult
	err    error
}

type feedbackMsg struct {
	text string
	err  error
}

type Model struct {
	controller *session.Controller
	catalog    *interview.Catalog

	keyMap KeyMap
	style  *Style

	// setup form
	inputs      []textinput.Model
	focusIndex  int
	levelIdx    int
	positionIdx int
	companyIdx  int

	// interview
	answer    textinput.Model
	streaming bool
	streamBuf string

	// feedback
	fetchingFeedback bool
	feedback         string

	notice    string
	errNotice string

	width  int
	height int
}

func NewModel(controller *session.Controller, catalog *interview.Catalog) Model {
	ret := Model{
		controller: controller,
		catalog:    catalog,
		keyMap:     DefaultKeyMap,
		style:      DefaultStyles(),
		width:      80,
	}

	ret.initForm()

	return ret
}

func (m *Model) initForm() {
	name := textinput.New()
	name.Placeholder = "Enter your name"
	name.CharLimit = interview.MaxNameLength
	name.Focus()

	experience := textinput.New()
	experience.Placeholder = "Describe your experience"
	experience.CharLimit = interview.MaxFreeTextLength

	skills := textinput.New()
	skills.Placeholder = "List your skills"
	skills.CharLimit = interview.MaxFreeTextLength

	m.inputs = []textinput.Model{name, experience, skills}
	m.focusIndex = 0
	m.levelIdx = 0
	m.positionIdx = 0
	m.companyIdx = 0

	answer := textinput.New()
	answer.Placeholder = "Your response"
	answer.CharLimit = MaxAnswerChars
	m.answer = answer

	m.streaming = false
	m.streamBuf = ""
	m.fetchingFeedback = false
	m.feedback = ""
	m.notice = ""
	m.errNotice = ""
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keyMap.Quit) {
			return m, tea.Quit
		}

		// stop triggers work in any phase; the controller ignores them
		// outside the interview. Esc is the out-of-band convenience path,
		// the explicit stop key is the reliable one.
		if key.Matches(msg, m.keyMap.Stop) {
			m.controller.RequestStop("stop-key")
			return m, nil
		}
		if key.Matches(msg, m.keyMap.Esc) {
			m.controller.RequestStop("esc")
			return m, nil
		}

		switch m.controller.Phase() {
		case session.PhaseSetup:
			return m.updateSetup(msg)
		case session.PhaseInterviewing:
			return m.updateInterview(msg)
		case session.PhaseStopped:
			return m.updateStopped(msg)
		case session.PhaseCompleted:
			return m.updateCompleted(msg)
		case session.PhaseFeedbackShown:
			return m.updateFeedbackShown(msg)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case StreamEventMsg:
		return m.updateStreamEvent(msg)

	case turnDoneMsg:
		m.streaming = false
		m.streamBuf = ""
		if msg.err != nil && !errors.Is(msg.err, session.ErrInputRejected) {
			m.errNotice = fmt.Sprintf("Assistant response failed: %v", msg.err)
		}
		if msg.result != nil {
			if msg.result.StreamErr != nil {
				m.errNotice = fmt.Sprintf("Assistant streaming failed: %v", msg.result.StreamErr)
			}
			if msg.result.Aborted {
				m.notice = "Interview stopped by user."
			}
		}
		return m, nil

	case feedbackMsg:
		m.fetchingFeedback = false
		if msg.err != nil {
			m.errNotice = fmt.Sprintf("Feedback generation failed: %v", msg.err)
			return m, nil
		}
		m.feedback = msg.text
		return m, nil
	}

	return m, nil
}

func (m Model) updateStreamEvent(msg StreamEventMsg) (tea.Model, tea.Cmd) {
	switch e := msg.Event.(type) {
	case *events.EventPartialCompletionStart:
		m.streamBuf = ""
	case *events.EventPartialCompletion:
		m.streamBuf = e.Completion
	}
	return m, nil
}

func (m Model) updateSetup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.NextField):
		m.setFocus((m.focusIndex + 1) % numSetupFields)
		return m, nil

	case key.Matches(msg, m.keyMap.PrevField):
		m.setFocus((m.focusIndex + numSetupFields - 1) % numSetupFields)
		return m, nil

	case key.Matches(msg, m.keyMap.CycleLeft):
		m.cycleChoice(-1)
		return m, nil

	case key.Matches(msg, m.keyMap.CycleRight):
		m.cycleChoice(1)
		return m, nil

	case key.Matches(msg, m.keyMap.Submit):
		if m.focusIndex < fieldCompany {
			m.setFocus(m.focusIndex + 1)
			return m, nil
		}
		return m.submitSetup()
	}

	if m.focusIndex < len(m.inputs) {
		var cmd tea.Cmd
		m.inputs[m.focusIndex], cmd = m.inputs[m.focusIndex].Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *Model) setFocus(index int) {
	m.focusIndex = index
	for i := range m.inputs {
		if i == m.focusIndex {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

func (m *Model) cycleChoice(delta int) {
	cycle := func(idx int, n int) int {
		return (idx + delta + n) % n
	}

	switch m.focusIndex {
	case fieldLevel:
		m.levelIdx = cycle(m.levelIdx, len(m.catalog.Levels))
	case fieldPosition:
		m.positionIdx = cycle(m.positionIdx, len(m.catalog.Positions))
	case fieldCompany:
		m.companyIdx = cycle(m.companyIdx, len(m.catalog.Companies))
	}
}

func (m Model) updateInterview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.streaming {
		return m, nil
	}

	if key.Matches(msg, m.keyMap.Submit) {
		text := strings.TrimSpace(m.answer.Value())
		if text == "" {
			return m, nil
		}

		m.answer.SetValue("")
		m.streaming = true
		m.streamBuf = ""
		m.notice = ""
		m.errNotice = ""

		controller := m.controller
		return m, func() tea.Msg {
			result, err := controller.SubmitUserMessage(context.Background(), text)
			return turnDoneMsg{result: result, err: err}
		}
	}

	var cmd tea.Cmd
	m.answer, cmd = m.answer.Update(msg)
	return m, cmd
}

func (m Model) updateStopped(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keyMap.Restart) {
		return m.restart()
	}
	return m, nil
}

func (m Model) updateCompleted(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.fetchingFeedback {
		return m, nil
	}

	if key.Matches(msg, m.keyMap.GetFeedback) {
		m.fetchingFeedback = true
		m.errNotice = ""

		controller := m.controller
		return m, func() tea.Msg {
			text, err := controller.RequestFeedback(context.Background())
			return feedbackMsg{text: text, err: err}
		}
	}

	return m, nil
}

func (m Model) updateFeedbackShown(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Download):
		if err := m.controller.SaveTranscript(session.TranscriptFilename); err != nil {
			m.errNotice = fmt.Sprintf("Download failed: %v", err)
		} else {
			m.notice = fmt.Sprintf("Transcript saved to %s", session.TranscriptFilename)
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Restart):
		return m.restart()
	}

	return m, nil
}

func (m Model) restart() (tea.Model, tea.Cmd) {
	m.controller.Restart()
	m.initForm()
	return m, textinput.Blink
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.style.Title.Render("Mangiafuoco"))
	b.WriteString("\n")
	b.WriteString(m.style.Caption.Render("A mock interview simulator with stop + feedback flow."))
	b.WriteString("\n\n")

	switch m.controller.Phase() {
	case session.PhaseSetup:
		b.WriteString(m.viewSetup())
	case session.PhaseInterviewing:
		b.WriteString(m.viewInterview())
	case session.PhaseStopped:
		b.WriteString(m.viewStopped())
	case session.PhaseCompleted:
		b.WriteString(m.viewCompleted())
	case session.PhaseFeedbackShown:
		b.WriteString(m.viewFeedback())
	}

	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(m.style.Notice.Render(m.notice))
		b.WriteString("\n")
	}
	if m.errNotice != "" {
		b.WriteString("\n")
		b.WriteString(m.style.Error.Render(m.errNotice))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) viewSetup() string {
	var b strings.Builder

	b.WriteString(m.style.Label.Render("Personal Information"))
	b.WriteString("\n\n")

	labels := []string{"Name", "Experience", "Skills"}
	for i, input := range m.inputs {
		b.WriteString(labels[i])
		b.WriteString("\n")
		b.WriteString(input.View())
		b.WriteString("\n\n")
	}

	b.WriteString(m.style.Label.Render("Company and Position"))
	b.WriteString("\n\n")

	b.WriteString(m.viewChoice("Level", m.catalog.Levels[m.levelIdx], m.focusIndex == fieldLevel))
	b.WriteString(m.viewChoice("Position", m.catalog.Positions[m.positionIdx], m.focusIndex == fieldPosition))
	b.WriteString(m.viewChoice("Company", m.catalog.Companies[m.companyIdx], m.focusIndex == fieldCompany))

	b.WriteString("\n")
	b.WriteString(m.style.Help.Render("tab: next field • ←/→: change selection • enter: start interview • ctrl+c: quit"))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewChoice(label string, value string, focused bool) string {
	marker := "  "
	if focused {
		marker = "> "
	}
	return fmt.Sprintf("%s%s: ◀ %s ▶\n", marker, label, value)
}

func (m Model) submitSetup() (tea.Model, tea.Cmd) {
	profile := interview.Profile{
		Name:       strings.TrimSpace(m.inputs[fieldName].Value()),
		Experience: strings.TrimSpace(m.inputs[fieldExperience].Value()),
		Skills:     strings.TrimSpace(m.inputs[fieldSkills].Value()),
		Level:      m.catalog.Levels[m.levelIdx],
		Position:   m.catalog.Positions[m.positionIdx],
		Company:    m.catalog.Companies[m.companyIdx],
	}

	if err := profile.Validate(m.catalog); err != nil {
		m.errNotice = err.Error()
		return m, nil
	}

	if err := m.controller.CompleteSetup(profile); err != nil {
		m.errNotice = err.Error()
		return m, nil
	}

	m.errNotice = ""
	m.notice = "Start by introducing yourself."
	m.answer.Focus()

	return m, textinput.Blink
}

func (m Model) viewInterview() string {
	var b strings.Builder

	b.WriteString(m.viewChat())

	if m.streaming {
		text := m.streamBuf
		if text == "" {
			text = "..."
		}
		b.WriteString(m.style.Streaming.Render(m.wrap(text)))
		b.WriteString("\n")
	} else {
		b.WriteString(m.answer.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.style.Help.Render(fmt.Sprintf(
		"turn %d/%d • enter: send • ctrl+s/esc: stop • ctrl+c: quit",
		m.controller.UserTurnCount(), session.MaxUserTurns,
	)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewChat() string {
	var b strings.Builder

	for _, msg := range m.controller.Conversation().WithoutSystem() {
		text := m.wrap(msg.Text)
		if msg.Role == conversation.RoleUser {
			b.WriteString(m.style.UserMessage.Render(text))
		} else {
			b.WriteString(m.style.AssistantMessage.Render(text))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) viewStopped() string {
	var b strings.Builder

	b.WriteString(m.style.Notice.Render("Interview was stopped before it began. No feedback available."))
	b.WriteString("\n\n")
	b.WriteString(m.style.Help.Render("ctrl+r: restart interview • ctrl+c: quit"))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewCompleted() string {
	var b strings.Builder

	b.WriteString(m.viewChat())
	b.WriteString("\n")

	if m.fetchingFeedback {
		b.WriteString(m.style.Notice.Render("Fetching feedback..."))
	} else {
		b.WriteString(m.style.Notice.Render("Interview complete."))
		b.WriteString("\n\n")
		b.WriteString(m.style.Help.Render("enter: get feedback • ctrl+c: quit"))
	}
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewFeedback() string {
	var b strings.Builder

	b.WriteString(m.style.Label.Render("Feedback"))
	b.WriteString("\n\n")
	b.WriteString(m.renderMarkdown(m.feedback))
	b.WriteString("\n")
	b.WriteString(m.style.Help.Render("ctrl+d: download transcript • ctrl+r: restart interview • ctrl+c: quit"))
	b.WriteString("\n")

	return b.String()
}

func (m Model) renderMarkdown(text string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(m.contentWidth()),
	)
	if err != nil {
		return m.wrap(text)
	}

	out, err := renderer.Render(text)
	if err != nil {
		return m.wrap(text)
	}

	return out
}

func (m Model) contentWidth() int {
	w := m.width - 4
	if w < 20 {
		w = 20
	}
	return w
}

func (m Model) wrap(text string) string {
	return wordwrap.String(text, m.contentWidth())
}
