package ui

import "github.com/charmbracelet/lipgloss"

type Style struct {
	Title            lipgloss.Style
	Caption          lipgloss.Style
	Label            lipgloss.Style
	UserMessage      lipgloss.Style
	AssistantMessage lipgloss.Style
	Streaming        lipgloss.Style
	Notice           lipgloss.Style
	Error            lipgloss.Style
	Help             lipgloss.Style
}

type BorderColors struct {
	User      string
	Assistant string
	Streaming string
}

func DefaultStyles() *Style {
	lightModeColors := BorderColors{
		User:      "#AACCFF",
		Assistant: "#CCCCCC",
		Streaming: "#FFFF99", // light yellow
	}

	darkModeColors := BorderColors{
		User:      "#5577AA",
		Assistant: "#444444",
		Streaming: "#DDDD77", // desaturated yellow for dark mode
	}

	return &Style{
		Title:   lipgloss.NewStyle().Bold(true).Padding(0, 1),
		Caption: lipgloss.NewStyle().Faint(true).Padding(0, 1),
		Label:   lipgloss.NewStyle().Bold(true),
		UserMessage: lipgloss.NewStyle().Border(lipgloss.NormalBorder()).
			Padding(0, 1).
			BorderForeground(lipgloss.AdaptiveColor{
				Light: lightModeColors.User,
				Dark:  darkModeColors.User,
			}),
		AssistantMessage: lipgloss.NewStyle().Border(lipgloss.NormalBorder()).
			Padding(0, 1).
			BorderForeground(lipgloss.AdaptiveColor{
				Light: lightModeColors.Assistant,
				Dark:  darkModeColors.Assistant,
			}),
		Streaming: lipgloss.NewStyle().Border(lipgloss.NormalBorder()).
			Padding(0, 1).
			BorderForeground(lipgloss.AdaptiveColor{
				Light: lightModeColors.Streaming,
				Dark:  darkModeColors.Streaming,
			}),
		Notice: lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#0055AA", Dark: "#88BBFF"}),
		Error:  lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#AA0000", Dark: "#FF6666"}),
		Help:   lipgloss.NewStyle().Faint(true),
	}
}
