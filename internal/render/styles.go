package render

import "github.com/charmbracelet/lipgloss"

// Terminal styles by report element. Lipgloss degrades colors to what the
// terminal supports.
var (
	styleFile    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	styleSection = lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("6"))
	styleFailed  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	styleWarning = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3"))
	styleLink    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	styleTotal   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	styleEmpty   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// paint renders text with style when colors are on.
func (r *Reporter) paint(style lipgloss.Style, text string) string {
	if !r.useColors {
		return text
	}
	return style.Render(text)
}
