package cli

import (
	"strings"

	"charm.land/lipgloss/v2"
)

type theme struct {
	title   lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	accent  lipgloss.Style
	warn    lipgloss.Style
	subtle  lipgloss.Style
	section lipgloss.Style
}

func newTheme() theme {
	border := lipgloss.Color("238")
	text := lipgloss.Color("252")
	subtle := lipgloss.Color("243")
	accent := lipgloss.Color("111")
	success := lipgloss.Color("78")
	warn := lipgloss.Color("214")

	return theme{
		title:  lipgloss.NewStyle().Bold(true).Foreground(success),
		label:  lipgloss.NewStyle().Foreground(subtle).Width(12),
		value:  lipgloss.NewStyle().Foreground(text),
		accent: lipgloss.NewStyle().Bold(true).Foreground(accent),
		warn:   lipgloss.NewStyle().Foreground(warn),
		subtle: lipgloss.NewStyle().Foreground(subtle),
		section: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1),
	}
}

func (t theme) row(label string, value lipgloss.Style, text string) string {
	return t.label.Render(label) + " " + value.Render(text)
}

func (t theme) card(title string, rows ...string) string {
	body := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return t.section.Render(t.title.Render(title) + "\n" + strings.TrimRight(body, "\n"))
}
