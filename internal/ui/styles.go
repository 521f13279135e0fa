package ui

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent  = lipgloss.Color("#ED1C24")
	colorMuted   = lipgloss.Color("245")
	colorSuccess = lipgloss.Color("42")
	colorWarning = lipgloss.Color("214")
	colorError   = lipgloss.Color("196")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)

	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)

	headlineStyle = lipgloss.NewStyle().Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorWarning).
			Padding(0, 1)

	buttonStyle = lipgloss.NewStyle().Padding(0, 2).Foreground(colorMuted)

	activeButtonStyle = lipgloss.NewStyle().
				Padding(0, 2).
				Bold(true).
				Foreground(lipgloss.Color("231")).
				Background(colorAccent)

	outcomeStyles = map[string]lipgloss.Style{
		"found":   lipgloss.NewStyle().Foreground(colorSuccess),
		"empty":   lipgloss.NewStyle().Foreground(colorMuted),
		"failed":  lipgloss.NewStyle().Foreground(colorError),
		"skipped": lipgloss.NewStyle().Foreground(colorMuted).Faint(true),
	}

	noticeStyles = map[noticeKind]lipgloss.Style{
		noticeInfo:    lipgloss.NewStyle().Bold(true).Foreground(colorSuccess),
		noticeWarning: lipgloss.NewStyle().Bold(true).Foreground(colorWarning),
		noticeError:   lipgloss.NewStyle().Bold(true).Foreground(colorError),
	}
)

type noticeKind int

const (
	noticeInfo noticeKind = iota
	noticeWarning
	noticeError
)
