package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/dmitrijs2005/vehicletrack/internal/client/session"
)

var (
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#1E90FF")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
)

func styleFor(s session.State) lipgloss.Style {
	switch s.(type) {
	case session.Completed:
		return successStyle
	case session.Error:
		return errorStyle
	case session.Idle:
		return mutedStyle
	default:
		return infoStyle
	}
}
