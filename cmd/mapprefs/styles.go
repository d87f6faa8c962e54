package main

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF8C42"))
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#7FB3D5"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C757D"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#52B788"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E9C46A"))
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#495057")).
			Padding(0, 1)
)
