package main

import "github.com/charmbracelet/lipgloss"

var (
	allocColor = lipgloss.Color("#7D56F4")
	freeColor  = lipgloss.Color("#04B575")
	mutedColor = lipgloss.Color("#666666")

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(mutedColor)
	allocStyle  = lipgloss.NewStyle().Foreground(allocColor)
	freeStyle   = lipgloss.NewStyle().Foreground(freeColor).Bold(true)
)
