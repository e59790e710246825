// Package ui provides consistent styling for the xcal CLI output
package ui

import "github.com/charmbracelet/lipgloss"

// Color palette - consistent across the application
var (
	ColorPrimary = lipgloss.Color("39") // Bright blue
	ColorInfo    = lipgloss.Color("86") // Cyan

	ColorText   = lipgloss.Color("252") // Light gray
	ColorSubtle = lipgloss.Color("241") // Medium gray
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	InfoStyle = lipgloss.NewStyle().
			Foreground(ColorInfo)
)
