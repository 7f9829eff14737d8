// Package cli renders climbr's terminal output with lipgloss.
package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette. Orange is chalk-bag orange; the rest follow common hold colours.
var (
	PrimaryColor = lipgloss.Color("#F97316")
	SuccessColor = lipgloss.Color("#16A34A")
	WarningColor = lipgloss.Color("#EAB308")
	ErrorColor   = lipgloss.Color("#DC2626")
	InfoColor    = lipgloss.Color("#0EA5E9")
	SubtleColor  = lipgloss.Color("#78716C")
)

var (
	// TitleStyle is used for the heading above a table.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(PrimaryColor)

	SuccessStyle = lipgloss.NewStyle().Foreground(SuccessColor)
	WarningStyle = lipgloss.NewStyle().Foreground(WarningColor)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ErrorColor)
	InfoStyle    = lipgloss.NewStyle().Foreground(InfoColor)
	SubtleStyle  = lipgloss.NewStyle().Foreground(SubtleColor)

	// TableCellStyle separates table columns.
	TableCellStyle = lipgloss.NewStyle().PaddingRight(2)

	// GradeStyle highlights an assigned grade.
	GradeStyle = lipgloss.NewStyle().Bold(true).Foreground(PrimaryColor)

	// UngradedStyle marks a route still waiting for a grade.
	UngradedStyle = lipgloss.NewStyle().Foreground(SubtleColor)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	WallIcon    = "🧗"
)

// FormatSuccess formats a success message with icon.
func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

// FormatError formats an error message with icon.
func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

// FormatWarning formats a warning message with icon.
func FormatWarning(message string) string {
	return WarningStyle.Render(WarningIcon + " " + message)
}

// FormatInfo formats an info message with icon.
func FormatInfo(message string) string {
	return InfoStyle.Render(InfoIcon + " " + message)
}

// FormatTitle prefixes a heading with the climber icon.
func FormatTitle(title string) string {
	return TitleStyle.Render(WallIcon + " " + title)
}
