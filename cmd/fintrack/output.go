package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"fintrack/internal/core"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4672")).Bold(true)
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
	boldStyle    = lipgloss.NewStyle().Bold(true)
	labelStyle   = lipgloss.NewStyle().Width(22)
)

func money(v float64) string {
	return core.FormatAmount(v)
}

func healthStyle(h core.Health) lipgloss.Style {
	switch h {
	case core.HealthExcellent, core.HealthGood:
		return successStyle
	case core.HealthWarning:
		return warningStyle
	default:
		return errorStyle
	}
}

func cardStyle(s core.CardStatus) lipgloss.Style {
	switch s {
	case core.CardOK:
		return successStyle
	case core.CardWarning:
		return warningStyle
	default:
		return errorStyle
	}
}

func severityStyle(s core.AlertSeverity) lipgloss.Style {
	switch s {
	case core.SeverityDanger:
		return errorStyle
	case core.SeverityWarning:
		return warningStyle
	default:
		return subtleStyle
	}
}

// row prints a label/value line with the labels aligned.
func row(w io.Writer, label, value string) {
	fmt.Fprintln(w, labelStyle.Render(label)+value)
}

// bar renders percent as a fixed-width gauge, clamped to [0,100].
func bar(percent float64, width int) string {
	filled := int(percent / 100 * float64(width))
	filled = max(0, min(width, filled))
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}

func done(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, successStyle.Render("✓ "+fmt.Sprintf(format, args...)))
}

func empty(w io.Writer, what string) {
	fmt.Fprintln(w, subtleStyle.Render("No "+what+"."))
}

// shortID keeps list output narrow; any unique prefix is accepted back.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
