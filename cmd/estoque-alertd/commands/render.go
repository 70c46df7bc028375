package commands

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	criticalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	highStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F97316"))
	mediumStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EAB308"))
	lowStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

func styleSeverity(severity string) string {
	switch severity {
	case "critical":
		return criticalStyle.Render(severity)
	case "high":
		return highStyle.Render(severity)
	case "medium":
		return mediumStyle.Render(severity)
	case "low":
		return lowStyle.Render(severity)
	default:
		return severity
	}
}

func renderTable(headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Println(mutedStyle.Render("No results found."))
		return
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("238"))).
		Headers(headers...).
		Rows(rows...)

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	t.StyleFunc(func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return headerStyle
		}
		return lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	})

	fmt.Fprintln(os.Stdout, t.Render())
}
