package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/lox/handcheck/internal/audit"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)
)

// maxIssueWidth truncates long issue lines in the table.
const maxIssueWidth = 72

// renderSummary lists the hands that still have issues, with the first issue of each.
func renderSummary(report audit.Report) string {
	withIssues := report.WithIssues()
	if withIssues == 0 {
		return successStyle.Render(fmt.Sprintf("All %d hands are clean", report.TotalHands))
	}

	rows := make([][]string, 0, withIssues)
	for _, h := range report.Hands {
		if len(h.Issues) == 0 {
			continue
		}
		id := h.HandID
		if id == "" {
			id = "-"
		}
		rows = append(rows, []string{strconv.Itoa(h.HandIndex), id, strconv.Itoa(len(h.Issues)), truncate(h.Issues[0], maxIssueWidth)})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "HAND", "ISSUES", "FIRST ISSUE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	title := errorStyle.Render(fmt.Sprintf("%d of %d hands have issues", withIssues, report.TotalHands))
	return title + "\n" + t.String()
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
