package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/climbr/internal/model"
	"github.com/Veraticus/climbr/internal/session"
)

// View renders the editor.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{m.renderHeader()}

	switch m.snap.State {
	case session.StateIdle:
		sections = append(sections, m.theme.Muted.Render("No photo loaded."))
	case session.StateLoading:
		sections = append(sections, m.spinner.View()+" Analysing wall…")
	case session.StateError:
		sections = append(sections, m.renderError())
	case session.StateDone:
		sections = append(sections, m.renderRoutes(), m.renderDetail())
	}

	if m.status != "" {
		style := m.theme.StatusSuccess
		if m.statusErr {
			style = m.theme.StatusError
		}
		sections = append(sections, style.Render(m.status))
	}

	sections = append(sections, m.help.View(m.keymap))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	title := m.theme.Title.Render("climbr")
	var parts []string
	if m.source != "" {
		parts = append(parts, m.source)
	}
	if m.snap.Provider != "" {
		parts = append(parts, "via "+m.snap.Provider)
	}
	if len(m.snap.Records) > 0 {
		graded := 0
		for _, r := range m.snap.Records {
			if r.Graded() {
				graded++
			}
		}
		parts = append(parts, fmt.Sprintf("%d/%d graded", graded, len(m.snap.Records)))
	}
	if len(parts) == 0 {
		return title
	}
	return title + "  " + m.theme.Subtitle.Render(strings.Join(parts, " · "))
}

func (m Model) renderError() string {
	body := m.theme.StatusError.Render("Analysis failed") + "\n" + m.snap.ErrorMessage()
	if m.snap.HasImage {
		body += "\n" + m.theme.Muted.Render("press r to retry")
	}
	return m.theme.RoundedBox.Render(body)
}

func (m Model) renderRoutes() string {
	lines := make([]string, 0, len(m.snap.Records))
	for i, r := range m.snap.Records {
		lines = append(lines, m.renderRow(i, r))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderRow(i int, r model.RouteRecord) string {
	swatch := lipgloss.NewStyle().Background(lipgloss.Color(r.Hex)).Render("  ")
	text := fmt.Sprintf("%-10s %3d holds  %-6s  V %-4s Font %-4s",
		r.ColorName, r.HoldCount, r.Confidence, orDash(r.GradeV), orDash(r.GradeFont))

	marker := "  "
	style := m.theme.Normal
	if i == m.cursor {
		marker = "› "
		style = m.theme.Selected
	}
	return marker + swatch + " " + style.Render(text)
}

func (m Model) renderDetail() string {
	rec, ok := m.current()
	if !ok {
		return ""
	}

	lines := []string{m.theme.Bold.Render(rec.ColorName) + " " + m.theme.Muted.Render(rec.Hex)}
	if rec.Notes != "" {
		lines = append(lines, m.theme.Muted.Render(rec.Notes))
	}
	if m.editing {
		lines = append(lines, m.notes.View())
	} else if rec.SetterNotes != "" {
		lines = append(lines, "notes: "+rec.SetterNotes)
	}
	return m.theme.RoundedBox.Render(strings.Join(lines, "\n"))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
