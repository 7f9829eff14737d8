package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/climbr/internal/grade"
	"github.com/Veraticus/climbr/internal/model"
)

const swatch = "  "

var headerCellStyle = lipgloss.NewStyle().Bold(true).PaddingRight(2)

// Swatch renders a small block filled with hex. Unparseable colours render blank.
func Swatch(hex string) string {
	return lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render(swatch)
}

// RenderRoutes renders records as an aligned table.
func RenderRoutes(records []model.RouteRecord) string {
	if len(records) == 0 {
		return SubtleStyle.Render("No routes.")
	}

	headers := []string{"#", "", "Colour", "Holds", "Confidence", "V", "Font", "Notes"}
	rows := make([][]string, 0, len(records))
	for i, r := range records {
		notes := r.Notes
		if r.SetterNotes != "" {
			notes = r.SetterNotes
		}
		rows = append(rows, []string{
			strconv.Itoa(i),
			Swatch(r.Hex),
			r.ColorName,
			strconv.Itoa(r.HoldCount),
			ConfidenceLabel(r.Confidence),
			GradeLabel(r.GradeV),
			GradeLabel(r.GradeFont),
			notes,
		})
	}
	return renderTable(headers, rows)
}

// RenderGradeTable renders the V to Font conversion table.
func RenderGradeTable(pairs []grade.Pair) string {
	rows := make([][]string, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, []string{p.V, p.Font})
	}
	return renderTable([]string{"V", "Font"}, rows)
}

// RenderWallSets renders saved wall set summaries.
func RenderWallSets(sets []model.WallSet) string {
	if len(sets) == 0 {
		return SubtleStyle.Render("No saved wall sets.")
	}

	rows := make([][]string, 0, len(sets))
	for _, s := range sets {
		rows = append(rows, []string{
			s.ID,
			s.Created.Local().Format("2006-01-02 15:04"),
			s.Provider,
			fmt.Sprintf("%d/%d", s.GradedCount, s.RouteCount),
			s.Source,
		})
	}
	return renderTable([]string{"ID", "Created", "Provider", "Graded", "Source"}, rows)
}

// ConfidenceLabel colours a confidence level.
func ConfidenceLabel(c model.Confidence) string {
	switch c {
	case model.ConfidenceHigh:
		return SuccessStyle.Render(string(c))
	case model.ConfidenceMedium:
		return WarningStyle.Render(string(c))
	default:
		return SubtleStyle.Render(string(model.ConfidenceLow))
	}
}

// GradeLabel renders a grade, or a dash when unset.
func GradeLabel(g string) string {
	if g == "" {
		return UngradedStyle.Render("-")
	}
	return GradeStyle.Render(g)
}

func renderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	b.WriteString(renderRow(headers, widths, headerCellStyle))
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString(renderRow(row, widths, TableCellStyle))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderRow(cells []string, widths []int, style lipgloss.Style) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		pad := widths[i] - lipgloss.Width(cell)
		parts[i] = style.Render(cell + strings.Repeat(" ", pad))
	}
	return strings.TrimRight(strings.Join(parts, ""), " ")
}
