package turingprobe

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ReportFile is the name of the machine-readable report in the figures dir.
const ReportFile = "report.json"

var (
	reportTitle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	reportHeader = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	reportCell   = lipgloss.NewStyle().Padding(0, 1)
	reportRule   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// textTable is a static, column-aligned table.
type textTable struct {
	title   string
	headers []string
	rows    [][]string
}

func (t *textTable) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *textTable) render() string {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}
	// Width includes padding.
	total := len(widths) - 1
	for i := range widths {
		widths[i] += 2
		total += widths[i]
	}

	var sb strings.Builder
	if t.title != "" {
		sb.WriteString(reportTitle.Render(t.title))
		sb.WriteString("\n")
	}
	writeRow := func(style lipgloss.Style, cells []string) {
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			sb.WriteString(style.Width(widths[i]).Render(cell))
			if i < len(widths)-1 {
				sb.WriteString(reportRule.Render("|"))
			}
		}
		sb.WriteString("\n")
	}
	writeRow(reportHeader, t.headers)
	sb.WriteString(reportRule.Render(strings.Repeat("-", max(total, 0))))
	sb.WriteString("\n")
	for _, row := range t.rows {
		writeRow(reportCell, row)
	}
	return sb.String()
}

func pct(f float64) string { return fmt.Sprintf("%.2f%%", f*100) }
func score(f float64) string { return fmt.Sprintf("%.2f", f) }

// RenderReport prints the report as terminal tables.
func RenderReport(w io.Writer, r Report) error {
	var sb strings.Builder

	sb.WriteString(reportTitle.Render("Overall Performance"))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Accuracy: %s (%d rows)\n\n", pct(r.Overall.Accuracy), r.Overall.Rows)

	classes := &textTable{headers: []string{"class", "precision", "recall", "f1", "support"}}
	for _, c := range r.Classes {
		classes.add(c.Class, score(c.Precision), score(c.Recall), score(c.F1), strconv.Itoa(c.Support))
	}
	sb.WriteString(classes.render())
	sb.WriteString("\n")

	cm := r.Overall.Confusion
	confusion := &textTable{title: "Confusion Matrix", headers: []string{"actual \\ predicted", "AI", "Human"}}
	confusion.add("AI", strconv.Itoa(cm.TrueAI), strconv.Itoa(cm.FalseHuman))
	confusion.add("Human", strconv.Itoa(cm.FalseAI), strconv.Itoa(cm.TrueHuman))
	sb.WriteString(confusion.render())
	sb.WriteString("\n")

	topics := &textTable{
		title:   "Metrics by Topic",
		headers: []string{"topic", "rows", "accuracy", "precision", "recall", "f1", "tn", "fp", "fn", "tp"},
	}
	for _, t := range r.Topics {
		c := t.Confusion
		topics.add(t.Topic, strconv.Itoa(t.Rows),
			score(t.Accuracy), score(t.Precision), score(t.Recall), score(t.F1),
			strconv.Itoa(c.TrueAI), strconv.Itoa(c.FalseHuman), strconv.Itoa(c.FalseAI), strconv.Itoa(c.TrueHuman))
	}
	sb.WriteString(topics.render())
	sb.WriteString("\n")

	dist := &textTable{title: "Human vs AI Distribution by Topic", headers: append([]string{"topic"}, r.Sources...)}
	for _, d := range r.Distribution {
		cells := []string{d.Topic}
		for _, s := range r.Sources {
			cells = append(cells, strconv.Itoa(d.Counts[s]))
		}
		dist.add(cells...)
	}
	sb.WriteString(dist.render())

	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteReportJSON saves the report as indented JSON in dir and returns its path.
func WriteReportJSON(dir string, r Report) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("turingprobe: mkdir %s: %w", dir, err)
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("turingprobe: marshal report: %w", err)
	}
	path := filepath.Join(dir, ReportFile)
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return "", fmt.Errorf("turingprobe: write %s: %w", path, err)
	}
	return path, nil
}
