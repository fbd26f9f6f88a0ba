// Package report renders scoring results as markdown and writes them
// alongside a run summary into an output directory.
package report

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dislovemartin/prompts/validator"
)

// Renderer converts scoring results to markdown.
type Renderer struct{}

// NewRenderer creates a new markdown renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderValidation builds the per-document validation report. Output is
// deterministic for a given report.
func (r *Renderer) RenderValidation(rep *validator.DocumentReport) string {
	var sb strings.Builder

	sb.WriteString("# Validation Report: ")
	sb.WriteString(rep.Source)
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("**Score:** %.1f / %.1f (%d%%)\n", rep.Total, rep.Max, rep.Percent))
	sb.WriteString("**Recommendation:** ")
	sb.WriteString(string(rep.Recommendation))
	sb.WriteString("\n\n")

	for _, cat := range rep.Categories {
		sb.WriteString(fmt.Sprintf("## %s (%d%%)\n\n", cat.Label, cat.Percent))
		for _, c := range cat.Criteria {
			r.writeCriterion(&sb, c)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// writeCriterion writes one checkbox line with score and detail.
func (r *Renderer) writeCriterion(sb *strings.Builder, c validator.CriterionResult) {
	mark := " "
	if c.Passed {
		mark = "x"
	}
	sb.WriteString(fmt.Sprintf("- [%s] %s: %.1f/%.1f", mark, c.Label, c.Score, c.MaxScore))
	if c.Details != "" {
		sb.WriteString(" (")
		sb.WriteString(c.Details)
		sb.WriteString(")")
	}
	sb.WriteString("\n")
}

// SummaryRow is one document line in a run summary.
type SummaryRow struct {
	Source  string
	Score   float64
	Max     float64
	Percent int
	Verdict string
}

// Summary aggregates one batch run. RunID and Timestamp vary per run;
// the rows are deterministic.
type Summary struct {
	Title     string
	RunID     string
	Timestamp time.Time
	Rows      []SummaryRow
}

// NewSummary creates a summary with a fresh run ID.
func NewSummary(title string) *Summary {
	return &Summary{
		Title:     title,
		RunID:     uuid.New().String(),
		Timestamp: time.Now().UTC(),
	}
}

// Add appends one document outcome.
func (s *Summary) Add(row SummaryRow) {
	s.Rows = append(s.Rows, row)
}

// AddValidation appends a validation report outcome.
func (s *Summary) AddValidation(rep *validator.DocumentReport) {
	s.Add(SummaryRow{
		Source:  rep.Source,
		Score:   rep.Total,
		Max:     rep.Max,
		Percent: rep.Percent,
		Verdict: string(rep.Recommendation),
	})
}

// MeanPercent is the arithmetic mean of the row percentages, rounded.
func (s *Summary) MeanPercent() int {
	if len(s.Rows) == 0 {
		return 0
	}
	sum := 0
	for _, row := range s.Rows {
		sum += row.Percent
	}
	return int(math.Round(float64(sum) / float64(len(s.Rows))))
}

// RenderSummary builds the run summary document.
func (r *Renderer) RenderSummary(s *Summary) string {
	var sb strings.Builder

	sb.WriteString("# ")
	sb.WriteString(s.Title)
	sb.WriteString("\n\n")

	sb.WriteString("**Run:** ")
	sb.WriteString(s.RunID)
	sb.WriteString("\n**Date:** ")
	sb.WriteString(s.Timestamp.Format(time.RFC3339))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("**Files:** %d\n", len(s.Rows)))
	sb.WriteString(fmt.Sprintf("**Mean score:** %d%%\n\n", s.MeanPercent()))

	if len(s.Rows) == 0 {
		return sb.String()
	}

	sb.WriteString("| File | Score | Percent | Verdict |\n")
	sb.WriteString("|------|-------|---------|--------|\n")
	for _, row := range s.Rows {
		sb.WriteString(fmt.Sprintf("| %s | %.1f/%.1f | %d%% | %s |\n",
			row.Source, row.Score, row.Max, row.Percent, row.Verdict))
	}

	return sb.String()
}
