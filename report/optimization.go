package report

import (
	"fmt"
	"strings"

	"github.com/dislovemartin/prompts/optimizer"
)

// RenderOptimization builds the per-document optimization report:
// scored coverage, recommendations for missing patterns, and code block
// findings when a code check ran.
func (r *Renderer) RenderOptimization(rep *optimizer.Report) string {
	var sb strings.Builder

	cov := rep.Coverage
	sb.WriteString("# Optimization Report: ")
	sb.WriteString(cov.Source)
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("**Coverage:** %.1f / %.1f (%d%%)\n", cov.Total, cov.Max, cov.Percent))
	sb.WriteString("**Recommendation:** ")
	sb.WriteString(string(cov.Recommendation))
	sb.WriteString("\n\n")

	for _, cat := range cov.Categories {
		sb.WriteString(fmt.Sprintf("## %s (%d%%)\n\n", cat.Label, cat.Percent))
		for _, c := range cat.Criteria {
			r.writeCriterion(&sb, c)
		}
		sb.WriteString("\n")
	}

	if len(rep.Advice) > 0 {
		sb.WriteString("## Recommendations\n\n")
		for i, item := range rep.Advice {
			sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, item.Advice))
		}
		sb.WriteString("\n")
	}

	if rep.CodeChecked {
		sb.WriteString("## Code Blocks\n\n")
		if len(rep.CodeIssues) == 0 {
			sb.WriteString("All fenced code blocks parse cleanly.\n")
		} else {
			for _, issue := range rep.CodeIssues {
				sb.WriteString(fmt.Sprintf("- line %d (%s): %s\n", issue.Line, issue.Language, issue.Message))
			}
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// AddOptimization appends an optimization report outcome.
func (s *Summary) AddOptimization(rep *optimizer.Report) {
	s.Add(SummaryRow{
		Source:  rep.Coverage.Source,
		Score:   rep.Coverage.Total,
		Max:     rep.Coverage.Max,
		Percent: rep.Coverage.Percent,
		Verdict: string(rep.Coverage.Recommendation),
	})
}
