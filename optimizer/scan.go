package optimizer

import (
	"context"
	"fmt"
	"sort"

	"github.com/dislovemartin/prompts/validator"
)

// AdviceItem is one recommendation emitted for a missing pattern.
type AdviceItem struct {
	Category string  `json:"category"`
	Key      string  `json:"key"`
	Label    string  `json:"label"`
	Weight   float64 `json:"weight"`
	Advice   string  `json:"advice"`
}

// Report is the outcome of scanning one document: the scored coverage
// plus the advice for every pattern the document is missing. CodeIssues
// is populated only when a code check ran.
type Report struct {
	Coverage    *validator.DocumentReport `json:"coverage"`
	Advice      []AdviceItem              `json:"advice,omitempty"`
	CodeChecked bool                      `json:"code_checked"`
	CodeIssues  []CodeIssue               `json:"code_issues,omitempty"`
}

// Scanner evaluates documents against a pattern table.
type Scanner struct {
	ruleset *validator.Ruleset
	advice  map[string]AdviceItem
}

// NewScanner builds a scanner from the pattern table, rejecting tables
// whose projected ruleset does not validate.
func NewScanner(ps *PatternSet) (*Scanner, error) {
	rs := ps.Ruleset()
	if err := rs.Validate(); err != nil {
		return nil, fmt.Errorf("validate patterns: %w", err)
	}

	advice := make(map[string]AdviceItem)
	for _, cat := range ps.Categories {
		for _, p := range cat.Patterns {
			advice[cat.Key+"/"+p.Key] = AdviceItem{
				Category: cat.Key,
				Key:      p.Key,
				Label:    p.Label,
				Weight:   p.Weight,
				Advice:   p.Advice,
			}
		}
	}

	return &Scanner{ruleset: rs, advice: advice}, nil
}

// Scan scores the document and collects advice for every failed
// pattern, heaviest weight first. Ties keep table order.
func (s *Scanner) Scan(source, text string) *Report {
	rep := validator.BuildReport(source, text, s.ruleset)

	var advice []AdviceItem
	for _, cat := range rep.Categories {
		for _, cr := range cat.Criteria {
			if cr.Passed {
				continue
			}
			if item, ok := s.advice[cat.Key+"/"+cr.Key]; ok {
				advice = append(advice, item)
			}
		}
	}
	sort.SliceStable(advice, func(i, j int) bool {
		return advice[i].Weight > advice[j].Weight
	})

	return &Report{Coverage: rep, Advice: advice}
}

// CheckCode parses the document's fenced JavaScript and TypeScript
// blocks and records any that fail to parse. The report is marked
// checked even when every block is clean.
func (s *Scanner) CheckCode(ctx context.Context, rep *Report, text string) error {
	issues, err := CheckCodeBlocks(ctx, text)
	if err != nil {
		return err
	}
	rep.CodeChecked = true
	rep.CodeIssues = issues
	return nil
}
