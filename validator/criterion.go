// Package validator scores prompt templates against a weighted criteria
// table. Criteria are grouped into ordered categories; each criterion awards
// up to its weight, category totals roll up into an overall percentage, and
// the percentage maps to a discrete recommendation.
package validator

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

// Kind discriminates the criterion behaviors. The table is data, not code:
// adding a criterion never touches the evaluator.
type Kind string

const (
	// KindCount passes when the pattern matches at least MinCount times,
	// with linear partial credit below the threshold.
	KindCount Kind = "count"
	// KindExists passes when the pattern matches at least once. Full weight
	// or zero, no partial credit.
	KindExists Kind = "exists"
	// KindLength passes when the document stays within MaxLength characters,
	// with linearly decaying credit beyond the bound.
	KindLength Kind = "length"
	// KindDerived scales the weight by an earlier category's percentage.
	// A heuristic proxy, not a measured property.
	KindDerived Kind = "derived"
)

// DefaultDerivedThreshold is the acceptance ratio for derived criteria
// that do not set one explicitly.
const DefaultDerivedThreshold = 0.7

// Criterion is one immutable scoring rule.
type Criterion struct {
	// Key identifies the criterion within its category.
	Key string
	// Label is the human-readable name used in reports.
	Label string
	// Kind selects the evaluation behavior.
	Kind Kind
	// Pattern is the compiled matcher for count and exists criteria.
	Pattern *regexp.Regexp
	// MinCount is the occurrence threshold for count criteria.
	MinCount int
	// MaxLength is the character bound for length criteria.
	MaxLength int
	// Source names the earlier category a derived criterion borrows from.
	Source string
	// Threshold is the acceptance ratio for derived criteria
	// (DefaultDerivedThreshold when zero).
	Threshold float64
	// Weight is the maximum score this criterion can award.
	Weight float64
}

// CriterionResult is the outcome of evaluating one criterion.
type CriterionResult struct {
	Key      string  `json:"key"`
	Label    string  `json:"label"`
	Passed   bool    `json:"passed"`
	Score    float64 `json:"score"`
	MaxScore float64 `json:"max_score"`
	Details  string  `json:"details"`
}

// Evaluate scores the criterion against text. prior maps already-scored
// category keys to their percentages; only derived criteria consult it.
// Pure function: a fresh find-all per call, no retained matcher state.
func (c Criterion) Evaluate(text string, prior map[string]int) CriterionResult {
	result := CriterionResult{
		Key:      c.Key,
		Label:    c.Label,
		MaxScore: c.Weight,
	}

	switch c.Kind {
	case KindCount:
		n := 0
		if c.Pattern != nil {
			n = len(c.Pattern.FindAllStringIndex(text, -1))
		}
		switch {
		case n >= c.MinCount:
			result.Passed = true
			result.Score = c.Weight
			result.Details = fmt.Sprintf("%d occurrences (minimum %d)", n, c.MinCount)
		case n > 0:
			result.Score = c.Weight * float64(n) / float64(c.MinCount)
			result.Details = fmt.Sprintf("%d of %d required occurrences", n, c.MinCount)
		default:
			result.Details = fmt.Sprintf("no occurrences (minimum %d)", c.MinCount)
		}

	case KindExists:
		if c.Pattern != nil && c.Pattern.MatchString(text) {
			result.Passed = true
			result.Score = c.Weight
			result.Details = "present"
		} else {
			result.Details = "not found"
		}

	case KindLength:
		chars := utf8.RuneCountInString(text)
		if chars <= c.MaxLength {
			result.Passed = true
			result.Score = c.Weight
			result.Details = fmt.Sprintf("%d chars (limit %d)", chars, c.MaxLength)
		} else {
			over := float64(chars-c.MaxLength) / float64(c.MaxLength)
			score := c.Weight * (1 - over)
			if score < 0 {
				score = 0
			}
			result.Score = score
			result.Details = fmt.Sprintf("%d chars exceeds limit %d", chars, c.MaxLength)
		}

	case KindDerived:
		percent, ok := prior[c.Source]
		if !ok {
			result.Details = fmt.Sprintf("source category %q not scored", c.Source)
			break
		}
		ratio := float64(percent) / 100
		threshold := c.Threshold
		if threshold == 0 {
			threshold = DefaultDerivedThreshold
		}
		result.Score = c.Weight * ratio
		result.Passed = ratio > threshold
		result.Details = fmt.Sprintf("%d%% proxy from %s", percent, c.Source)

	default:
		result.Details = fmt.Sprintf("unknown criterion kind %q", c.Kind)
	}

	return result
}
