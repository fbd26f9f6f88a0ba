package validator

import "math"

// Recommendation is the human-readable verdict derived from the overall
// percentage.
type Recommendation string

const (
	RecommendationApproved Recommendation = "Approved for production"
	RecommendationMinor    Recommendation = "Approved with minor revisions"
	RecommendationRevise   Recommendation = "Requires significant revision"
	RecommendationRejected Recommendation = "Rejected"
)

// Recommend maps an overall percentage to its verdict. Thresholds are
// checked descending, first match wins.
func Recommend(percent int) Recommendation {
	switch {
	case percent >= 90:
		return RecommendationApproved
	case percent >= 75:
		return RecommendationMinor
	case percent >= 50:
		return RecommendationRevise
	default:
		return RecommendationRejected
	}
}

// Rank orders recommendations from Rejected (0) to Approved (3).
func (r Recommendation) Rank() int {
	switch r {
	case RecommendationApproved:
		return 3
	case RecommendationMinor:
		return 2
	case RecommendationRevise:
		return 1
	default:
		return 0
	}
}

// CategoryResult aggregates the criterion results of one category.
type CategoryResult struct {
	Key      string            `json:"key"`
	Label    string            `json:"label"`
	Criteria []CriterionResult `json:"criteria"`
	Total    float64           `json:"total"`
	Max      float64           `json:"max"`
	Percent  int               `json:"percent"`
}

// DocumentReport is the complete scoring outcome for one document.
type DocumentReport struct {
	Source         string           `json:"source"`
	Categories     []CategoryResult `json:"categories"`
	Total          float64          `json:"total"`
	Max            float64          `json:"max"`
	Percent        int              `json:"percent"`
	Recommendation Recommendation   `json:"recommendation"`
}

// percentOf rounds earned/max to a whole percentage, returning 0 for an
// empty scale.
func percentOf(total, max float64) int {
	if max <= 0 {
		return 0
	}
	return int(math.Round(100 * total / max))
}

// BuildReport scores text against the ruleset. Categories are evaluated
// in table order so derived criteria see the percentages of every
// earlier category. The same source and text always produce an
// identical report.
func BuildReport(source, text string, rs *Ruleset) *DocumentReport {
	report := &DocumentReport{Source: source}
	prior := make(map[string]int, len(rs.Categories))

	for _, cat := range rs.Categories {
		cr := CategoryResult{Key: cat.Key, Label: cat.Label}
		for _, c := range cat.Criteria {
			res := c.Evaluate(text, prior)
			cr.Criteria = append(cr.Criteria, res)
			cr.Total += res.Score
			cr.Max += res.MaxScore
		}
		cr.Percent = percentOf(cr.Total, cr.Max)
		prior[cat.Key] = cr.Percent

		report.Categories = append(report.Categories, cr)
		report.Total += cr.Total
		report.Max += cr.Max
	}

	report.Percent = percentOf(report.Total, report.Max)
	report.Recommendation = Recommend(report.Percent)
	return report
}
