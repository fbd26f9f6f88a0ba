// Package optimizer scans backend and API prompt templates for
// optimization practice coverage. Each pattern pairs a scoring
// criterion with an advice line that is surfaced when the pattern is
// absent from the document.
package optimizer

import (
	"regexp"

	"github.com/dislovemartin/prompts/validator"
)

// Pattern is one optimization practice to look for. The embedded
// criterion drives scoring; Advice is emitted when the criterion fails.
type Pattern struct {
	validator.Criterion
	Advice string
}

// Category groups related patterns under one scored heading.
type Category struct {
	Key      string
	Label    string
	Patterns []Pattern
}

// PatternSet is the full table of optimization patterns.
type PatternSet struct {
	Categories []Category
}

// Ruleset projects the pattern table into a scoring ruleset.
func (ps *PatternSet) Ruleset() *validator.Ruleset {
	rs := &validator.Ruleset{}
	for _, cat := range ps.Categories {
		vc := validator.Category{Key: cat.Key, Label: cat.Label}
		for _, p := range cat.Patterns {
			vc.Criteria = append(vc.Criteria, p.Criterion)
		}
		rs.Categories = append(rs.Categories, vc)
	}
	return rs
}

// DefaultPatterns returns the built-in optimization pattern table for
// backend and API templates. Coverage is grouped into performance,
// security, and reliability; weights reflect how costly the practice is
// to retrofit once a template ships without it.
func DefaultPatterns() *PatternSet {
	return &PatternSet{
		Categories: []Category{
			{
				Key:   "performance",
				Label: "Performance",
				Patterns: []Pattern{
					{
						Criterion: validator.Criterion{
							Key:     "caching",
							Label:   "Caching strategy",
							Kind:    validator.KindExists,
							Pattern: regexp.MustCompile(`(?i)\bcach(?:e|ed|ing)\b|\brevalidate\b|stale-while-revalidate`),
							Weight:  3,
						},
						Advice: "Document a caching strategy for data fetches, including revalidation intervals or cache headers.",
					},
					{
						Criterion: validator.Criterion{
							Key:     "pagination",
							Label:   "Pagination guidance",
							Kind:    validator.KindExists,
							Pattern: regexp.MustCompile(`(?i)\bpaginat(?:e|ed|ion)\b|\bcursor-based\b|\binfinite scroll\b`),
							Weight:  2,
						},
						Advice: "Specify pagination (cursor or offset) for every endpoint that can return unbounded lists.",
					},
					{
						Criterion: validator.Criterion{
							Key:     "streaming",
							Label:   "Streaming or lazy loading",
							Kind:    validator.KindExists,
							Pattern: regexp.MustCompile(`(?i)\bstreaming\b|\blazy[ -]load(?:ed|ing)?\b|\bsuspense\b`),
							Weight:  2,
						},
						Advice: "Call out streaming responses or lazy loading for slow data paths so the UI renders progressively.",
					},
					{
						Criterion: validator.Criterion{
							Key:     "bundle",
							Label:   "Bundle size controls",
							Kind:    validator.KindExists,
							Pattern: regexp.MustCompile(`(?i)\bdynamic import\b|\bcode[ -]splitting\b|\bbundle size\b|\btree[ -]shak`),
							Weight:  2,
						},
						Advice: "Require dynamic imports or code splitting for heavy client dependencies.",
					},
					{
						Criterion: validator.Criterion{
							Key:      "query-efficiency",
							Label:    "Query efficiency",
							Kind:     validator.KindCount,
							Pattern:  regexp.MustCompile(`(?i)\bindex(?:es|ed|ing)?\b|\bn\+1\b|\bquery optimi[sz]|\bbatch(?:ed|ing)? quer`),
							MinCount: 2,
							Weight:   3,
						},
						Advice: "Cover database query efficiency: required indexes, batching, and how to avoid N+1 access patterns.",
					},
				},
			},
			{
				Key:   "security",
				Label: "Security",
				Patterns: []Pattern{
					{
						Criterion: validator.Criterion{
							Key:      "input-validation",
							Label:    "Input validation",
							Kind:     validator.KindCount,
							Pattern:  regexp.MustCompile(`(?i)\bvalidat(?:e|ed|ion|ing)\b|\bzod\b|\bsanitiz(?:e|ed|ation|ing)\b`),
							MinCount: 2,
							Weight:   3,
						},
						Advice: "Require schema validation (zod or equivalent) on every request body, query parameter, and route param.",
					},
					{
						Criterion: validator.Criterion{
							Key:     "auth",
							Label:   "Authentication and authorization",
							Kind:    validator.KindExists,
							Pattern: regexp.MustCompile(`(?i)\bauthenticat(?:e|ed|ion)\b|\bauthoriz(?:e|ed|ation)\b|\bsession\b|\bjwt\b`),
							Weight:  3,
						},
						Advice: "State how requests are authenticated and which roles may call each endpoint.",
					},
					{
						Criterion: validator.Criterion{
							Key:     "secrets",
							Label:   "Secret handling",
							Kind:    validator.KindExists,
							Pattern: regexp.MustCompile(`(?i)\benvironment variables?\b|\bprocess\.env\b|\bsecrets? manager\b|\b\.env\b`),
							Weight:  2,
						},
						Advice: "Keep credentials in environment variables or a secrets manager and say so explicitly in the template.",
					},
					{
						Criterion: validator.Criterion{
							Key:     "rate-limiting",
							Label:   "Rate limiting",
							Kind:    validator.KindExists,
							Pattern: regexp.MustCompile(`(?i)\brate[ -]limit`),
							Weight:  2,
						},
						Advice: "Add rate limiting guidance for public endpoints, including the limit and the 429 response shape.",
					},
					{
						Criterion: validator.Criterion{
							Key:     "injection",
							Label:   "Injection defenses",
							Kind:    validator.KindExists,
							Pattern: regexp.MustCompile(`(?i)\bsql injection\b|\bparameteri[sz]ed\b|\bxss\b|\bcsrf\b|\bcontent security policy\b`),
							Weight:  2,
						},
						Advice: "Name the injection defenses in scope: parameterized queries, output encoding, and CSRF protection.",
					},
				},
			},
			{
				Key:   "reliability",
				Label: "Reliability",
				Patterns: []Pattern{
					{
						Criterion: validator.Criterion{
							Key:      "error-handling",
							Label:    "Error handling",
							Kind:     validator.KindCount,
							Pattern:  regexp.MustCompile(`(?i)\berror handling\b|\btry[/ -]?catch\b|\berror boundar(?:y|ies)\b|\berror response\b`),
							MinCount: 2,
							Weight:   3,
						},
						Advice: "Describe error handling end to end: caught exceptions, error boundaries, and the error response contract.",
					},
					{
						Criterion: validator.Criterion{
							Key:     "retries",
							Label:   "Retries and backoff",
							Kind:    validator.KindExists,
							Pattern: regexp.MustCompile(`(?i)\bretr(?:y|ies|ied)\b|\bbackoff\b`),
							Weight:  2,
						},
						Advice: "Define retry behavior with backoff for transient upstream failures.",
					},
					{
						Criterion: validator.Criterion{
							Key:     "timeouts",
							Label:   "Timeouts",
							Kind:    validator.KindExists,
							Pattern: regexp.MustCompile(`(?i)\btime(?:d[ -])?outs?\b|\babortcontroller\b|\babort signal\b`),
							Weight:  2,
						},
						Advice: "Set explicit timeouts on outbound calls so a slow dependency cannot stall the request path.",
					},
					{
						Criterion: validator.Criterion{
							Key:     "logging",
							Label:   "Logging guidance",
							Kind:    validator.KindExists,
							Pattern: regexp.MustCompile(`(?i)\blogg(?:ing|er|ed)\b|\bstructured log|\bobservability\b`),
							Weight:  2,
						},
						Advice: "Specify what gets logged on each request and error, and in what structure.",
					},
					{
						Criterion: validator.Criterion{
							Key:     "fallback",
							Label:   "Graceful degradation",
							Kind:    validator.KindExists,
							Pattern: regexp.MustCompile(`(?i)\bfallback\b|\bgraceful(?:ly)? degrad|\bcircuit breaker\b`),
							Weight:  2,
						},
						Advice: "Plan a fallback for each external dependency so partial outages degrade instead of failing the page.",
					},
				},
			},
		},
	}
}
