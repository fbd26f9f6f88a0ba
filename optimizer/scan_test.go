package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dislovemartin/prompts/validator"
)

// coveredDocument hits every default pattern at least at its minimum.
const coveredDocument = `# Backend API Template

## Performance

Cache responses and revalidate every 60 seconds. Paginate list
endpoints with cursor-based paging. Use streaming SSR and lazy-load
heavy panels behind Suspense. Load the chart library via dynamic
import to keep bundle size down. Add indexes on hot columns and avoid
N+1 queries.

## Security

Validate every request body with zod schemas and sanitize rendered
output. All admin routes require an authenticated session. Keep API
keys in environment variables. Rate limit public endpoints to 60
requests per minute. Use parameterized queries to block SQL injection.

## Reliability

Wrap route handlers in try/catch and document the error response
shape. Client pages get error boundaries. Retry transient failures
with exponential backoff. Set a 5 second timeout on upstream calls.
Structured logging records each request id. Serve a cached fallback
when the CMS is down.
`

func newDefaultScanner(t *testing.T) *Scanner {
	t.Helper()
	s, err := NewScanner(DefaultPatterns())
	require.NoError(t, err)
	return s
}

func TestDefaultPatterns(t *testing.T) {
	ps := DefaultPatterns()

	require.Len(t, ps.Categories, 3)
	assert.Equal(t, "performance", ps.Categories[0].Key)
	assert.Equal(t, "security", ps.Categories[1].Key)
	assert.Equal(t, "reliability", ps.Categories[2].Key)

	for _, cat := range ps.Categories {
		assert.NotEmpty(t, cat.Patterns, "category %s", cat.Key)
		for _, p := range cat.Patterns {
			assert.NotEmpty(t, p.Advice, "pattern %s/%s", cat.Key, p.Key)
			assert.Positive(t, p.Weight, "pattern %s/%s", cat.Key, p.Key)
		}
	}

	require.NoError(t, ps.Ruleset().Validate())
}

func TestNewScanner_RejectsInvalidTable(t *testing.T) {
	ps := &PatternSet{
		Categories: []Category{
			{
				Key:   "broken",
				Label: "Broken",
				Patterns: []Pattern{
					{Criterion: validator.Criterion{Key: "nameless", Kind: validator.KindExists, Weight: 1}},
				},
			},
		},
	}

	_, err := NewScanner(ps)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validate patterns")
}

func TestScanner_Scan_FullCoverage(t *testing.T) {
	s := newDefaultScanner(t)

	rep := s.Scan("backend.md", coveredDocument)

	require.NotNil(t, rep.Coverage)
	assert.Equal(t, "backend.md", rep.Coverage.Source)
	assert.Equal(t, 100, rep.Coverage.Percent)
	assert.Equal(t, validator.RecommendationApproved, rep.Coverage.Recommendation)
	assert.Empty(t, rep.Advice)
	assert.False(t, rep.CodeChecked)
}

func TestScanner_Scan_EmptyDocumentEmitsAllAdvice(t *testing.T) {
	s := newDefaultScanner(t)

	rep := s.Scan("empty.md", "")

	patternCount := 0
	for _, cat := range DefaultPatterns().Categories {
		patternCount += len(cat.Patterns)
	}
	require.Len(t, rep.Advice, patternCount)

	assert.Equal(t, 0, rep.Coverage.Percent)
	assert.Equal(t, validator.RecommendationRejected, rep.Coverage.Recommendation)

	for i := 1; i < len(rep.Advice); i++ {
		assert.GreaterOrEqual(t, rep.Advice[i-1].Weight, rep.Advice[i].Weight,
			"advice %d before %d", i-1, i)
	}

	// Stable sort keeps table order within a weight tier.
	assert.Equal(t, "caching", rep.Advice[0].Key)
	assert.Equal(t, "performance", rep.Advice[0].Category)
}

func TestScanner_Scan_PartialCoverage(t *testing.T) {
	s := newDefaultScanner(t)

	rep := s.Scan("thin.md", "Paginate results with a cursor.\n")

	keys := make(map[string]bool)
	for _, item := range rep.Advice {
		keys[item.Category+"/"+item.Key] = true
	}
	assert.False(t, keys["performance/pagination"], "passed pattern must not emit advice")
	assert.True(t, keys["security/auth"])
	assert.True(t, keys["reliability/retries"])
}

func TestScanner_Scan_PartialCreditStillAdvises(t *testing.T) {
	s := newDefaultScanner(t)

	// One validation mention out of the required two.
	rep := s.Scan("half.md", "Validate the request body.\n")

	cr := findCriterion(t, rep.Coverage, "security", "input-validation")
	assert.False(t, cr.Passed)
	assert.InDelta(t, 1.5, cr.Score, 1e-9)

	found := false
	for _, item := range rep.Advice {
		if item.Category == "security" && item.Key == "input-validation" {
			found = true
		}
	}
	assert.True(t, found, "failed pattern missing from advice")
}

func findCriterion(t *testing.T, rep *validator.DocumentReport, catKey, key string) validator.CriterionResult {
	t.Helper()
	for _, cat := range rep.Categories {
		if cat.Key != catKey {
			continue
		}
		for _, c := range cat.Criteria {
			if c.Key == key {
				return c
			}
		}
	}
	t.Fatalf("criterion %s/%s not in report", catKey, key)
	return validator.CriterionResult{}
}
