package validator

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Category is a named, ordered group of criteria whose scores are summed
// and reported as a sub-percentage.
type Category struct {
	Key      string
	Label    string
	Criteria []Criterion
}

// Ruleset is the full ordered criteria table for one validation profile.
// Order matters: derived criteria may only reference earlier categories.
type Ruleset struct {
	Categories []Category
}

// Validate checks the ruleset for rows the evaluator cannot score.
func (rs *Ruleset) Validate() error {
	if len(rs.Categories) == 0 {
		return fmt.Errorf("ruleset has no categories")
	}

	seen := make(map[string]bool)
	for _, cat := range rs.Categories {
		if cat.Key == "" {
			return fmt.Errorf("category with empty key")
		}
		if seen[cat.Key] {
			return fmt.Errorf("duplicate category key %q", cat.Key)
		}

		keys := make(map[string]bool)
		for _, c := range cat.Criteria {
			if c.Key == "" {
				return fmt.Errorf("category %s: criterion with empty key", cat.Key)
			}
			if keys[c.Key] {
				return fmt.Errorf("category %s: duplicate criterion key %q", cat.Key, c.Key)
			}
			keys[c.Key] = true

			if c.Weight <= 0 {
				return fmt.Errorf("category %s: criterion %s: weight must be positive, got %v", cat.Key, c.Key, c.Weight)
			}

			switch c.Kind {
			case KindCount:
				if c.Pattern == nil {
					return fmt.Errorf("category %s: criterion %s: count criterion requires a pattern", cat.Key, c.Key)
				}
				if c.MinCount < 1 {
					return fmt.Errorf("category %s: criterion %s: min_count must be at least 1, got %d", cat.Key, c.Key, c.MinCount)
				}
			case KindExists:
				if c.Pattern == nil {
					return fmt.Errorf("category %s: criterion %s: exists criterion requires a pattern", cat.Key, c.Key)
				}
			case KindLength:
				if c.MaxLength < 1 {
					return fmt.Errorf("category %s: criterion %s: max_length must be at least 1, got %d", cat.Key, c.Key, c.MaxLength)
				}
			case KindDerived:
				// Forward references would read a percentage that does not
				// exist yet; only earlier categories are legal sources.
				if !seen[c.Source] {
					return fmt.Errorf("category %s: criterion %s: derived source %q must be an earlier category", cat.Key, c.Key, c.Source)
				}
				if c.Threshold < 0 || c.Threshold > 1 {
					return fmt.Errorf("category %s: criterion %s: threshold must be in [0,1], got %v", cat.Key, c.Key, c.Threshold)
				}
			default:
				return fmt.Errorf("category %s: criterion %s: unknown kind %q", cat.Key, c.Key, c.Kind)
			}
		}

		seen[cat.Key] = true
	}

	return nil
}

// criterionSpec is the YAML representation of one criterion row.
type criterionSpec struct {
	Key       string  `yaml:"key"`
	Label     string  `yaml:"label"`
	Kind      string  `yaml:"kind"`
	Pattern   string  `yaml:"pattern"`
	MinCount  int     `yaml:"min_count"`
	MaxLength int     `yaml:"max_length"`
	Source    string  `yaml:"source"`
	Threshold float64 `yaml:"threshold"`
	Weight    float64 `yaml:"weight"`
}

// rulesetSpec is the YAML representation of a ruleset file.
type rulesetSpec struct {
	Categories []struct {
		Key      string          `yaml:"key"`
		Label    string          `yaml:"label"`
		Criteria []criterionSpec `yaml:"criteria"`
	} `yaml:"categories"`
}

// LoadRuleset reads a YAML criteria table and compiles its patterns.
// The returned ruleset has been validated.
func LoadRuleset(path string) (*Ruleset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ruleset file: %w", err)
	}

	var spec rulesetSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parse ruleset file: %w", err)
	}

	rs := &Ruleset{}
	for _, cs := range spec.Categories {
		cat := Category{Key: cs.Key, Label: cs.Label}
		if cat.Label == "" {
			cat.Label = cs.Key
		}
		for _, row := range cs.Criteria {
			c := Criterion{
				Key:       row.Key,
				Label:     row.Label,
				Kind:      Kind(row.Kind),
				MinCount:  row.MinCount,
				MaxLength: row.MaxLength,
				Source:    row.Source,
				Threshold: row.Threshold,
				Weight:    row.Weight,
			}
			if c.Label == "" {
				c.Label = row.Key
			}
			if row.Pattern != "" {
				re, err := regexp.Compile(row.Pattern)
				if err != nil {
					return nil, fmt.Errorf("category %s: criterion %s: compile pattern: %w", cs.Key, row.Key, err)
				}
				c.Pattern = re
			}
			cat.Criteria = append(cat.Criteria, c)
		}
		rs.Categories = append(rs.Categories, cat)
	}

	if err := rs.Validate(); err != nil {
		return nil, err
	}

	return rs, nil
}

// DefaultRuleset returns the built-in criteria table for SolnAI prompt
// templates: document structure, Next.js stack coverage, and assistant
// compatibility. Weights reflect how strongly each signal predicts a
// template that scaffolds correctly.
func DefaultRuleset() *Ruleset {
	return &Ruleset{
		Categories: []Category{
			{
				Key:   "structure",
				Label: "Structure",
				Criteria: []Criterion{
					{
						Key:     "title",
						Label:   "Top-level title",
						Kind:    KindExists,
						Pattern: regexp.MustCompile(`(?m)^#\s+.+`),
						Weight:  2,
					},
					{
						Key:     "role",
						Label:   "Role definition",
						Kind:    KindExists,
						Pattern: regexp.MustCompile(`(?i)\byou are\b|\bact as\b|\byour (?:role|task) is\b`),
						Weight:  3,
					},
					{
						Key:      "sections",
						Label:    "Section headings",
						Kind:     KindCount,
						Pattern:  regexp.MustCompile(`(?m)^##\s+.+`),
						MinCount: 3,
						Weight:   3,
					},
					{
						Key:     "requirements",
						Label:   "Requirements section",
						Kind:    KindExists,
						Pattern: regexp.MustCompile(`(?mi)^#{2,3}\s+(?:requirements?|instructions?|guidelines?)\b`),
						Weight:  2,
					},
					{
						Key:      "steps",
						Label:    "Step or bullet items",
						Kind:     KindCount,
						Pattern:  regexp.MustCompile(`(?m)^\s*(?:\d+\.|[-*])\s+\S`),
						MinCount: 5,
						Weight:   2,
					},
				},
			},
			{
				Key:   "technical",
				Label: "Technical",
				Criteria: []Criterion{
					{
						Key:      "nextjs",
						Label:    "Next.js references",
						Kind:     KindCount,
						Pattern:  regexp.MustCompile(`(?i)next\.?js`),
						MinCount: 2,
						Weight:   3,
					},
					{
						Key:      "typescript",
						Label:    "TypeScript references",
						Kind:     KindCount,
						Pattern:  regexp.MustCompile(`(?i)typescript|\.tsx?\b`),
						MinCount: 2,
						Weight:   3,
					},
					{
						Key:     "component-model",
						Label:   "Server/client component guidance",
						Kind:    KindExists,
						Pattern: regexp.MustCompile(`(?i)server component|client component|['"]use client['"]`),
						Weight:  3,
					},
					{
						Key:     "api-routes",
						Label:   "API route guidance",
						Kind:    KindExists,
						Pattern: regexp.MustCompile(`(?i)route handler|api route|app/api`),
						Weight:  2,
					},
					{
						Key:     "styling",
						Label:   "Tailwind styling",
						Kind:    KindExists,
						Pattern: regexp.MustCompile(`(?i)tailwind`),
						Weight:  2,
					},
					{
						Key:      "code-examples",
						Label:    "Fenced code examples",
						Kind:     KindCount,
						Pattern:  regexp.MustCompile("(?m)^```"),
						MinCount: 2,
						Weight:   3,
					},
				},
			},
			{
				Key:   "aiCompatibility",
				Label: "AI Compatibility",
				Criteria: []Criterion{
					{
						Key:       "context-budget",
						Label:     "Content within context budget",
						Kind:      KindLength,
						MaxLength: 6000,
						Weight:    3,
					},
					{
						Key:     "step-guidance",
						Label:   "Stepwise guidance",
						Kind:    KindExists,
						Pattern: regexp.MustCompile(`(?i)step[ -]by[ -]step|think through|one step at a time`),
						Weight:  2,
					},
					{
						Key:      "constraints",
						Label:    "Explicit constraints",
						Kind:     KindCount,
						Pattern:  regexp.MustCompile(`(?i)\b(?:do not|don't|never|avoid|must not)\b`),
						MinCount: 2,
						Weight:   2,
					},
					{
						Key:     "output-format",
						Label:   "Output format contract",
						Kind:    KindExists,
						Pattern: regexp.MustCompile(`(?i)output format|respond with|response format|return only`),
						Weight:  2,
					},
					{
						Key:       "clarity",
						Label:     "Clarity (structure proxy)",
						Kind:      KindDerived,
						Source:    "structure",
						Threshold: DefaultDerivedThreshold,
						Weight:    3,
					},
				},
			},
		},
	}
}
