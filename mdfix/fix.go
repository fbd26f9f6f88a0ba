package mdfix

import (
	"fmt"
	"os"
	"path/filepath"
)

// RuleChange records how many lines one rule touched in a document.
type RuleChange struct {
	Rule    string `json:"rule"`
	Changes int    `json:"changes"`
}

// Result is the outcome of fixing one document.
type Result struct {
	Source  string       `json:"source"`
	Changed bool         `json:"changed"`
	Rules   []RuleChange `json:"rules,omitempty"`
	Fixed   string       `json:"-"`
}

// Fixer applies a rule table to markdown text.
type Fixer struct {
	rules []Rule
}

// New creates a fixer with the default rule table.
func New() *Fixer {
	return &Fixer{rules: DefaultRules()}
}

// NewWithRules creates a fixer with a custom rule table.
func NewWithRules(rules []Rule) *Fixer {
	return &Fixer{rules: rules}
}

// Rules returns the rule table in application order.
func (f *Fixer) Rules() []Rule {
	return f.rules
}

// Fix applies every rule in order and reports per-rule change counts.
func (f *Fixer) Fix(source, text string) *Result {
	res := &Result{Source: source}
	fixed := text

	for _, rule := range f.rules {
		var n int
		fixed, n = rule.Apply(fixed)
		if n > 0 {
			res.Rules = append(res.Rules, RuleChange{Rule: rule.Name, Changes: n})
		}
	}

	res.Fixed = fixed
	res.Changed = fixed != text
	return res
}

// FixFile fixes one file on disk. When write is set and the content
// changed, the file is replaced atomically (temp file plus rename) with
// its original permissions preserved.
func (f *Fixer) FixFile(path string, write bool) (*Result, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	res := f.Fix(path, string(content))
	if !write || !res.Changed {
		return res, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".fix-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(res.Fixed); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return nil, fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return nil, fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, info.Mode().Perm()); err != nil {
		os.Remove(tmpName)
		return nil, fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return nil, fmt.Errorf("replace %s: %w", path, err)
	}

	return res, nil
}
