// Package dataset assembles chat-format fine-tuning records from
// template documents. Record splits are assigned by hashing record IDs,
// so repeated runs over the same corpus produce the same dataset.
package dataset

import (
	"fmt"
	"hash/fnv"
	"log/slog"
	"strings"

	"github.com/dislovemartin/prompts/prompt"
	"github.com/dislovemartin/prompts/prompt/chunker"
	"github.com/dislovemartin/prompts/validator"
)

// Splits a record can be routed to.
const (
	SplitTrain      = "train"
	SplitValidation = "validation"
)

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Record is one fine-tuning example in chat format.
type Record struct {
	ID       string    `json:"id"`
	Split    string    `json:"split"`
	Messages []Message `json:"messages"`
}

// Options configure a Builder.
type Options struct {
	// SystemPrompt becomes the system turn of every record.
	SystemPrompt string
	// MinScore drops templates whose validation percentage is below it.
	MinScore int
	// ValidationPct is the share of records (0-100) routed to the
	// validation split.
	ValidationPct int
	// Chunker splits oversized bodies. Defaults to the corpus chunker.
	Chunker *chunker.Chunker
	// Ruleset scores templates for the MinScore gate. Defaults to the
	// built-in ruleset.
	Ruleset *validator.Ruleset
	Logger  *slog.Logger
}

// Builder converts templates into dataset records.
type Builder struct {
	systemPrompt  string
	minScore      int
	validationPct int
	chunker       *chunker.Chunker
	ruleset       *validator.Ruleset
	logger        *slog.Logger
}

// NewBuilder creates a builder with the given options.
func NewBuilder(opts Options) *Builder {
	if opts.Chunker == nil {
		opts.Chunker = chunker.NewDefault()
	}
	if opts.Ruleset == nil {
		opts.Ruleset = validator.DefaultRuleset()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Builder{
		systemPrompt:  opts.SystemPrompt,
		minScore:      opts.MinScore,
		validationPct: opts.ValidationPct,
		chunker:       opts.Chunker,
		ruleset:       opts.Ruleset,
		logger:        logger,
	}
}

// Build converts one template into records. Templates scoring below the
// minimum validation percentage yield no records.
func (b *Builder) Build(tpl *prompt.Template) []Record {
	rep := validator.BuildReport(tpl.Path, tpl.Body, b.ruleset)
	if rep.Percent < b.minScore {
		b.logger.Info("skipping low-scoring template",
			"path", tpl.Path, "percent", rep.Percent, "min_score", b.minScore)
		return nil
	}

	userTurn := b.userTurn(tpl)

	chunks := b.chunker.Chunk(tpl.ID, tpl.Body)
	if len(chunks) <= 1 {
		return []Record{b.record(tpl.ID, userTurn, tpl.Body)}
	}

	records := make([]Record, 0, len(chunks))
	for _, ch := range chunks {
		id := fmt.Sprintf("%s.part%02d", tpl.ID, ch.Index+1)
		user := userTurn
		if ch.Section != "" {
			user = fmt.Sprintf("%s (section: %s)", userTurn, ch.Section)
		}
		records = append(records, b.record(id, user, ch.Content))
	}
	return records
}

// record assembles one chat example and assigns its split.
func (b *Builder) record(id, userTurn, body string) Record {
	return Record{
		ID:    id,
		Split: b.split(id),
		Messages: []Message{
			{Role: "system", Content: b.systemPrompt},
			{Role: "user", Content: userTurn},
			{Role: "assistant", Content: body},
		},
	}
}

// userTurn derives the user request from template metadata.
func (b *Builder) userTurn(tpl *prompt.Template) string {
	var sb strings.Builder
	sb.WriteString("Write the ")
	sb.WriteString(tpl.Title())
	sb.WriteString(" template")

	if meta := tpl.FrontmatterMeta(); meta != nil {
		if meta.Category != "" {
			fmt.Fprintf(&sb, " for the %s category", meta.Category)
		}
		if meta.Summary != "" {
			sb.WriteString(". ")
			sb.WriteString(meta.Summary)
		}
	}
	sb.WriteString(".")
	return sb.String()
}

// split routes a record ID deterministically: FNV-1a mod 100 under the
// validation share goes to validation, the rest to train.
func (b *Builder) split(id string) string {
	if b.validationPct <= 0 {
		return SplitTrain
	}
	h := fnv.New32a()
	h.Write([]byte(id))
	if int(h.Sum32()%100) < b.validationPct {
		return SplitValidation
	}
	return SplitTrain
}
