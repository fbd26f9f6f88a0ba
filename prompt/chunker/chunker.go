// Package chunker splits template bodies into token-budgeted chunks for
// dataset assembly.
package chunker

import (
	"fmt"
	"strings"

	"github.com/dislovemartin/prompts/prompt"
)

// charsPerToken is the approximate average characters per token for GPT
// tokenizers.
const charsPerToken = 4

// Config holds chunking configuration.
type Config struct {
	// TargetTokens is the ideal chunk size in tokens.
	TargetTokens int

	// MaxTokens is the maximum chunk size.
	MaxTokens int

	// MinTokens is the minimum chunk size (smaller chunks are merged).
	MinTokens int
}

// DefaultConfig returns sensible chunking defaults.
func DefaultConfig() Config {
	return Config{
		TargetTokens: 1000,
		MaxTokens:    1500,
		MinTokens:    200,
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if c.MinTokens <= 0 {
		return fmt.Errorf("MinTokens must be positive, got %d", c.MinTokens)
	}
	if c.TargetTokens <= 0 {
		return fmt.Errorf("TargetTokens must be positive, got %d", c.TargetTokens)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("MaxTokens must be positive, got %d", c.MaxTokens)
	}
	if c.MinTokens >= c.TargetTokens {
		return fmt.Errorf("MinTokens (%d) must be less than TargetTokens (%d)", c.MinTokens, c.TargetTokens)
	}
	if c.TargetTokens > c.MaxTokens {
		return fmt.Errorf("TargetTokens (%d) must not exceed MaxTokens (%d)", c.TargetTokens, c.MaxTokens)
	}
	return nil
}

// Chunker splits template bodies into chunks.
type Chunker struct {
	config Config
}

// New creates a new Chunker with the given configuration.
// A zero TargetTokens selects the defaults.
func New(cfg Config) (*Chunker, error) {
	if cfg.TargetTokens == 0 {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Chunker{config: cfg}, nil
}

// MustNew creates a new Chunker, panicking on invalid config.
// Use for known-good configurations.
func MustNew(cfg Config) *Chunker {
	c, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return c
}

// NewDefault creates a Chunker with default configuration.
func NewDefault() *Chunker {
	return MustNew(DefaultConfig())
}

// Chunk splits a template body into chunks. Sections are packed
// greedily up to the target size; a section never splits mid code
// fence.
func (c *Chunker) Chunk(parentID string, content string) []prompt.Chunk {
	sections := parseSections(content)

	var chunks []prompt.Chunk
	current := prompt.Chunk{ParentID: parentID}

	for _, sec := range sections {
		sectionTokens := c.estimateTokens(sec.content)

		// Oversized sections get their own split, after flushing
		if sectionTokens > c.config.MaxTokens {
			if c.estimateTokens(current.Content) > 0 {
				chunks = append(chunks, c.finalizeChunk(current, len(chunks)))
				current = prompt.Chunk{ParentID: parentID}
			}
			chunks = append(chunks, c.splitLargeSection(parentID, sec, len(chunks))...)
			continue
		}

		currentTokens := c.estimateTokens(current.Content)
		if currentTokens > 0 && currentTokens+sectionTokens > c.config.TargetTokens {
			chunks = append(chunks, c.finalizeChunk(current, len(chunks)))
			current = prompt.Chunk{ParentID: parentID}
		}

		if current.Section == "" {
			current.Section = sec.heading
		}
		if current.Content != "" {
			current.Content += "\n\n"
		}
		current.Content += sec.content
	}

	if c.estimateTokens(current.Content) > 0 {
		chunks = append(chunks, c.finalizeChunk(current, len(chunks)))
	}

	return c.mergeSmallChunks(chunks)
}

// section is one heading-delimited block of the body.
type section struct {
	heading string
	content string
}

// parseSections splits markdown at headings, treating code fences as
// opaque so a fenced ## line never starts a section.
func parseSections(content string) []section {
	var sections []section
	var current section
	inCodeBlock := false

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inCodeBlock = !inCodeBlock
		}

		if !inCodeBlock && strings.HasPrefix(trimmed, "#") {
			if strings.TrimSpace(current.content) != "" {
				sections = append(sections, current)
			}
			current = section{
				heading: strings.TrimSpace(strings.TrimLeft(trimmed, "#")),
				content: line,
			}
			continue
		}

		if current.content != "" {
			current.content += "\n"
		}
		current.content += line
	}

	if strings.TrimSpace(current.content) != "" {
		sections = append(sections, current)
	}

	return sections
}

// splitLargeSection packs an oversized section paragraph by paragraph.
// A paragraph that alone exceeds the maximum is hard-split by runes.
func (c *Chunker) splitLargeSection(parentID string, sec section, startIndex int) []prompt.Chunk {
	var chunks []prompt.Chunk
	current := prompt.Chunk{ParentID: parentID, Section: sec.heading}

	for _, para := range splitParagraphs(sec.content) {
		paraTokens := c.estimateTokens(para)

		if paraTokens > c.config.MaxTokens {
			if c.estimateTokens(current.Content) > 0 {
				chunks = append(chunks, c.finalizeChunk(current, startIndex+len(chunks)))
				current = prompt.Chunk{ParentID: parentID, Section: sec.heading}
			}
			chunks = append(chunks, c.hardSplit(parentID, sec.heading, para, startIndex+len(chunks))...)
			continue
		}

		currentTokens := c.estimateTokens(current.Content)
		if currentTokens > 0 && currentTokens+paraTokens > c.config.TargetTokens {
			chunks = append(chunks, c.finalizeChunk(current, startIndex+len(chunks)))
			current = prompt.Chunk{ParentID: parentID, Section: sec.heading}
		}

		if current.Content != "" {
			current.Content += "\n\n"
		}
		current.Content += para
	}

	if c.estimateTokens(current.Content) > 0 {
		chunks = append(chunks, c.finalizeChunk(current, startIndex+len(chunks)))
	}

	return chunks
}

// splitParagraphs splits content on blank lines, keeping code blocks
// whole.
func splitParagraphs(content string) []string {
	var paragraphs []string
	var current strings.Builder
	inCodeBlock := false

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inCodeBlock = !inCodeBlock
		}

		if !inCodeBlock && trimmed == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, strings.TrimSpace(current.String()))
				current.Reset()
			}
			continue
		}

		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}

	if current.Len() > 0 {
		paragraphs = append(paragraphs, strings.TrimSpace(current.String()))
	}

	return paragraphs
}

// hardSplit cuts content at rune boundaries when no natural break
// exists, so MaxTokens is never exceeded.
func (c *Chunker) hardSplit(parentID, sectionName, content string, startIndex int) []prompt.Chunk {
	var chunks []prompt.Chunk
	maxChars := c.config.MaxTokens * charsPerToken

	runes := []rune(content)
	for i := 0; i < len(runes); i += maxChars {
		end := i + maxChars
		if end > len(runes) {
			end = len(runes)
		}

		chunkContent := string(runes[i:end])
		chunks = append(chunks, prompt.Chunk{
			ParentID:   parentID,
			Section:    sectionName,
			Index:      startIndex + len(chunks),
			Content:    chunkContent,
			TokenCount: c.estimateTokens(chunkContent),
		})
	}

	return chunks
}

// mergeSmallChunks folds below-minimum chunks into their successor when
// the result stays under the maximum, then re-indexes.
func (c *Chunker) mergeSmallChunks(chunks []prompt.Chunk) []prompt.Chunk {
	if len(chunks) <= 1 {
		return chunks
	}

	var result []prompt.Chunk
	for i := 0; i < len(chunks); i++ {
		chunk := chunks[i]

		if chunk.TokenCount < c.config.MinTokens && i < len(chunks)-1 {
			combined := chunk.Content + "\n\n" + chunks[i+1].Content
			combinedTokens := c.estimateTokens(combined)

			if combinedTokens <= c.config.MaxTokens {
				chunks[i+1] = prompt.Chunk{
					ParentID:   chunk.ParentID,
					Section:    chunk.Section,
					Content:    combined,
					TokenCount: combinedTokens,
				}
				continue
			}
		}

		result = append(result, chunk)
	}

	for i := range result {
		result[i].Index = i
	}

	return result
}

// finalizeChunk sets the index and token count for a chunk.
func (c *Chunker) finalizeChunk(chunk prompt.Chunk, index int) prompt.Chunk {
	chunk.Index = index
	chunk.TokenCount = c.estimateTokens(chunk.Content)
	return chunk
}

// estimateTokens estimates token count using the chars/token heuristic.
func (c *Chunker) estimateTokens(content string) int {
	if content == "" {
		return 0
	}
	return (len(content) + charsPerToken - 1) / charsPerToken
}
