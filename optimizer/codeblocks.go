package optimizer

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// CodeBlock is one fenced code block lifted out of a markdown document.
type CodeBlock struct {
	// Language is the fence info string's first word, lowercased.
	Language string
	// Content is the block body without the fence lines.
	Content string
	// Line is the 1-based line number of the opening fence.
	Line int
}

// CodeIssue is a parse problem found inside a fenced code block.
type CodeIssue struct {
	Line     int    `json:"line"`
	Language string `json:"language"`
	Message  string `json:"message"`
}

// ExtractCodeBlocks returns every backtick-fenced block in the document
// with its language tag and position. An unterminated fence runs to the
// end of the document.
func ExtractCodeBlocks(text string) []CodeBlock {
	var blocks []CodeBlock
	lines := strings.Split(text, "\n")

	inFence := false
	var current CodeBlock
	var body []string

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "```") {
			if inFence {
				body = append(body, line)
			}
			continue
		}

		if inFence {
			current.Content = strings.Join(body, "\n")
			blocks = append(blocks, current)
			inFence = false
			body = nil
			continue
		}

		inFence = true
		current = CodeBlock{Line: i + 1}
		info := strings.Fields(strings.TrimPrefix(trimmed, "```"))
		if len(info) > 0 {
			current.Language = strings.ToLower(info[0])
		}
	}

	if inFence {
		current.Content = strings.Join(body, "\n")
		blocks = append(blocks, current)
	}

	return blocks
}

// CheckCodeBlocks parses each JavaScript, TypeScript, or TSX fenced
// block in the document and reports the blocks whose syntax tree
// contains error or missing nodes. Blocks in other languages are
// skipped.
func CheckCodeBlocks(ctx context.Context, text string) ([]CodeIssue, error) {
	var issues []CodeIssue

	for _, block := range ExtractCodeBlocks(text) {
		lang := treeSitterLanguage(block.Language)
		if lang == nil {
			continue
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		blockIssues, err := parseBlock(ctx, block, lang)
		if err != nil {
			return nil, fmt.Errorf("parse code block at line %d: %w", block.Line, err)
		}
		issues = append(issues, blockIssues...)
	}

	return issues, nil
}

func parseBlock(ctx context.Context, block CodeBlock, lang *sitter.Language) ([]CodeIssue, error) {
	source := []byte(block.Content)

	parser := sitter.NewParser()
	parser.SetLanguage(lang)
	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return nil, nil
	}

	var issues []CodeIssue
	cursor := sitter.NewTreeCursor(root)
	defer cursor.Close()
	collectErrors(cursor, source, block, &issues)
	return issues, nil
}

// collectErrors walks the syntax tree recording error and missing
// nodes. Children of an error node are not descended into, so each
// broken region reports once.
func collectErrors(cursor *sitter.TreeCursor, source []byte, block CodeBlock, issues *[]CodeIssue) {
	node := cursor.CurrentNode()
	// Block content starts on the line after the opening fence.
	line := block.Line + 1 + int(node.StartPoint().Row)

	switch {
	case node.IsMissing():
		*issues = append(*issues, CodeIssue{
			Line:     line,
			Language: block.Language,
			Message:  fmt.Sprintf("missing %s", node.Type()),
		})
	case node.Type() == "ERROR":
		*issues = append(*issues, CodeIssue{
			Line:     line,
			Language: block.Language,
			Message:  fmt.Sprintf("syntax error near %q", snippet(node.Content(source))),
		})
		return
	}

	if cursor.GoToFirstChild() {
		for {
			collectErrors(cursor, source, block, issues)
			if !cursor.GoToNextSibling() {
				break
			}
		}
		cursor.GoToParent()
	}
}

// snippet clips node text to a single short line for the issue message.
func snippet(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	const limit = 40
	runes := []rune(text)
	if len(runes) > limit {
		return string(runes[:limit]) + "..."
	}
	return text
}

// treeSitterLanguage maps a fence language tag to its grammar, or nil
// for tags the checker does not parse.
func treeSitterLanguage(tag string) *sitter.Language {
	switch tag {
	case "tsx":
		return tsx.GetLanguage()
	case "ts", "mts", "cts", "typescript":
		return typescript.GetLanguage()
	case "js", "jsx", "mjs", "cjs", "javascript":
		return javascript.GetLanguage()
	}
	return nil
}
