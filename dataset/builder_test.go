package dataset

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dislovemartin/prompts/prompt"
	"github.com/dislovemartin/prompts/prompt/chunker"
)

// goodBody scores well against the built-in ruleset: role, context,
// structured sections, steps, and technology references.
const goodBody = `# Backend API Template

## Role

You are an expert Next.js developer building the SolnAI application.

## Context

The project uses Next.js with TypeScript, Prisma, and Tailwind CSS.
You must follow the existing component structure and the API route
conventions. Use TypeScript interfaces for request and response types.

## Requirements

- Build the API route with Next.js route handlers
- Validate the request body with TypeScript types
- Use Prisma for database access
- Return typed JSON responses
- Handle errors with proper status codes

## Constraints

Do not introduce new dependencies. You should keep handlers under 100
lines and must reuse the shared Prisma client.

## Example

` + "```ts" + `
export async function GET(request: Request) {
  return Response.json({ ok: true });
}
` + "```" + `

## Output Format

Return complete files with their paths.
`

func goodTemplate() *prompt.Template {
	return &prompt.Template{
		ID:       "tpl.backend-api.abc123def456",
		Path:     "prompts/backend-api.md",
		Filename: "backend-api.md",
		Frontmatter: map[string]any{
			"title":    "Backend API",
			"category": "backend",
			"summary":  "Scaffold a typed API route.",
		},
		Body: goodBody,
	}
}

func TestBuilder_Build(t *testing.T) {
	b := NewBuilder(Options{
		SystemPrompt:  "You are a helpful assistant.",
		MinScore:      10,
		ValidationPct: 10,
	})

	records := b.Build(goodTemplate())
	require.NotEmpty(t, records)

	rec := records[0]
	require.Len(t, rec.Messages, 3)
	assert.Equal(t, "system", rec.Messages[0].Role)
	assert.Equal(t, "You are a helpful assistant.", rec.Messages[0].Content)
	assert.Equal(t, "user", rec.Messages[1].Role)
	assert.Contains(t, rec.Messages[1].Content, "Backend API")
	assert.Contains(t, rec.Messages[1].Content, "backend")
	assert.Contains(t, rec.Messages[1].Content, "Scaffold a typed API route.")
	assert.Equal(t, "assistant", rec.Messages[2].Role)
}

func TestBuilder_Build_SkipsLowScore(t *testing.T) {
	b := NewBuilder(Options{MinScore: 90})

	tpl := &prompt.Template{
		ID:       "tpl.empty.000000000000",
		Path:     "prompts/empty.md",
		Filename: "empty.md",
		Body:     "nothing useful here",
	}
	assert.Empty(t, b.Build(tpl))
}

func TestBuilder_Build_ChunksLongBodies(t *testing.T) {
	ch, err := chunker.New(chunker.Config{TargetTokens: 100, MaxTokens: 150, MinTokens: 10})
	require.NoError(t, err)

	b := NewBuilder(Options{MinScore: 0, Chunker: ch})

	tpl := goodTemplate()
	tpl.Body = goodBody + "\n\n## Extra\n\n" + strings.Repeat("More detail on the approach. ", 80)

	records := b.Build(tpl)
	require.Greater(t, len(records), 1)

	seen := map[string]bool{}
	for _, rec := range records {
		assert.Contains(t, rec.ID, ".part")
		assert.False(t, seen[rec.ID], "duplicate record ID %s", rec.ID)
		seen[rec.ID] = true
		require.Len(t, rec.Messages, 3)
		assert.NotEmpty(t, rec.Messages[2].Content)
	}
}

func TestBuilder_SplitDeterministic(t *testing.T) {
	b := NewBuilder(Options{ValidationPct: 20})

	first := b.split("tpl.example.abc")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, b.split("tpl.example.abc"))
	}
}

func TestBuilder_SplitShare(t *testing.T) {
	b := NewBuilder(Options{ValidationPct: 30})

	validation := 0
	const total = 1000
	for i := 0; i < total; i++ {
		if b.split(fmt.Sprintf("tpl.example.%04d", i)) == SplitValidation {
			validation++
		}
	}
	// Hash routing should land near the configured share
	assert.InDelta(t, 300, validation, 120)
}

func TestBuilder_SplitDisabled(t *testing.T) {
	b := NewBuilder(Options{ValidationPct: 0})
	assert.Equal(t, SplitTrain, b.split("anything"))
}
