package events

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dislovemartin/prompts/validator"
)

func TestConnect_EmptyURLDisablesPublishing(t *testing.T) {
	p, err := Connect("", "prompts", slog.Default())
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestPublisher_NilIsSafe(t *testing.T) {
	var p *Publisher

	rep := &validator.DocumentReport{
		Source:         "prompts/example.md",
		Percent:        80,
		Recommendation: validator.RecommendationMinor,
	}
	assert.NoError(t, p.Publish(rep))
	p.Close()
}
