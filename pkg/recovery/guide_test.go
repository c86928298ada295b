package recovery

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuide_BuiltinPatterns(t *testing.T) {
	g := NewGuide()
	require.Greater(t, g.Len(), 0)

	tests := []struct {
		name    string
		message string
		wantFix string
	}{
		{
			name:    "missing parent category",
			message: `parent category "kids" not found`,
			wantFix: "Create the referenced parent category first, or remove the parent reference.",
		},
		{
			name:    "permission denied",
			message: "403 Forbidden: permission denied",
			wantFix: "Use an API token with MANAGE permissions for the affected entity type.",
		},
		{
			name:    "network timeout",
			message: "request timed out after 30s",
			wantFix: "Verify the platform URL is reachable and retry.",
		},
		{
			name:    "duplicate slug",
			message: `channel with slug "web" already exists`,
			wantFix: "Rename the conflicting entity or remove the stale remote copy before recreating it.",
		},
		{
			name:    "rate limited",
			message: "429 too many requests",
			wantFix: "Lower the deployment concurrency and retry.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			suggestions := g.Suggestions(tt.message)
			require.NotEmpty(t, suggestions)
			fixes := make([]string, len(suggestions))
			for i, s := range suggestions {
				fixes[i] = s.Fix
			}
			assert.Contains(t, fixes, tt.wantFix)
		})
	}
}

func TestGuide_UnmatchedMessageGetsSingleFallback(t *testing.T) {
	g := NewGuide()
	suggestions := g.Suggestions("something entirely inscrutable happened")
	require.Len(t, suggestions, 1)
	assert.Equal(t, fallbackSuggestion, suggestions[0])
}

func TestGuide_MultipleMatchesInRegistrationOrder(t *testing.T) {
	g := NewEmptyGuide()
	require.NoError(t, g.Register("alpha", func(string) Suggestion { return Suggestion{Fix: "first"} }))
	require.NoError(t, g.Register("beta", func(string) Suggestion { return Suggestion{Fix: "second"} }))

	suggestions := g.Suggestions("alpha and beta both appear")
	require.Len(t, suggestions, 2)
	assert.Equal(t, "first", suggestions[0].Fix)
	assert.Equal(t, "second", suggestions[1].Fix)
}

func TestGuide_RegisterRejectsDuplicateExpression(t *testing.T) {
	g := NewEmptyGuide()
	build := func(string) Suggestion { return Suggestion{Fix: "x"} }
	require.NoError(t, g.Register("same", build))
	err := g.Register("same", build)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
	assert.Equal(t, 1, g.Len())
}

func TestGuide_RegisterRejectsInvalidPattern(t *testing.T) {
	g := NewEmptyGuide()
	err := g.Register("(unclosed", func(string) Suggestion { return Suggestion{} })
	require.Error(t, err)
	assert.Zero(t, g.Len())
}

func TestGuide_RegisterRejectsNilBuilder(t *testing.T) {
	g := NewEmptyGuide()
	require.Error(t, g.Register("fine", nil))
}

func TestGuide_RegistryIsBounded(t *testing.T) {
	g := NewEmptyGuide()
	build := func(string) Suggestion { return Suggestion{Fix: "x"} }
	for i := 0; i < MaxPatterns; i++ {
		require.NoError(t, g.Register(fmt.Sprintf("pattern-%d", i), build))
	}
	err := g.Register("one-too-many", build)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "full")
	assert.Equal(t, MaxPatterns, g.Len())
}

func TestFormatSuggestions(t *testing.T) {
	lines := FormatSuggestions([]Suggestion{
		{Fix: "do this", Check: "that thing", Command: "configurator diff"},
		{Fix: "only a fix"},
	})
	assert.Equal(t, []string{
		"→ Fix: do this",
		"→ Check: that thing",
		"→ Run: configurator diff",
		"→ Fix: only a fix",
	}, lines)
}
