// Package recovery maps raw error text onto actionable suggestions for
// the user-facing failure report. Patterns are tested in registration
// order and every match contributes a suggestion; a message that matches
// nothing gets exactly one generic fallback.
package recovery

import (
	"fmt"
	"regexp"
	"sync"
)

// MaxPatterns bounds the registry size so runtime registration cannot
// grow memory without limit.
const MaxPatterns = 64

// Suggestion is one actionable hint. Fix is always present; Check and
// Command are optional refinements.
type Suggestion struct {
	Fix     string
	Check   string
	Command string
}

// Builder produces a suggestion from the matched error message.
type Builder func(errorMessage string) Suggestion

type pattern struct {
	re    *regexp.Regexp
	build Builder
}

// Guide is a registry of error patterns. It is an explicit value passed
// to whatever renders aggregate errors, not a process-wide singleton, so
// tests can construct isolated registries.
type Guide struct {
	mu       sync.RWMutex
	patterns []pattern
}

// NewGuide returns a guide preloaded with the builtin patterns.
func NewGuide() *Guide {
	g := &Guide{}
	for _, b := range builtinPatterns() {
		if err := g.Register(b.expr, b.build); err != nil {
			panic(fmt.Sprintf("builtin recovery pattern %q: %v", b.expr, err))
		}
	}
	return g
}

// NewEmptyGuide returns a guide with no patterns registered.
func NewEmptyGuide() *Guide { return &Guide{} }

// Register adds a custom pattern. A pattern whose expression exactly
// duplicates an already-registered one is rejected, as is any
// registration beyond MaxPatterns.
func (g *Guide) Register(expr string, build Builder) error {
	if build == nil {
		return fmt.Errorf("suggestion builder is required")
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return fmt.Errorf("invalid recovery pattern %q: %w", expr, err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.patterns) >= MaxPatterns {
		return fmt.Errorf("recovery pattern registry is full (max %d)", MaxPatterns)
	}
	for _, p := range g.patterns {
		if p.re.String() == re.String() {
			return fmt.Errorf("recovery pattern %q is already registered", expr)
		}
	}
	g.patterns = append(g.patterns, pattern{re: re, build: build})
	return nil
}

// Len returns the number of registered patterns.
func (g *Guide) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.patterns)
}

// Suggestions returns one suggestion per matching pattern, in
// registration order. When nothing matches, a single generic fallback is
// returned.
func (g *Guide) Suggestions(errorMessage string) []Suggestion {
	g.mu.RLock()
	defer g.mu.RUnlock()

	suggestions := make([]Suggestion, 0, 2)
	for _, p := range g.patterns {
		if p.re.MatchString(errorMessage) {
			suggestions = append(suggestions, p.build(errorMessage))
		}
	}
	if len(suggestions) == 0 {
		suggestions = append(suggestions, fallbackSuggestion)
	}
	return suggestions
}

// FormatSuggestions renders each present field of every suggestion as a
// prefixed line.
func FormatSuggestions(suggestions []Suggestion) []string {
	lines := make([]string, 0, len(suggestions)*3)
	for _, s := range suggestions {
		if s.Fix != "" {
			lines = append(lines, "→ Fix: "+s.Fix)
		}
		if s.Check != "" {
			lines = append(lines, "→ Check: "+s.Check)
		}
		if s.Command != "" {
			lines = append(lines, "→ Run: "+s.Command)
		}
	}
	return lines
}
