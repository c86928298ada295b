package engine

import (
	"fmt"
	"strings"

	"github.com/saleor/configurator-sub007/pkg/recovery"
)

// EntityFailure is one failed entity within a stage.
type EntityFailure struct {
	Entity string
	Err    error
}

// StageAggregateError is the terminal error of a deploy whose stage
// contained failures. It is immutable once constructed; accessors return
// copies.
type StageAggregateError struct {
	stageName string
	successes []string
	failures  []EntityFailure
	guide     *recovery.Guide
}

// NewStageAggregateError builds the aggregate for one failed stage. The
// guide renders per-error recovery suggestions in UserMessage; a nil
// guide falls back to the builtin one.
func NewStageAggregateError(stageName string, failures []EntityFailure, successes []string, guide *recovery.Guide) *StageAggregateError {
	if guide == nil {
		guide = recovery.NewGuide()
	}
	return &StageAggregateError{
		stageName: stageName,
		successes: append([]string(nil), successes...),
		failures:  append([]EntityFailure(nil), failures...),
		guide:     guide,
	}
}

func (e *StageAggregateError) Error() string {
	return fmt.Sprintf("%s - %d of %d failed", e.stageName, len(e.failures), e.total())
}

// StageName returns the failed stage's name.
func (e *StageAggregateError) StageName() string { return e.stageName }

// Successes returns the names of the entities that succeeded before the
// stage was declared failed.
func (e *StageAggregateError) Successes() []string {
	return append([]string(nil), e.successes...)
}

// Failures returns the per-entity failures.
func (e *StageAggregateError) Failures() []EntityFailure {
	return append([]EntityFailure(nil), e.failures...)
}

func (e *StageAggregateError) total() int {
	return len(e.successes) + len(e.failures)
}

// UserMessage renders the full deterministic report: header, successes,
// per-entity failures with recovery suggestions, and the fixed general
// guidance block.
func (e *StageAggregateError) UserMessage() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s - %d of %d failed\n", e.stageName, len(e.failures), e.total())

	if len(e.successes) > 0 {
		b.WriteString("\nSucceeded:\n")
		for _, name := range e.successes {
			fmt.Fprintf(&b, "  ✓ %s\n", name)
		}
	}

	b.WriteString("\nFailed:\n")
	for _, f := range e.failures {
		fmt.Fprintf(&b, "  ✗ %s\n", f.Entity)
		fmt.Fprintf(&b, "    %s\n", errorText(f.Err))
		for _, line := range recovery.FormatSuggestions(e.guide.Suggestions(errorText(f.Err))) {
			fmt.Fprintf(&b, "    %s\n", line)
		}
	}

	b.WriteString("\nSuggestions:\n")
	b.WriteString("  → Review the errors above and fix the configuration\n")
	b.WriteString("  → Re-run the deployment after fixing the issues\n")
	b.WriteString("  → Use --include/--exclude to deploy a subset of sections\n")
	b.WriteString("  → Run 'configurator diff' to see the remaining changes\n")

	return b.String()
}

func errorText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
