// Package report renders diff summaries for the CLI: a colored table for
// humans, stable JSON for machines, and a one-line summary.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/aymanbagabas/go-udiff"
	"github.com/fatih/color"

	"github.com/saleor/configurator-sub007/pkg/engine"
)

// Format selects the diff output representation.
type Format string

const (
	FormatTable   Format = "table"
	FormatJSON    Format = "json"
	FormatSummary Format = "summary"
)

// ParseFormat resolves a user-supplied format name.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case FormatTable, "":
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatSummary:
		return FormatSummary, nil
	default:
		return "", fmt.Errorf("unknown format %q (table, json, summary)", name)
	}
}

// Render writes the summary to w in the chosen format.
func Render(w io.Writer, summary *engine.Summary, format Format) error {
	switch format {
	case FormatJSON:
		return renderJSON(w, summary)
	case FormatSummary:
		renderSummary(w, summary)
		return nil
	default:
		renderTable(w, summary)
		return nil
	}
}

func renderJSON(w io.Writer, summary *engine.Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

func renderSummary(w io.Writer, summary *engine.Summary) {
	if summary.TotalChanges == 0 {
		fmt.Fprintln(w, "No changes. Remote state matches the configuration.")
		return
	}
	fmt.Fprintf(w, "%d changes: %d to create, %d to update, %d to delete\n",
		summary.TotalChanges, summary.Creates, summary.Updates, summary.Deletes)
}

func renderTable(w io.Writer, summary *engine.Summary) {
	if summary.TotalChanges == 0 {
		fmt.Fprintln(w, "No changes. Remote state matches the configuration.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SECTION\tOPERATION\tKEY\tCHANGES")
	for _, op := range summary.Operations {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			op.Section, colorKind(op.Kind), op.Key, changeSummary(op))
	}
	tw.Flush()

	for _, op := range summary.Operations {
		renderFieldDetail(w, op)
	}

	fmt.Fprintln(w)
	renderSummary(w, summary)
}

func colorKind(kind engine.OperationKind) string {
	switch kind {
	case engine.OperationCreate:
		return color.GreenString(string(kind))
	case engine.OperationDelete:
		return color.RedString(string(kind))
	default:
		return color.YellowString(string(kind))
	}
}

func changeSummary(op engine.Operation) string {
	if op.Kind != engine.OperationUpdate {
		return "-"
	}
	fields := make([]string, len(op.ChangedFields))
	for i, c := range op.ChangedFields {
		fields[i] = c.Field
	}
	return strings.Join(fields, ", ")
}

// renderFieldDetail prints before/after values for updates. Multi-line
// values get a unified diff; scalars a single arrow line.
func renderFieldDetail(w io.Writer, op engine.Operation) {
	if op.Kind != engine.OperationUpdate || len(op.ChangedFields) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s %s/%s\n", color.YellowString("~"), op.Section, op.Key)
	for _, change := range op.ChangedFields {
		before := formatValue(change.Before)
		after := formatValue(change.After)
		if strings.Contains(before, "\n") || strings.Contains(after, "\n") {
			fmt.Fprintf(w, "  %s:\n", change.Field)
			unified := udiff.Unified("remote", "local", ensureNewline(before), ensureNewline(after))
			for _, line := range strings.Split(strings.TrimRight(unified, "\n"), "\n") {
				fmt.Fprintf(w, "    %s\n", line)
			}
			continue
		}
		fmt.Fprintf(w, "  %s: %s → %s\n", change.Field, color.RedString(before), color.GreenString(after))
	}
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "<unset>"
	case string:
		return val
	default:
		encoded, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(encoded)
	}
}

func ensureNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
