package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/saleor/configurator-sub007/pkg/engine"
	"github.com/saleor/configurator-sub007/pkg/recovery"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"no error", nil, exitOK},
		{"usage error", fmt.Errorf("%w: bad flag", errUsage), exitInvalidArgs},
		{"missing config file", fmt.Errorf("reading configuration file: %w", fs.ErrNotExist), exitFileMissing},
		{"network failure", engine.NewTransportError("GET channels", nil), exitNetwork},
		{"permission denied", engine.NewPermissionError("POST products", nil), exitPermission},
		{"validation failure", engine.NewValidationError("bad document", nil), exitGeneric},
		{"duplicate key", engine.NewDuplicateError("slug taken", nil), exitGeneric},
		{
			"stage aggregate",
			engine.NewStageAggregateError("Creating Categories",
				[]engine.EntityFailure{{Entity: "kids-shoes", Err: errors.New("parent not found")}},
				nil, recovery.NewGuide()),
			exitGeneric,
		},
		{"unclassified", errors.New("who knows"), exitGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestBuildScope(t *testing.T) {
	scope, err := buildScope([]string{"channels", "shop"}, nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(scope.Include) != 2 {
		t.Errorf("Expected 2 included sections, got %v", scope.Include)
	}

	if _, err := buildScope([]string{"channels"}, []string{"shop"}); !errors.Is(err, errUsage) {
		t.Errorf("Expected usage error for conflicting flags, got %v", err)
	}
	if _, err := buildScope([]string{"bogus"}, nil); !errors.Is(err, errUsage) {
		t.Errorf("Expected usage error for unknown section, got %v", err)
	}
}
