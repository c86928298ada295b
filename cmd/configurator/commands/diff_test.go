package commands

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/saleor/configurator-sub007/pkg/remote"
	"github.com/saleor/configurator-sub007/pkg/report"
	"github.com/saleor/configurator-sub007/pkg/schema"
)

// emptyPlatform serves an empty remote state: no shop overrides, no
// entities in any section.
func emptyPlatform(t *testing.T) *remote.Fetcher {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/shop" {
			_, _ = w.Write([]byte(`{}`))
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	client, err := remote.NewClient(remote.ClientConfig{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	return remote.NewFetcher(remote.NewRegistry(client), zerolog.Nop())
}

func withConfigFile(t *testing.T, document string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(document), 0o644); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	previous := configPath
	configPath = path
	t.Cleanup(func() { configPath = previous })
}

func TestRunDiff_WritesToGivenWriter(t *testing.T) {
	withConfigFile(t, `
channels:
  - name: Web Store
    slug: web-store
    currencyCode: USD
    defaultCountry: US
`)
	fetcher := emptyPlatform(t)

	var buf bytes.Buffer
	err := runDiff(context.Background(), &buf, zerolog.Nop(), fetcher, schema.Scope{}, report.FormatSummary)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if got := buf.String(); !strings.Contains(got, "1 changes: 1 to create") {
		t.Errorf("Expected the summary on the writer, got %q", got)
	}
}

func TestRunDiff_CleanRunWithNoChanges(t *testing.T) {
	withConfigFile(t, "")
	fetcher := emptyPlatform(t)

	var buf bytes.Buffer
	err := runDiff(context.Background(), &buf, zerolog.Nop(), fetcher, schema.Scope{}, report.FormatTable)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !strings.Contains(buf.String(), "No changes.") {
		t.Errorf("Expected the no-changes notice, got %q", buf.String())
	}
}

func TestDeployCommand_RejectsNonPositiveConcurrency(t *testing.T) {
	for _, value := range []string{"0", "-1"} {
		cmd := newDeployCommand()
		cmd.SetOut(io.Discard)
		cmd.SetErr(io.Discard)
		cmd.SetArgs([]string{"--concurrency", value})

		err := cmd.ExecuteContext(context.Background())
		if !errors.Is(err, errUsage) {
			t.Errorf("Expected usage error for --concurrency %s, got %v", value, err)
		}
	}
}
