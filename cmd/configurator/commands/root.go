// Package commands implements the configurator CLI surface.
package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/saleor/configurator-sub007/pkg/engine"
	"github.com/saleor/configurator-sub007/pkg/remote"
	"github.com/saleor/configurator-sub007/pkg/schema"
	"github.com/saleor/configurator-sub007/pkg/telemetry"
)

var (
	// Global flags
	configPath  string
	apiURL      string
	apiToken    string
	logLevel    string
	historyPath string
)

// Execute runs the root command and maps the outcome to an exit code.
func Execute(ctx context.Context, version, commit, buildDate string) int {
	rootCmd := newRootCommand(version, commit, buildDate)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitCode(err)
	}
	return exitOK
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "configurator",
		Short: "Declarative configuration for your commerce platform",
		Long: `Configurator keeps a commerce platform's settings, channels, catalog
structure, and logistics entities in sync with a declarative YAML document.

Describe the desired state once, preview the required changes with 'diff',
and apply them in dependency order with 'deploy'.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yml", "desired-state document path")
	rootCmd.PersistentFlags().StringVar(&apiURL, "url", os.Getenv("CONFIGURATOR_URL"), "platform API base URL")
	rootCmd.PersistentFlags().StringVar(&apiToken, "token", os.Getenv("CONFIGURATOR_TOKEN"), "platform API token")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&historyPath, "history", defaultHistoryPath(), "deploy history database path (empty disables history)")

	rootCmd.AddCommand(newDiffCommand())
	rootCmd.AddCommand(newDeployCommand())
	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newHistoryCommand())

	return rootCmd
}

func defaultHistoryPath() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return dir + "/configurator/history.db"
	}
	return ".configurator-history.db"
}

func newLogger() zerolog.Logger {
	return telemetry.NewLogger(telemetry.LoggerConfig{Level: logLevel, Console: true})
}

// newRegistry wires the REST repositories against the configured
// platform endpoint.
func newRegistry() (*engine.Registry, error) {
	if apiURL == "" {
		return nil, fmt.Errorf("%w: platform URL is required (--url or CONFIGURATOR_URL)", errUsage)
	}
	client, err := remote.NewClient(remote.ClientConfig{BaseURL: apiURL, Token: apiToken})
	if err != nil {
		return nil, err
	}
	return remote.NewRegistry(client), nil
}

// buildScope turns the include/exclude flags into a diff scope. Supplying
// both is a usage error.
func buildScope(include, exclude []string) (schema.Scope, error) {
	if len(include) > 0 && len(exclude) > 0 {
		return schema.Scope{}, fmt.Errorf("%w: --include and --exclude are mutually exclusive", errUsage)
	}
	inc, err := schema.ParseSections(include)
	if err != nil {
		return schema.Scope{}, fmt.Errorf("%w: %v", errUsage, err)
	}
	exc, err := schema.ParseSections(exclude)
	if err != nil {
		return schema.Scope{}, fmt.Errorf("%w: %v", errUsage, err)
	}
	return schema.Scope{Include: inc, Exclude: exc}, nil
}
