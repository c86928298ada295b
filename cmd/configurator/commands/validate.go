package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saleor/configurator-sub007/pkg/schema"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration document without contacting the platform",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := schema.Load(configPath)
			if err != nil {
				return err
			}
			total := 0
			for _, section := range schema.AllSections {
				total += len(cfg.Entities(section))
			}
			if cfg.Shop != nil {
				total++
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is valid: %d entities.\n", configPath, total)
			return nil
		},
	}
}
