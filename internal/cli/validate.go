package cli

import (
	"encoding/json"
	"fmt"

	"github.com/jaa/spotdiff/internal/config"
	"github.com/jaa/spotdiff/internal/exitcode"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newValidateCommand(app *AppContext) *cobra.Command {
	printConfig := false

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the merged config (user, project, env)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(app)
			if err != nil {
				return withExitCode(exitcode.InvalidConfig, err)
			}

			if err := config.Validate(cfg); err != nil {
				return withExitCode(exitcode.InvalidConfig, err)
			}

			if app.Opts.JSON {
				payload := map[string]any{"valid": true}
				if printConfig {
					payload["config"] = cfg
				}
				encoded, _ := json.Marshal(payload)
				fmt.Fprintln(app.IO.Out, string(encoded))
				return nil
			}

			if printConfig {
				encoded, err := yaml.Marshal(cfg)
				if err != nil {
					return withExitCode(exitcode.RuntimeFailure, fmt.Errorf("encode config: %w", err))
				}
				fmt.Fprint(app.IO.Out, string(encoded))
			}
			fmt.Fprintln(app.IO.Out, "Config is valid.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&printConfig, "print", false, "Print the effective config after merging every layer")
	return cmd
}
