package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCommand(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version/build metadata",
		Run: func(cmd *cobra.Command, args []string) {
			if !app.Opts.JSON {
				printVersion(app)
				return
			}
			encoded, _ := json.Marshal(map[string]string{
				"version":    valueOr(app.Build.Version, "dev"),
				"commit":     valueOr(app.Build.Commit, "unknown"),
				"build_date": valueOr(app.Build.Date, "unknown"),
			})
			fmt.Fprintln(app.IO.Out, string(encoded))
		},
	}
}

func valueOr(value string, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
