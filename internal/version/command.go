package version

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// AttachCobraVersionCommand adds a `version` subcommand to root.
func AttachCobraVersionCommand(root *cobra.Command) {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(Get())
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), Full())
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print build metadata as JSON")
	root.AddCommand(cmd)
}
