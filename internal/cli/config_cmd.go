package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-confluence/internal/runtimeconfig"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}
	cmd.AddCommand(newConfigDefaultsCmd())
	return cmd
}

func newConfigDefaultsCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "defaults",
		Short:       "List configuration keys, defaults and environment variables",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipContainer: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, opt := range runtimeconfig.Options() {
				if _, err := fmt.Fprintf(out, "%s = %v\n    %s (%s)\n", opt.Key, opt.Default, opt.Comment, runtimeconfig.EnvName(opt.Key)); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
