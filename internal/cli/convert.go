package cli

import (
	"github.com/goliatone/go-command/dispatcher"
	"github.com/spf13/cobra"

	publishcmd "github.com/goliatone/go-confluence/internal/commands/publish"
	"github.com/goliatone/go-confluence/internal/di"
)

func newConvertCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Convert a markdown file into wiki markup",
		Long:  "Convert a markdown file into wiki markup. The markup goes to stdout or --out; local images that must be uploaded with the page are listed on stderr.",
		Args:  cobra.ExactArgs(1),
		RunE: withContainer(func(cmd *cobra.Command, args []string, container *di.Container) error {
			return dispatcher.Dispatch(cmd.Context(), publishcmd.ConvertFileCommand{
				Path:   args[0],
				Output: out,
			})
		}),
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the markup to this file")
	return cmd
}
