package cli

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-confluence/internal/di"
)

func newPreviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview <file>",
		Short: "Render a markdown file as HTML",
		Args:  cobra.ExactArgs(1),
		RunE: withContainer(func(cmd *cobra.Command, args []string, container *di.Container) error {
			svc := container.MarkdownService()
			src, err := svc.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			html, err := svc.PreviewSource(cmd.Context(), src)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(html)
			return err
		}),
	}
	return cmd
}
