package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-confluence/internal/di"
)

func newSectionsCmd() *cobra.Command {
	var path []int
	cmd := &cobra.Command{
		Use:   "sections <file>",
		Short: "Print one section of the converted document",
		Long: "Print one section of the converted document. --path selects a section per heading level: " +
			"--path 2 is the second h1 section, --path 2,1 the first h2 inside it. Index 0 holds the lines before the first heading.",
		Args: cobra.ExactArgs(1),
		RunE: withContainer(func(cmd *cobra.Command, args []string, container *di.Container) error {
			src, err := container.MarkdownService().Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			result, err := container.Converter().ConvertSource(cmd.Context(), string(src.Body), src.FullPath)
			if err != nil {
				return err
			}
			lines, err := result.Document.Section(path...)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(lines, "\n"))
			return err
		}),
	}
	cmd.Flags().IntSliceVar(&path, "path", nil, "section indexes, one per heading level")
	return cmd
}
