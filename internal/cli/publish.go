package cli

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/spf13/cobra"

	publishcmd "github.com/goliatone/go-confluence/internal/commands/publish"
	"github.com/goliatone/go-confluence/internal/di"
)

var errDryRunRequired = errors.New("no page client is configured; rerun with --dry-run")

func newPublishCmd() *cobra.Command {
	var (
		space     string
		title     string
		labels    []string
		pattern   string
		recursive bool
		force     bool
		dryRun    bool
	)
	cmd := &cobra.Command{
		Use:   "publish <file|dir>",
		Short: "Publish a markdown file or directory to its pages",
		Long: "Publish converts each source, attaches its local images and replaces the page body. " +
			"Pages must already exist. Space and title come from the flags, then the frontmatter, then the configuration.",
		Args: cobra.ExactArgs(1),
		RunE: withContainer(func(cmd *cobra.Command, args []string, container *di.Container) error {
			if !dryRun || container.DryRunClient() == nil {
				// The binary ships no page client; real publishing goes
				// through the library with confluence.WithPageClient.
				return errDryRunRequired
			}

			target := args[0]
			resolved := target
			if !filepath.IsAbs(resolved) {
				resolved = filepath.Join(container.MarkdownService().BasePath(), target)
			}
			info, err := os.Stat(resolved)
			if err != nil {
				return err
			}

			if !info.IsDir() {
				return dispatcher.Dispatch(cmd.Context(), publishcmd.PublishFileCommand{
					Path:   target,
					Space:  space,
					Title:  title,
					Labels: labels,
					Force:  force,
				})
			}

			msg := publishcmd.PublishDirectoryCommand{
				Directory: target,
				Space:     space,
				Pattern:   pattern,
				Force:     force,
			}
			if cmd.Flags().Changed("recursive") {
				msg.Recursive = &recursive
			}
			return dispatcher.Dispatch(cmd.Context(), msg)
		}),
	}
	cmd.Flags().StringVar(&space, "space", "", "target space key")
	cmd.Flags().StringVar(&title, "title", "", "target page title (files only)")
	cmd.Flags().StringSliceVar(&labels, "label", nil, "extra page labels (files only)")
	cmd.Flags().StringVar(&pattern, "pattern", "", "file name pattern (directories only)")
	cmd.Flags().BoolVar(&recursive, "recursive", true, "descend into sub directories (directories only)")
	cmd.Flags().BoolVar(&force, "force", false, "publish even when the page is unchanged")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print what would be sent instead of calling the page host")
	return cmd
}
