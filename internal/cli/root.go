package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/goliatone/go-confluence/internal/convert"
	"github.com/goliatone/go-confluence/internal/di"
	"github.com/goliatone/go-confluence/internal/markdown"
	"github.com/goliatone/go-confluence/internal/publish"
	"github.com/goliatone/go-confluence/internal/runtimeconfig"
)

type ctxKey string

const containerKey ctxKey = "container"

var errNoContainer = errors.New("cli: container not initialized")

// Execute builds the root command and runs it.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd constructs the root command. Configuration is loaded and the
// container wired before any sub command runs.
func NewRootCmd() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:           "confluence-md",
		Short:         "Convert markdown into Confluence wiki markup and publish it",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipContainer] == "true" {
				return nil
			}
			v := viper.New()
			if cfgPath != "" {
				v.SetConfigFile(cfgPath)
			}
			applyConfigFlagOverrides(cmd, v)

			cfg, err := runtimeconfig.Load(cmd.Context(), v)
			if err != nil {
				return err
			}

			stderr := cmd.ErrOrStderr()
			container, err := di.NewContainer(cmd.Context(), cfg,
				di.WithOutput(cmd.OutOrStdout()),
				di.WithLogWriter(stderr),
				di.WithConvertedHook(func(_ *markdown.Source, result *convert.Result) {
					for _, upload := range result.Uploads {
						_, _ = fmt.Fprintf(stderr, "pending upload %s <- %s\n", upload.Name, upload.Path)
					}
				}),
				di.WithPublishedHook(func(src *markdown.Source, outcome *publish.Outcome) {
					if outcome.Skipped {
						_, _ = fmt.Fprintf(stderr, "skipped %s (%s unchanged)\n", src.FilePath, outcome.Key)
						return
					}
					_, _ = fmt.Fprintf(stderr, "published %s -> %s (page %s, version %d, %d attachments)\n",
						src.FilePath, outcome.Key, outcome.PageID, outcome.Version, len(outcome.Attachments))
				}),
			)
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), containerKey, container))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (yaml|toml|json)")
	cmd.PersistentFlags().String("content-dir", "", "root directory of markdown sources")
	cmd.PersistentFlags().Int("image-width", 0, "width applied to local images")
	cmd.PersistentFlags().String("log-level", "", "minimum log level")

	cmd.AddCommand(newConvertCmd())
	cmd.AddCommand(newPreviewCmd())
	cmd.AddCommand(newSectionsCmd())
	cmd.AddCommand(newPublishCmd())
	cmd.AddCommand(newConfigCmd())

	cmd.Run = func(cmd *cobra.Command, args []string) { _ = cmd.Help() }

	return cmd
}

// withContainer runs fn with the wired container, its command handlers
// subscribed to the dispatcher for the duration of the call.
func withContainer(fn func(cmd *cobra.Command, args []string, container *di.Container) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		container, err := getContainer(cmd)
		if err != nil {
			return err
		}
		container.RegisterCommands()
		defer func() {
			if closeErr := container.Close(); err == nil {
				err = closeErr
			}
		}()
		return fn(cmd, args, container)
	}
}

func getContainer(cmd *cobra.Command) (*di.Container, error) {
	if cmd.Context() == nil {
		return nil, errNoContainer
	}
	container, ok := cmd.Context().Value(containerKey).(*di.Container)
	if !ok || container == nil {
		return nil, errNoContainer
	}
	return container, nil
}
