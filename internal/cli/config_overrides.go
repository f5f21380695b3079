package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// skipContainer marks commands that run without a wired container.
const skipContainer = "skip-container"

var flagKeys = map[string]string{
	"content-dir": "markdown.content_dir",
	"image-width": "convert.image_width",
	"log-level":   "logging.level",
}

func applyConfigFlagOverrides(cmd *cobra.Command, v *viper.Viper) {
	for flagName, key := range flagKeys {
		flag := cmd.Flags().Lookup(flagName)
		if flag == nil || !flag.Changed {
			continue
		}
		setFromFlag(cmd, v, flagName, key)
	}
}

func setFromFlag(cmd *cobra.Command, v *viper.Viper, flagName, key string) {
	switch cmd.Flags().Lookup(flagName).Value.Type() {
	case "bool":
		if val, err := cmd.Flags().GetBool(flagName); err == nil {
			v.Set(key, val)
		}
	case "int":
		if val, err := cmd.Flags().GetInt(flagName); err == nil {
			v.Set(key, val)
		}
	default:
		if val, err := cmd.Flags().GetString(flagName); err == nil {
			v.Set(key, val)
		}
	}
}
