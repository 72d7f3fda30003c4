package cli

import (
	"github.com/spf13/cobra"

	"danmaku-player/pkg/settings"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	SettingsPath string
}

// NewRootCommand creates the root command for the player CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "danmaku-player",
		Short: "Video player with scrolling comment overlays",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			settings.Path = opts.SettingsPath
		},
	}

	cmd.PersistentFlags().StringVar(&opts.SettingsPath, "settings", settings.Path, "path to the settings file")

	cmd.AddCommand(NewPlayCommand(opts))
	cmd.AddCommand(NewRecordingsCommand(opts))

	return cmd
}
