// Package command implements the collector CLI.
package command

import (
	"os"

	"github.com/spf13/cobra"
)

const AppName = "collector"

// Version is overwritten at build time using -ldflags.
var Version = "dev"

// NewRootCmd builds the command tree.
func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           AppName,
		Short:         "Telegram message collector",
		Long:          "Collects Telegram group messages into SQLite and exports them as text.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.Version = version
	cmd.SetVersionTemplate(AppName + " version {{.Version}}\n")
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.PersistentFlags().String("config", "", "path to config.yaml (default ./config.yaml)")

	cmd.AddCommand(
		NewServeCmd(),
		NewChatsCmd(),
		NewExportCmd(),
	)

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd(Version).Execute()
}

func configPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("config")
	return path
}
