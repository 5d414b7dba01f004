package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/endpointlab/biosmgr/internal/env"
)

var rootCmd = &cobra.Command{
	Use:   "biosmgr",
	Short: "Manage dynamic BIOS update records",
	Long: `biosmgr maintains the dynamic BIOS update records the provisioning task
sequence reads: per make/model target BIOS dates, flash commands, and the
linked ConfigMgr package that carries the BIOS binaries.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if level, err := zerolog.ParseLevel(rootLogLevel); err == nil {
			zerolog.SetGlobalLevel(level)
		}
	},
}

var (
	rootSettingsPath string
	rootAssumeYes    bool
	rootLogLevel     string
)

func init() {
	output := zerolog.ConsoleWriter{Out: os.Stderr}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
	rootCmd.PersistentFlags().StringVar(&rootSettingsPath, "settings", "", "Settings file path (default is $HOME/.biosmgr/settings.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&rootAssumeYes, "yes", "y", false, "Skip the confirmation prompt")
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "info", "Log level (debug prints every statement)")
	rootCmd.AddCommand(
		newCreateCmd(),
		newGetCmd(),
		newUpdateCmd(),
		newRemoveCmd(),
		newSettingsCmd(),
	)
	_ = env.Ensure()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("biosmgr command failed")
	}
}
