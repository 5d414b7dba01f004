package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/endpointlab/biosmgr/internal/settings"
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or persist the biosmgr settings",
	}
	cmd.AddCommand(newSettingsShowCmd(), newSettingsSetCmd())
	return cmd
}

func newSettingsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the persisted settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := settings.Load(rootSettingsPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "DatabaseServer:  %s\n", cfg.DatabaseServer)
			fmt.Fprintf(out, "Database:        %s\n", cfg.Database)
			fmt.Fprintf(out, "NetworkLibrary:  %s\n", cfg.NetworkLibrary)
			fmt.Fprintf(out, "SCCMServer:      %s\n", cfg.SCCMServer)
			fmt.Fprintf(out, "SCCMSiteCode:    %s\n", cfg.SCCMSiteCode)
			fmt.Fprintf(out, "Driver:          %s\n", cfg.Driver)
			fmt.Fprintf(out, "LogLevel:        %s\n", cfg.LogLevel)
			return nil
		},
	}
}

func newSettingsSetCmd() *cobra.Command {
	var (
		flagDatabaseServer   string
		flagDatabase         string
		flagNetworkLibrary   string
		flagDatabaseUser     string
		flagDatabasePassword string
		flagSCCMServer       string
		flagSCCMSiteCode     string
		flagDriver           string
		flagLogLevel         string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Persist settings, creating the settings file when absent",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := settings.LoadOrInit(rootSettingsPath)
			if err != nil {
				return err
			}
			apply := map[string]func(){
				"database-server":   func() { cfg.DatabaseServer = flagDatabaseServer },
				"database":          func() { cfg.Database = flagDatabase },
				"network-library":   func() { cfg.NetworkLibrary = flagNetworkLibrary },
				"database-user":     func() { cfg.DatabaseUser = flagDatabaseUser },
				"database-password": func() { cfg.DatabasePassword = flagDatabasePassword },
				"sccm-server":       func() { cfg.SCCMServer = flagSCCMServer },
				"sccm-site-code":    func() { cfg.SCCMSiteCode = flagSCCMSiteCode },
				"driver":            func() { cfg.Driver = flagDriver },
				"log-level":         func() { cfg.LogLevel = flagLogLevel },
			}
			for name, set := range apply {
				if cmd.Flags().Changed(name) {
					set()
				}
			}
			if err := cfg.Save(rootSettingsPath); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Settings saved.")
			return nil
		},
	}

	cmd.Flags().StringVar(&flagDatabaseServer, "database-server", "", "Database server host")
	cmd.Flags().StringVar(&flagDatabase, "database", "", "Database name (or file path for the sqlite driver)")
	cmd.Flags().StringVar(&flagNetworkLibrary, "network-library", "", "Network transport used to reach the database server")
	cmd.Flags().StringVar(&flagDatabaseUser, "database-user", "", "Database user")
	cmd.Flags().StringVar(&flagDatabasePassword, "database-password", "", "Database password")
	cmd.Flags().StringVar(&flagSCCMServer, "sccm-server", "", "ConfigMgr site server")
	cmd.Flags().StringVar(&flagSCCMSiteCode, "sccm-site-code", "", "ConfigMgr site code")
	cmd.Flags().StringVar(&flagDriver, "driver", "", "Database driver: mysql or sqlite")
	cmd.Flags().StringVar(&flagLogLevel, "log-level", "", "Default log level")
	return cmd
}
