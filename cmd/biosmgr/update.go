package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/endpointlab/biosmgr/pkg/biosrecord"
)

func newUpdateCmd() *cobra.Command {
	var (
		flagNewPackageID  string
		flagNewFlashCmd   string
		flagNewTargetDate string
	)

	cmd := &cobra.Command{
		Use:   "update <package-id>",
		Short: "Update fields of an existing BIOS update record",
		Long: `Updates the supplied fields of the record addressed by the catalog package
identifier. At least one --new-* flag is required; all supplied fields are
written in one statement.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := newManager(cmd.InOrStdin(), cmd.OutOrStdout(), false)
			if err != nil {
				return err
			}
			affected, err := manager.UpdatePackage(cmd.Context(), args[0], biosrecord.UpdateInput{
				NewPackageID:      flagNewPackageID,
				NewFlashCommand:   flagNewFlashCmd,
				NewTargetBiosDate: flagNewTargetDate,
			})
			if err != nil {
				return err
			}
			if affected == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted, nothing changed.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %d record(s)\n", affected)
			return nil
		},
	}

	cmd.Flags().StringVar(&flagNewPackageID, "new-package-id", "", "Replace the linked catalog package identifier")
	cmd.Flags().StringVar(&flagNewFlashCmd, "new-flash-command", "", "Replace the flash command")
	cmd.Flags().StringVar(&flagNewTargetDate, "new-target-bios-date", "", `Replace the target BIOS date (yyyyMMdd or "today")`)
	return cmd
}
