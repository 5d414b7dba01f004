package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/endpointlab/biosmgr/pkg/biosrecord"
)

func newRemoveCmd() *cobra.Command {
	var (
		flagPackageID string
		flagMake      string
		flagModel     string
	)

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove a BIOS update record",
		Long: `Removes the BIOS setting row and its device identity, addressed either by
--package-id or by --make and --model together. The catalog package itself is
kept and must be deleted in the ConfigMgr console separately.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			manager, err := newManager(cmd.InOrStdin(), cmd.OutOrStdout(), false)
			if err != nil {
				return err
			}
			affected, err := manager.RemovePackage(cmd.Context(), biosrecord.RemoveInput{
				PackageID: flagPackageID,
				Make:      flagMake,
				Model:     flagModel,
			})
			if err != nil {
				return err
			}
			if affected == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted, nothing changed.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d record(s); remember to delete the catalog package separately\n", affected)
			return nil
		},
	}

	cmd.Flags().StringVar(&flagPackageID, "package-id", "", "Catalog package identifier of the record to remove")
	cmd.Flags().StringVar(&flagMake, "make", "", "Device make (used together with --model)")
	cmd.Flags().StringVar(&flagModel, "model", "", "Device model (used together with --make)")
	return cmd
}
