package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/endpointlab/biosmgr/pkg/biosrecord"
)

func newCreateCmd() *cobra.Command {
	var (
		flagMake         string
		flagModel        string
		flagTargetDate   string
		flagFlashCommand string
		flagContentPath  string
		flagVersion      string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a catalog package and its BIOS update record",
		Long: `Creates a "BIOS UPDATE - <make> <model>" package in the ConfigMgr catalog,
then inserts the linked device identity and BIOS setting rows. The target
BIOS date accepts "today" or a yyyyMMdd date.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			manager, err := newManager(cmd.InOrStdin(), cmd.OutOrStdout(), true)
			if err != nil {
				return err
			}
			packageID, err := manager.CreatePackage(cmd.Context(), biosrecord.CreateInput{
				Make:           flagMake,
				Model:          flagModel,
				TargetBiosDate: flagTargetDate,
				FlashCommand:   flagFlashCommand,
				ContentPath:    flagContentPath,
				Version:        flagVersion,
			})
			if err != nil {
				return err
			}
			if packageID == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted, nothing changed.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created BIOS update record, catalog package %s\n", packageID)
			return nil
		},
	}

	cmd.Flags().StringVar(&flagMake, "make", "", "Device make, e.g. Dell")
	cmd.Flags().StringVar(&flagModel, "model", "", "Device model, e.g. 7520")
	cmd.Flags().StringVar(&flagTargetDate, "target-bios-date", "today", `Target BIOS date, yyyyMMdd or "today"`)
	cmd.Flags().StringVar(&flagFlashCommand, "flash-command", "", "Command the task sequence runs to flash the BIOS")
	cmd.Flags().StringVar(&flagContentPath, "content-path", "", "UNC path to the BIOS package source files")
	cmd.Flags().StringVar(&flagVersion, "version", "", "Package version shown in the catalog")
	_ = cmd.MarkFlagRequired("make")
	_ = cmd.MarkFlagRequired("model")
	_ = cmd.MarkFlagRequired("flash-command")
	_ = cmd.MarkFlagRequired("content-path")
	return cmd
}
