package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <package-id>",
		Short: "Show the BIOS update record for a catalog package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := newManager(cmd.InOrStdin(), cmd.OutOrStdout(), false)
			if err != nil {
				return err
			}
			rec, err := manager.GetPackage(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:              %d\n", rec.ID)
			fmt.Fprintf(out, "Make:            %s\n", rec.Make)
			fmt.Fprintf(out, "Model:           %s\n", rec.Model)
			fmt.Fprintf(out, "TargetBiosDate:  %s\n", rec.TargetBiosDate)
			fmt.Fprintf(out, "FlashBiosCmd:    %s\n", rec.FlashBiosCmd)
			fmt.Fprintf(out, "BiosPackage:     %s\n", rec.BiosPackage)
			return nil
		},
	}
	return cmd
}
