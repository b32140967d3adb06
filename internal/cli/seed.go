package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Import sample products and customers",
		Long: `Seed adds four sample products and three sample customers. Products with
an existing name and customers with an existing email are skipped, so
running it again adds nothing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := a.controller(cmd.Context())
			if err != nil {
				return err
			}
			products, customers, err := ctrl.ImportSampleData(cmd.Context())
			if err != nil {
				return err
			}
			if a.jsonMode {
				return printJSON(cmd.OutOrStdout(), map[string]int{"products": products, "customers": customers})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d products and %d customers\n", products, customers)
			return nil
		},
	}
}
