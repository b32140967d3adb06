package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/wawi/internal/controller"
	"github.com/mesh-intelligence/wawi/pkg/types"
)

func newProductCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "product",
		Aliases: []string{"products"},
		Short:   "Manage products",
	}
	cmd.AddCommand(
		newProductListCmd(a),
		newProductGetCmd(a),
		newProductAddCmd(a),
		newProductUpdateCmd(a),
		newProductRemoveCmd(a),
	)
	return cmd
}

func newProductListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := a.controller(cmd.Context())
			if err != nil {
				return err
			}
			items := ctrl.Products.Items()
			if a.jsonMode {
				return printJSON(cmd.OutOrStdout(), items)
			}
			return writeProducts(cmd.OutOrStdout(), items)
		},
	}
}

func newProductGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			ctrl, err := a.controller(cmd.Context())
			if err != nil {
				return err
			}
			p, err := ctrl.Products.Fetch(cmd.Context(), ids[0])
			if err != nil {
				return err
			}
			if a.jsonMode {
				return printJSON(cmd.OutOrStdout(), p)
			}
			return writeProducts(cmd.OutOrStdout(), []*types.Product{p})
		},
	}
}

func newProductAddCmd(a *app) *cobra.Command {
	var form controller.ProductForm
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a product",
		Long: `Add stores a new product and prints its id.

Example:
  wawi product add --name Laptop --price 999.99 --quantity 10
  wawi product add --name Mouse --price 19,99 --quantity 50 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := a.controller(cmd.Context())
			if err != nil {
				return err
			}
			p, err := ctrl.AddProduct(cmd.Context(), form)
			if err != nil {
				return err
			}
			if a.jsonMode {
				return printJSON(cmd.OutOrStdout(), p)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added product %d\n", p.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&form.Name, "name", "", "product name (required)")
	cmd.Flags().StringVar(&form.Price, "price", "", "unit price, comma or dot decimal (required)")
	cmd.Flags().StringVar(&form.Quantity, "quantity", "0", "units in stock")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

func newProductUpdateCmd(a *app) *cobra.Command {
	var form controller.ProductForm
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a product",
		Long: `Update changes only the fields given as flags.

Example:
  wawi product update 1 --quantity 15`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			var patch controller.ProductPatch
			if cmd.Flags().Changed("name") {
				patch.Name = &form.Name
			}
			if cmd.Flags().Changed("price") {
				patch.Price = &form.Price
			}
			if cmd.Flags().Changed("quantity") {
				patch.Quantity = &form.Quantity
			}
			if patch == (controller.ProductPatch{}) {
				return usageError{fmt.Errorf("nothing to update: pass --name, --price or --quantity")}
			}

			ctrl, err := a.controller(cmd.Context())
			if err != nil {
				return err
			}
			p, err := ctrl.UpdateProduct(cmd.Context(), ids[0], patch)
			if err != nil {
				return err
			}
			if a.jsonMode {
				return printJSON(cmd.OutOrStdout(), p)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated product %d\n", p.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&form.Name, "name", "", "product name")
	cmd.Flags().StringVar(&form.Price, "price", "", "unit price")
	cmd.Flags().StringVar(&form.Quantity, "quantity", "", "units in stock")
	return cmd
}

func newProductRemoveCmd(a *app) *cobra.Command {
	var silent bool
	cmd := &cobra.Command{
		Use:     "remove <id>...",
		Aliases: []string{"rm"},
		Short:   "Remove products by id",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			ctrl, err := a.controller(cmd.Context())
			if err != nil {
				return err
			}
			removed, err := ctrl.RemoveProducts(cmd.Context(), ids, silent)
			return a.reportRemoval(cmd.OutOrStdout(), "products", removed, err)
		},
	}
	cmd.Flags().BoolVar(&silent, "silent", false, "ignore ids that do not exist")
	return cmd
}
