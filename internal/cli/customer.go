package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/wawi/internal/controller"
	"github.com/mesh-intelligence/wawi/pkg/types"
)

func newCustomerCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "customer",
		Aliases: []string{"customers"},
		Short:   "Manage customers",
	}
	cmd.AddCommand(
		newCustomerListCmd(a),
		newCustomerGetCmd(a),
		newCustomerAddCmd(a),
		newCustomerUpdateCmd(a),
		newCustomerRemoveCmd(a),
	)
	return cmd
}

func newCustomerListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all customers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := a.controller(cmd.Context())
			if err != nil {
				return err
			}
			items := ctrl.Customers.Items()
			if a.jsonMode {
				return printJSON(cmd.OutOrStdout(), items)
			}
			return writeCustomers(cmd.OutOrStdout(), items)
		},
	}
}

func newCustomerGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one customer",
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
			c, err := ctrl.Customers.Fetch(cmd.Context(), ids[0])
			if err != nil {
				return err
			}
			if a.jsonMode {
				return printJSON(cmd.OutOrStdout(), c)
			}
			return writeCustomers(cmd.OutOrStdout(), []*types.Customer{c})
		},
	}
}

func newCustomerAddCmd(a *app) *cobra.Command {
	var form controller.CustomerForm
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a customer",
		Long: `Add stores a new customer and prints its id.

Example:
  wawi customer add --name "John Doe" --address "123 Main St" --email john@example.com --phone 555-1234`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := a.controller(cmd.Context())
			if err != nil {
				return err
			}
			c, err := ctrl.AddCustomer(cmd.Context(), form)
			if err != nil {
				return err
			}
			if a.jsonMode {
				return printJSON(cmd.OutOrStdout(), c)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added customer %d\n", c.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&form.Name, "name", "", "customer name (required)")
	cmd.Flags().StringVar(&form.Address, "address", "", "postal address (required)")
	cmd.Flags().StringVar(&form.Email, "email", "", "email address (required)")
	cmd.Flags().StringVar(&form.Phone, "phone", "", "phone number")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("address")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newCustomerUpdateCmd(a *app) *cobra.Command {
	var form controller.CustomerForm
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a customer",
		Long: `Update changes only the fields given as flags. An empty --phone clears
the phone number.

Example:
  wawi customer update 2 --email jane.smith@example.com`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			var patch controller.CustomerPatch
			for name, dst := range map[string]**string{
				"name":    &patch.Name,
				"address": &patch.Address,
				"email":   &patch.Email,
				"phone":   &patch.Phone,
			} {
				if cmd.Flags().Changed(name) {
					v, _ := cmd.Flags().GetString(name)
					*dst = &v
				}
			}
			if patch == (controller.CustomerPatch{}) {
				return usageError{fmt.Errorf("nothing to update: pass --name, --address, --email or --phone")}
			}

			ctrl, err := a.controller(cmd.Context())
			if err != nil {
				return err
			}
			c, err := ctrl.UpdateCustomer(cmd.Context(), ids[0], patch)
			if err != nil {
				return err
			}
			if a.jsonMode {
				return printJSON(cmd.OutOrStdout(), c)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated customer %d\n", c.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&form.Name, "name", "", "customer name")
	cmd.Flags().StringVar(&form.Address, "address", "", "postal address")
	cmd.Flags().StringVar(&form.Email, "email", "", "email address")
	cmd.Flags().StringVar(&form.Phone, "phone", "", "phone number")
	return cmd
}

func newCustomerRemoveCmd(a *app) *cobra.Command {
	var silent bool
	cmd := &cobra.Command{
		Use:     "remove <id>...",
		Aliases: []string{"rm"},
		Short:   "Remove customers by id",
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
			removed, err := ctrl.RemoveCustomers(cmd.Context(), ids, silent)
			return a.reportRemoval(cmd.OutOrStdout(), "customers", removed, err)
		},
	}
	cmd.Flags().BoolVar(&silent, "silent", false, "ignore ids that do not exist")
	return cmd
}
