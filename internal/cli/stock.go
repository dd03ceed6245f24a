package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/phytocheck/internal/models"
	"github.com/magabrotheeeer/phytocheck/internal/services/stock"
)

func newStockCommand(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stock",
		Short: "Manage your product stock",
	}
	cmd.AddCommand(
		newStockListCommand(s),
		newStockAddCommand(s),
		newStockSetCommand(s),
		newStockRemoveCommand(s),
		newStockStatsCommand(s),
	)
	return cmd
}

func newStockListCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stock items",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items := s.app.Stock.Stock(cmd.Context())
			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "Stock is empty")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				colorHeader("AMM"), colorHeader("NAME"), colorHeader("STATUS"), colorHeader("QUANTITY"), colorHeader("ADDED"))
			for _, it := range items {
				name := it.Product.Name()
				if it.SecondaryName != "" {
					name = fmt.Sprintf("%s (%s)", name, it.SecondaryName)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s %s\t%s\n",
					it.ProductID(), name, badge(it.Product.Classification()),
					humanize.Ftoa(it.Quantity), it.Unit, colorFaint(humanize.Time(it.AddedAt)))
			}
			return w.Flush()
		},
	}
}

func newStockAddCommand(s *session) *cobra.Command {
	var (
		quantity  float64
		unit      string
		secondary string
	)

	cmd := &cobra.Command{
		Use:   "add <amm>",
		Short: "Add a product to the stock or increase its quantity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, ok := s.app.Catalog.ProductByID(args[0])
			if !ok {
				return fmt.Errorf("product %s not found", args[0])
			}

			out := cmd.OutOrStdout()
			switch s.app.Stock.AddToStock(cmd.Context(), p, quantity, models.ParseUnit(unit), secondary) {
			case stock.ResultAdded:
				fmt.Fprintf(out, "%s %s added to stock\n", colorOK("✓"), p.Name)
			case stock.ResultIncremented:
				fmt.Fprintf(out, "%s %s quantity increased\n", colorOK("✓"), p.Name)
			case stock.ResultLimitExceeded:
				return fmt.Errorf("stock is limited to %d products on the free plan, upgrade to Premium for unlimited stock", stock.FreeStockLimit)
			default:
				return fmt.Errorf("could not save %s to stock", p.ID)
			}
			return nil
		},
	}
	cmd.Flags().Float64VarP(&quantity, "quantity", "q", 1, "Quantity to add")
	cmd.Flags().StringVarP(&unit, "unit", "u", string(models.UnitLiters), "Unit: L or Kg")
	cmd.Flags().StringVar(&secondary, "as", "", "Secondary name the product was found under")
	return cmd
}

func newStockSetCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "set <amm> <quantity>",
		Short: "Set the quantity of a stock item, 0 removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
			if !s.app.Stock.UpdateQuantity(cmd.Context(), args[0], qty) {
				return fmt.Errorf("product %s is not in stock", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s quantity updated\n", colorOK("✓"))
			return nil
		},
	}
}

func newStockRemoveCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <amm>",
		Aliases: []string{"rm"},
		Short:   "Remove a product from the stock",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !s.app.Stock.RemoveFromStock(cmd.Context(), args[0]) {
				return fmt.Errorf("could not remove %s from stock", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s removed\n", colorOK("✓"))
			return nil
		},
	}
}

func newStockStatsCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show stock statistics by classification",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			st := s.app.Stock.StockStats(ctx)

			limit := "unlimited"
			if l := s.app.Stock.Limit(ctx); l != stock.Unlimited {
				limit = strconv.Itoa(l)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%d / %s\n", colorHeader("Total"), st.Total, limit)
			fmt.Fprintf(w, "%s\t%d\n", badge(models.ClassHomologated), st.Homologated)
			fmt.Fprintf(w, "%s\t%d\n", badge(models.ClassWithdrawn), st.Withdrawn)
			fmt.Fprintf(w, "%s\t%d\n", badge(models.ClassHomologatedCMR), st.CMR)
			fmt.Fprintf(w, "%s\t%d\n", badge(models.ClassHomologatedToxic), st.Toxic)
			return w.Flush()
		},
	}
}
