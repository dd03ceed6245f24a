package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/phytocheck/internal/services/quota"
	"github.com/magabrotheeeer/phytocheck/internal/services/stock"
)

func newStatusCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show dataset, quota and stock summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			app := s.app

			searches := colorOK("unlimited")
			if remaining := app.Quota.RemainingSearches(ctx); remaining != quota.Unlimited {
				searches = fmt.Sprintf("%d of %d left", remaining, quota.FreeSearchLimit)
				if remaining == 0 {
					searches = colorError(searches)
				}
			}

			stockLimit := "unlimited"
			if l := app.Stock.Limit(ctx); l != stock.Unlimited {
				stockLimit = strconv.Itoa(l)
			}

			premium := colorFaint("inactive")
			if app.Store.IsPremium(ctx) {
				premium = colorOK("active")
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%s products, updated %s\n", colorHeader("Dataset"), humanize.Comma(int64(app.Catalog.Total())), orDash(app.Catalog.UpdatedAt()))
			fmt.Fprintf(w, "%s\t%s\n", colorHeader("Premium"), premium)
			fmt.Fprintf(w, "%s\t%s\n", colorHeader("Searches"), searches)
			fmt.Fprintf(w, "%s\t%d / %s\n", colorHeader("Stock"), len(app.Stock.Stock(ctx)), stockLimit)
			fmt.Fprintf(w, "%s\t%s\n", colorHeader("Device"), orDash(app.DeviceID))
			return w.Flush()
		},
	}
}

func newSyncCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Reconcile the search counter with the device tracker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s.app.Quota.Sync(ctx)
			fmt.Fprintf(cmd.OutOrStdout(), "Search count: %d\n", s.app.Quota.SearchCount(ctx))
			return nil
		},
	}
}

func newResetCommand(s *session) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset the local search counter and Premium status, stock is kept",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("refusing to reset without --yes")
			}
			if err := s.app.Quota.Reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s local state reset\n", colorWarn("!"))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm the reset")
	return cmd
}
