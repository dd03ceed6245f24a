package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/phytocheck/internal/services/billing"
)

func newPremiumCommand(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "premium",
		Short: "Inspect or change the Premium status",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "Show the Premium status",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				state, err := s.app.Store.Premium(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				st := state.Status()
				if !st.IsPremium {
					fmt.Fprintln(out, "Premium: "+colorFaint("inactive"))
				} else {
					fmt.Fprintln(out, "Premium: "+colorOK("active"))
				}
				if st.SubscriptionType != "" {
					fmt.Fprintf(out, "Plan: %s\n", st.SubscriptionType)
				}
				if !st.TransactionDate.IsZero() {
					fmt.Fprintf(out, "Purchased: %s\n", humanize.Time(st.TransactionDate))
				}
				source := "cached"
				if state.IsVerified() {
					source = "verified"
				}
				if !state.AsOf().IsZero() {
					source += " " + humanize.Time(state.AsOf())
				}
				fmt.Fprintln(out, colorFaint("Source: "+source))
				return nil
			},
		},
		newPremiumToggleCommand(s, "activate", "Enable Premium on this device", true),
		newPremiumToggleCommand(s, "deactivate", "Disable Premium on this device", false),
	)
	return cmd
}

func newPremiumToggleCommand(s *session, use, short string, value bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := s.app.Quota.SetPremium(cmd.Context(), value); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Premium %sd\n", colorOK("✓"), use)
			return nil
		},
	}
}

func newBillingCommand(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "billing",
		Short: "Platform billing operations",
	}

	var file string
	verify := &cobra.Command{
		Use:   "verify",
		Short: "Derive the Premium status from the platform's active purchases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if !billing.IsPlatformSupported(s.app.Platform) {
				return billing.ErrPlatformNotSupported
			}

			purchases, err := readPurchases(file)
			if err != nil {
				return err
			}
			verdict, err := billing.Resolve(s.app.Platform, purchases)
			if err != nil {
				return err
			}
			if err := s.app.Store.ApplyVerdict(ctx, verdict); err != nil {
				return err
			}
			s.app.Quota.Sync(ctx)

			out := cmd.OutOrStdout()
			if !verdict.Active {
				fmt.Fprintln(out, "No active subscription found")
				return nil
			}
			fmt.Fprintf(out, "%s Premium active (%s)\n", colorOK("✓"), verdict.SubscriptionType)
			return nil
		},
	}
	verify.Flags().StringVarP(&file, "file", "f", "", "JSON file with the platform's available purchases")
	_ = verify.MarkFlagRequired("file")

	cmd.AddCommand(verify)
	return cmd
}

func readPurchases(path string) ([]billing.Purchase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var purchases []billing.Purchase
	if err := json.Unmarshal(data, &purchases); err != nil {
		return nil, fmt.Errorf("parse purchases: %w", err)
	}
	return purchases, nil
}
