package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/phytocheck/internal/catalog"
	"github.com/magabrotheeeer/phytocheck/internal/models"
)

// ErrQuotaExhausted возвращается, когда бесплатные поиски закончились.
var ErrQuotaExhausted = errors.New("free search limit reached, upgrade to Premium for unlimited searches")

func newSearchCommand(s *session) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search products by name, AMM number or secondary name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				return nil
			}
			if !s.app.Quota.PerformSearch(cmd.Context()) {
				return ErrQuotaExhausted
			}

			results := s.app.Catalog.Search(query, limit)
			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintf(out, "No product matches %q\n", query)
				return nil
			}
			printProducts(out, results)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", catalog.DefaultLimit, "Maximum number of results")
	return cmd
}

func newProductCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "product <amm>",
		Short: "Show the full record of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, ok := s.app.Catalog.ProductByID(args[0])
			if !ok {
				return fmt.Errorf("product %s not found", args[0])
			}
			printProduct(cmd.OutOrStdout(), p, s.app.Stock.IsInStock(cmd.Context(), p.ID))
			return nil
		},
	}
}

func printProducts(out io.Writer, products []models.ClassifiedProduct) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", colorHeader("AMM"), colorHeader("NAME"), colorHeader("STATUS"), colorHeader("HOLDER"))
	for _, p := range products {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Name, badge(p.Classification), colorFaint(orDash(p.Holder)))
	}
	w.Flush()
}

func printProduct(out io.Writer, p models.ClassifiedProduct, inStock bool) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	rows := [][2]string{
		{"AMM", p.ID},
		{"Name", p.Name},
		{"Secondary names", orDash(p.SecondaryNames)},
		{"Status", badge(p.Classification)},
		{"Holder", orDash(p.Holder)},
		{"Usage range", orDash(p.UsageRange)},
		{"Active substances", orDash(p.ActiveSubstances)},
		{"Functions", orDash(p.Functions)},
		{"Formulation", orDash(p.Formulation)},
		{"Authorized", orDash(p.AuthorizationDate)},
	}
	if p.IsWithdrawn() {
		rows = append(rows, [2]string{"Withdrawn", orDash(p.WithdrawalDate)})
	}
	if inStock {
		rows = append(rows, [2]string{"In stock", colorOK("yes")})
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\n", colorHeader(r[0]), r[1])
	}
	w.Flush()

	if len(p.RiskPhrases) == 0 {
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, colorHeader("Risk phrases"))
	for _, rp := range p.RiskPhrases {
		code := rp.Code
		switch {
		case catalog.IsCMRCode(code):
			code = colorWarn(code)
		case catalog.IsToxicCode(code):
			code = colorError(code)
		}
		fmt.Fprintf(out, "  %s  %s\n", code, rp.Label)
	}
}
