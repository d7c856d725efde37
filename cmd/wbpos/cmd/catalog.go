package cmd

import (
	"github.com/spf13/cobra"
)

func newCatalogCmd(r *runner) *cobra.Command {
	var (
		token  string
		search string
		format string
	)
	c := &cobra.Command{
		Use:   "catalog",
		Short: "Lists the seller's products. Uses the stored token unless --token is given.",
		Args:  cobra.NoArgs,
		RunE: r.run(func(cmd *cobra.Command, _ []string, app *App) error {
			tok := token
			if tok == "" {
				cfg, err := app.Tracking.LoadConfig(cmd.Context())
				if err != nil {
					return err
				}
				tok = cfg.Token
			}
			products, err := app.Catalog.FetchCatalog(cmd.Context(), tok, search)
			if err != nil {
				return err
			}
			return renderProducts(app.Out, products, format)
		}),
	}
	c.Flags().StringVar(&token, "token", "", "seller API token")
	c.Flags().StringVarP(&search, "search", "s", "", "text filter passed to the content API")
	c.Flags().StringVarP(&format, "format", "f", FormatText, "output format: text, markdown, csv, json")
	return c
}
