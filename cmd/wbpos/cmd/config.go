package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	trackingapp "github.com/wbpos/backend/internal/application/tracking"
	"github.com/wbpos/backend/internal/domain/tracking"
)

func newConfigCmd(r *runner) *cobra.Command {
	c := &cobra.Command{
		Use:   "config",
		Short: "Shows or changes the tracked product and keywords.",
	}
	c.AddCommand(newConfigShowCmd(r), newConfigSetCmd(r))
	return c
}

func newConfigShowCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Prints the stored tracking config.",
		Args:  cobra.NoArgs,
		RunE: r.run(func(cmd *cobra.Command, _ []string, app *App) error {
			cfg, err := app.Tracking.LoadConfig(cmd.Context())
			if err != nil {
				return err
			}
			renderConfig(app.Out, cfg)
			return nil
		}),
	}
}

func newConfigSetCmd(r *runner) *cobra.Command {
	var (
		token        string
		productID    int64
		keywords     []string
		keywordsFile string
	)
	c := &cobra.Command{
		Use:   "set",
		Short: "Updates the stored config. Flags that are not given keep their stored value.",
		Example: `  wbpos config set --token "$WB_TOKEN" --product 123456
  wbpos config set --keywords "mug,coffee mug"
  wbpos config set --keywords-file keywords.txt`,
		Args: cobra.NoArgs,
		RunE: r.run(func(cmd *cobra.Command, _ []string, app *App) error {
			cfg, err := app.Tracking.LoadConfig(cmd.Context())
			if err != nil {
				return err
			}

			save := trackingapp.SaveConfigCommand{
				Token:     cfg.Token,
				ProductID: cfg.ProductID,
				Keywords:  cfg.Keywords,
				Version:   cfg.GetVersion(),
			}
			flags := cmd.Flags()
			if flags.Changed("token") {
				save.Token = token
			}
			if flags.Changed("product") {
				save.ProductID = productID
			}
			if flags.Changed("keywords") {
				save.Keywords = keywords
			}
			if keywordsFile != "" {
				data, err := os.ReadFile(keywordsFile)
				if err != nil {
					return fmt.Errorf("read keywords: %w", err)
				}
				save.Keywords = tracking.ParseKeywordText(string(data))
			}

			saved, err := app.Tracking.SaveConfig(cmd.Context(), save)
			if err != nil {
				return err
			}
			renderConfig(app.Out, saved)
			return nil
		}),
	}
	c.Flags().StringVar(&token, "token", "", "seller API token")
	c.Flags().Int64Var(&productID, "product", 0, "tracked nmID, 0 clears the selection")
	c.Flags().StringSliceVarP(&keywords, "keywords", "k", nil, "comma-separated keywords, replaces the stored list")
	c.Flags().StringVar(&keywordsFile, "keywords-file", "", "file with one keyword per line, replaces the stored list")
	c.MarkFlagsMutuallyExclusive("keywords", "keywords-file")
	return c
}
