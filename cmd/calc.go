package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/sells-group/brew-cli/internal/brew"
	"github.com/sells-group/brew-cli/internal/recipe"
)

var (
	calcRecipePath  string
	calcFermentTemp float64
	calcMashTemp    float64
)

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Predict OG, FG, IBU, SRM, ABV and flavor tags for a recipe",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("calc"); err != nil {
			return err
		}
		f, err := recipe.Load(calcRecipePath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("ferment-temp") {
			f.FermentTemp = &calcFermentTemp
		}
		if cmd.Flags().Changed("mash-temp") {
			f.MashTemp = &calcMashTemp
		}
		return runCalc(cmd.Context(), cmd.OutOrStdout(), f)
	},
}

func runCalc(ctx context.Context, out io.Writer, f *recipe.File) error {
	cat, err := openCatalog(ctx, cfg.Catalog)
	if err != nil {
		return err
	}
	defer cat.Close() //nolint:errcheck

	p, err := f.Predict(ctx, cat, brew.NewCalculator())
	if err != nil {
		return err
	}
	return printJSON(out, p)
}

func init() {
	calcCmd.Flags().StringVar(&calcRecipePath, "recipe", "", "path to recipe YAML file (required)")
	calcCmd.Flags().Float64Var(&calcFermentTemp, "ferment-temp", 0, "fermentation temperature in C (default from recipe)")
	calcCmd.Flags().Float64Var(&calcMashTemp, "mash-temp", 0, "mash temperature in C (default from recipe)")
	_ = calcCmd.MarkFlagRequired("recipe")
	rootCmd.AddCommand(calcCmd)
}
