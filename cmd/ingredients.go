package main

import (
	"context"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/brew-cli/internal/catalog"
	"github.com/sells-group/brew-cli/internal/export"
	"github.com/sells-group/brew-cli/internal/fetcher"
)

var ingredientsCmd = &cobra.Command{
	Use:   "ingredients",
	Short: "Inspect and load the ingredient catalog",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := rootCmd.PersistentPreRunE(cmd, args); err != nil {
			return err
		}
		return cfg.Validate("ingredients")
	},
}

var ingredientsListKind string

var ingredientsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the configured catalog as JSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runIngredientsList(cmd.Context(), cmd.OutOrStdout(), catalog.Kind(ingredientsListKind))
	},
}

func runIngredientsList(ctx context.Context, out io.Writer, kind catalog.Kind) error {
	cat, err := openCatalog(ctx, cfg.Catalog)
	if err != nil {
		return err
	}
	defer cat.Close() //nolint:errcheck

	d, err := cat.List(ctx)
	if err != nil {
		return err
	}
	switch kind {
	case "":
		return printJSON(out, d)
	case catalog.KindGrains:
		return printJSON(out, d.Grains)
	case catalog.KindHops:
		return printJSON(out, d.Hops)
	case catalog.KindYeasts:
		return printJSON(out, d.Yeasts)
	default:
		return eris.Errorf("unknown kind %q, want grains, hops or yeasts", kind)
	}
}

var (
	importSource   string
	importKind     string
	importDefaults bool
)

var ingredientsImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import ingredients from YAML, JSON, CSV or XLSX into the sqlite or postgres catalog",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if importSource == "" && !importDefaults {
			return eris.New("one of --file or --defaults is required")
		}
		return runIngredientsImport(cmd.Context(), importSource, catalog.Kind(importKind), importDefaults)
	},
}

func runIngredientsImport(ctx context.Context, source string, kind catalog.Kind, defaults bool) error {
	wc, err := openWritableCatalog(ctx, cfg.Catalog)
	if err != nil {
		return err
	}
	defer wc.Close() //nolint:errcheck

	var batches []*catalog.Data
	if defaults {
		batches = append(batches, catalog.DefaultData())
	}
	if source != "" {
		d, err := catalog.ReadSource(ctx, fetcher.NewHTTPFetcher(fetcher.HTTPOptions{}), source, kind)
		if err != nil {
			return err
		}
		batches = append(batches, d)
	}

	total := 0
	for _, d := range batches {
		n, err := wc.Import(ctx, d)
		if err != nil {
			return err
		}
		total += n
	}

	zap.L().Info("ingredient import complete",
		zap.String("driver", cfg.Catalog.Driver),
		zap.String("source", source),
		zap.Bool("defaults", defaults),
		zap.Int("rows", total),
	)
	return nil
}

var exportPath string

var ingredientsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the configured catalog to an XLSX workbook",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		cat, err := openCatalog(ctx, cfg.Catalog)
		if err != nil {
			return err
		}
		defer cat.Close() //nolint:errcheck

		d, err := cat.List(ctx)
		if err != nil {
			return err
		}
		return export.SaveCatalog(exportPath, d)
	},
}

func init() {
	ingredientsListCmd.Flags().StringVar(&ingredientsListKind, "kind", "", "only list grains, hops or yeasts")

	ingredientsImportCmd.Flags().StringVar(&importSource, "file", "", "catalog file path or http(s) URL")
	ingredientsImportCmd.Flags().StringVar(&importKind, "kind", "", "table held by a CSV file: grains, hops or yeasts (default from file name)")
	ingredientsImportCmd.Flags().BoolVar(&importDefaults, "defaults", false, "import the built-in ingredient set")

	ingredientsExportCmd.Flags().StringVar(&exportPath, "xlsx", "", "output XLSX path (required)")
	_ = ingredientsExportCmd.MarkFlagRequired("xlsx")

	ingredientsCmd.AddCommand(ingredientsListCmd, ingredientsImportCmd, ingredientsExportCmd)
	rootCmd.AddCommand(ingredientsCmd)
}
