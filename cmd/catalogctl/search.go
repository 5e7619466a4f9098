package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/config"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/domain"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/engine/memory"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/internal/service"
	"github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/logger"
)

type searchOptions struct {
	file     string
	kind     string
	query    string
	category string
	location string
	minPrice int64
	maxPrice int64
	rating   string
	sort     string
	verified bool
	inStock  bool
	page     int
	perPage  int
}

func newSearchCmd(root *rootOptions) *cobra.Command {
	opts := &searchOptions{}
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Run the filter pipeline over fixtures and print JSON",
		Long: `Load listings into an in-memory engine and run one search, printing
the result page as JSON. Useful for checking filter and sort behavior
without a running service.`,
		Example: `  catalogctl search --kind product --category Electronics --sort price-low
  catalogctl search --kind vendor --location Wuse --verified --rating 4.5+`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := offlineService(cmd.Context(), root, opts.file, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			f := domain.Defaults()
			f.Query = opts.query
			f.Category = opts.category
			f.Location = opts.location
			f.MinRating = opts.rating
			f.Sort = opts.sort
			f.VerifiedOnly = opts.verified
			f.InStockOnly = opts.inStock
			if cmd.Flags().Changed("min-price") {
				f.MinPrice = &opts.minPrice
			}
			if cmd.Flags().Changed("max-price") {
				f.MaxPrice = &opts.maxPrice
			}

			result, err := svc.Search(cmd.Context(), &domain.SearchQuery{
				Kind:    domain.Kind(opts.kind),
				Filters: f,
				Page:    opts.page,
				PerPage: opts.perPage,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&opts.file, "file", "f", "", "YAML listings file (default: bundled fixtures)")
	fl.StringVar(&opts.kind, "kind", "", "Listing kind: vendor or product (default: both)")
	fl.StringVarP(&opts.query, "query", "q", "", "Free-text query")
	fl.StringVar(&opts.category, "category", domain.All, "Category, or all")
	fl.StringVar(&opts.location, "location", domain.All, "Location, or all")
	fl.Int64Var(&opts.minPrice, "min-price", 0, "Minimum price in naira")
	fl.Int64Var(&opts.maxPrice, "max-price", 0, "Maximum price in naira")
	fl.StringVar(&opts.rating, "rating", domain.All, "Rating floor such as 4+ or 4.5+")
	fl.StringVar(&opts.sort, "sort", domain.SortFeatured, "Sort key")
	fl.BoolVar(&opts.verified, "verified", false, "Only verified listings")
	fl.BoolVar(&opts.inStock, "in-stock", false, "Only listings in stock")
	fl.IntVar(&opts.page, "page", 1, "Page number")
	fl.IntVar(&opts.perPage, "per-page", 20, "Results per page")
	return cmd
}

func newAssistCmd(root *rootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:     "assist <message>",
		Short:   "Ask the shopping assistant a question over fixtures",
		Example: `  catalogctl assist "verified fashion vendors in Wuse"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := offlineService(cmd.Context(), root, file, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			resp, err := svc.Assist(cmd.Context(), service.AssistRequest{Message: strings.Join(args, " ")})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML listings file (default: bundled fixtures)")
	return cmd
}

// offlineService builds a catalog service over an in-memory engine seeded
// from file or the bundled fixtures.
func offlineService(ctx context.Context, root *rootOptions, file string, logs io.Writer) (*service.CatalogService, error) {
	listings, err := loadListings(file)
	if err != nil {
		return nil, err
	}
	svc := service.NewCatalogService(service.Deps{
		Engine: memory.New(),
		Logger: logger.NewWithWriter(config.ServiceName, root.logLevel, logs),
	})
	if _, err := svc.Seed(ctx, listings); err != nil {
		return nil, err
	}
	return svc, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
