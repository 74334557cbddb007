package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/Ramsey-B/primrose/pkg/models"
)

func newCatalogCommand() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Load the catalog once and print it as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			a := newApp(cfg, logger)
			s, err := a.start(cmd.Context())
			defer a.shutdown(context.Background(), s)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")

			if kind == "" {
				return enc.Encode(a.reconciler.LoadCatalog(cmd.Context()))
			}
			parsed, _ := models.ParseKind(kind)
			col, err := a.reconciler.ReloadCollection(cmd.Context(), parsed)
			if err != nil {
				return err
			}
			return enc.Encode(map[string]any{
				"kind":    col.Kind,
				"source":  col.Source,
				"records": col.Records(),
				"error":   col.Error,
			})
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "load a single collection: listings, vendors or tours")
	return cmd
}
