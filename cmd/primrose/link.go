package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	appctx "github.com/Ramsey-B/primrose/pkg/context"
)

func newLinkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "link <vendor-id> <tour-id>",
		Short: "Link a vendor to a tour",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			ctx := appctx.SetOperator(cmd.Context(), "cli")
			outcome, err := a.reconciler.LinkVendorTour(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), outcome)
			return nil
		},
	}
}
