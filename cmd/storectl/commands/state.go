package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	addresssvc "github.com/goliatone/go-store/pkg/services/address"
	productsvc "github.com/goliatone/go-store/pkg/services/product"
)

func (c *cli) stateCmd() *cobra.Command {
	var describe bool
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Fetch every namespace concurrently and print the resulting tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := waitContext(cmd)
			defer cancel()

			products := productsvc.UseFetchProducts(ctx, c.app.Store, c.app.Products, c.app.FetchOptions()...)
			defer products.Close()
			provinces := addresssvc.UseFetchProvinces(ctx, c.app.Store, c.app.Provinces, c.app.FetchOptions()...)
			defer provinces.Close()

			g, gctx := errgroup.WithContext(ctx)
			for _, a := range []interface{ Wait(context.Context) error }{products, provinces} {
				g.Go(func() error { return a.Wait(gctx) })
			}
			if err := g.Wait(); err != nil {
				return err
			}

			tree := c.app.Store.GetState()
			if describe {
				fields, err := tree.Describe()
				if err != nil {
					return err
				}
				return c.print(cmd.OutOrStdout(), fields, func(w io.Writer) {
					for _, field := range fields {
						fmt.Fprintf(w, "%s\t%s\n", field.Path, field.Type)
					}
				})
			}
			return c.render(cmd, result{Data: tree, Status: fmt.Sprintf("v%d", tree.Version())}, func(w io.Writer) {
				data, err := json.MarshalIndent(tree, "", "  ")
				if err != nil {
					fmt.Fprintf(w, "error: %v\n", err)
					return
				}
				fmt.Fprintln(w, string(data))
			})
		},
	}
	cmd.Flags().BoolVar(&describe, "describe", false, "print field paths and types instead of values")
	return cmd
}
