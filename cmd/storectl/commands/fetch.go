package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-store/pkg/features/address"
	"github.com/goliatone/go-store/pkg/features/product"
	"github.com/goliatone/go-store/pkg/fetchsync"
	addresssvc "github.com/goliatone/go-store/pkg/services/address"
	productsvc "github.com/goliatone/go-store/pkg/services/product"
)

func (c *cli) productsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "Fetch products and list them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := waitContext(cmd)
			defer cancel()

			activation := productsvc.UseFetchProducts(ctx, c.app.Store, c.app.Products, c.app.FetchOptions()...)
			defer activation.Close()
			_ = activation.Wait(ctx)

			return c.render(cmd, resultOf(activation), func(w io.Writer) {
				writeProducts(w, activation.Data())
			})
		},
	}
}

func (c *cli) provincesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "provinces",
		Short: "Fetch provinces and list them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := waitContext(cmd)
			defer cancel()

			activation := addresssvc.UseFetchProvinces(ctx, c.app.Store, c.app.Provinces, c.app.FetchOptions()...)
			defer activation.Close()
			_ = activation.Wait(ctx)

			return c.render(cmd, resultOf(activation), func(w io.Writer) {
				writeProvinces(w, activation.Data())
			})
		},
	}
}

func resultOf[T any](a *fetchsync.Activation[T]) result {
	r := a.Result()
	out := result{Loading: r.Loading, Data: r.Data, Status: a.Status().String()}
	if err := a.Err(); err != nil {
		out.Error = err.Error()
	}
	return out
}

func writeProducts(w io.Writer, items []product.Product) {
	if len(items) == 0 {
		fmt.Fprintln(w, "no products")
		return
	}
	for _, item := range items {
		fmt.Fprintf(w, "%d\t%s\t%.2f\n", item.ID, item.Title, item.Price)
	}
}

func writeProvinces(w io.Writer, provinces []address.Province) {
	if len(provinces) == 0 {
		fmt.Fprintln(w, "no provinces")
		return
	}
	for _, province := range provinces {
		fmt.Fprintf(w, "%d\t%s\n", province.ProvinceID, province.Name)
	}
}
