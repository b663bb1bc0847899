// Package product fetches the catalogue and syncs it into the product
// namespace.
package product

import (
	"context"

	store "github.com/goliatone/go-store"
	"github.com/goliatone/go-store/internal/hydrate"
	feature "github.com/goliatone/go-store/pkg/features/product"
	"github.com/goliatone/go-store/pkg/fetchsync"
	"github.com/goliatone/go-store/pkg/transport"
)

// Defaults for the remote catalogue.
const (
	DefaultPath   = "/products"
	DefaultUnwrap = "$.data.items"
)

// Service reads products from the remote API.
type Service struct {
	client  transport.Getter
	path    string
	unwrap  transport.Unwrapper
	decoder *hydrate.Decoder[[]feature.Product]
}

// NewService builds a Service. Empty path or a nil unwrap fall back to the
// defaults.
func NewService(client transport.Getter, path string, unwrap transport.Unwrapper) *Service {
	if path == "" {
		path = DefaultPath
	}
	if unwrap == nil {
		unwrap = transport.MustJSONPath(DefaultUnwrap)
	}
	return &Service{
		client: client,
		path:   path,
		unwrap: unwrap,
		decoder: hydrate.NewDecoder(
			hydrate.WithPostHook(func(_ hydrate.Context, items *[]feature.Product) error {
				if *items == nil {
					*items = []feature.Product{}
				}
				return nil
			}),
		),
	}
}

// GetProducts performs GET /products and returns the unwrapped items.
func (s *Service) GetProducts(ctx context.Context) ([]feature.Product, error) {
	return transport.Fetch(ctx, s.client, s.path, s.unwrap, s.decoder)
}

// NewFetchHook binds GetProducts to the product namespace.
func NewFetchHook(st *store.Store, svc *Service, opts ...fetchsync.Option) *fetchsync.Hook[[]feature.Product, []feature.Product] {
	opts = append([]fetchsync.Option{fetchsync.WithResource("products")}, opts...)
	return fetchsync.New(st, svc.GetProducts, feature.NewSetItems, feature.Items, opts...)
}

// UseFetchProducts activates a one-shot product fetch whose {loading, data}
// follow the store.
func UseFetchProducts(ctx context.Context, st *store.Store, svc *Service, opts ...fetchsync.Option) *fetchsync.Activation[[]feature.Product] {
	return NewFetchHook(st, svc, opts...).Activate(ctx)
}
