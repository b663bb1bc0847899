// Package address fetches provinces and syncs them into the address
// namespace.
package address

import (
	"context"

	store "github.com/goliatone/go-store"
	"github.com/goliatone/go-store/internal/hydrate"
	feature "github.com/goliatone/go-store/pkg/features/address"
	"github.com/goliatone/go-store/pkg/fetchsync"
	"github.com/goliatone/go-store/pkg/transport"
)

const (
	DefaultPath   = "/address/provinces"
	DefaultUnwrap = "$.data"
)

// Service reads provinces from the remote API.
type Service struct {
	client  transport.Getter
	path    string
	unwrap  transport.Unwrapper
	decoder *hydrate.Decoder[[]feature.Province]
}

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
			hydrate.WithPostHook(func(_ hydrate.Context, provinces *[]feature.Province) error {
				if *provinces == nil {
					*provinces = []feature.Province{}
				}
				return nil
			}),
		),
	}
}

func (s *Service) GetProvinces(ctx context.Context) ([]feature.Province, error) {
	return transport.Fetch(ctx, s.client, s.path, s.unwrap, s.decoder)
}

func NewFetchHook(st *store.Store, svc *Service, opts ...fetchsync.Option) *fetchsync.Hook[[]feature.Province, []feature.Province] {
	opts = append([]fetchsync.Option{fetchsync.WithResource("provinces")}, opts...)
	return fetchsync.New(st, svc.GetProvinces, feature.NewSetProvinces, feature.Provinces, opts...)
}

// UseFetchProvinces activates a one-shot province fetch.
func UseFetchProvinces(ctx context.Context, st *store.Store, svc *Service, opts ...fetchsync.Option) *fetchsync.Activation[[]feature.Province] {
	return NewFetchHook(st, svc, opts...).Activate(ctx)
}
