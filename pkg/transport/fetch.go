package transport

import (
	"context"
	"fmt"
	"net/http"

	"github.com/goliatone/go-store/internal/hydrate"
)

// Fetch performs GET path, unwraps the envelope and decodes the payload into
// P. A nil unwrap uses Identity; a nil decoder uses plain JSON decoding.
func Fetch[P any](ctx context.Context, getter Getter, path string, unwrap Unwrapper, decoder *hydrate.Decoder[P]) (P, error) {
	var zero P
	if unwrap == nil {
		unwrap = Identity()
	}
	if decoder == nil {
		decoder = hydrate.NewDecoder[P]()
	}

	body, err := getter.Get(ctx, path)
	if err != nil {
		return zero, err
	}
	document, err := ParseDocument(body)
	if err != nil {
		return zero, fmt.Errorf("%s %s: %w", http.MethodGet, path, err)
	}
	payload, err := unwrap.Unwrap(document)
	if err != nil {
		return zero, fmt.Errorf("%s %s: %w", http.MethodGet, path, err)
	}
	return decoder.Decode(hydrate.Context{
		Source: http.MethodGet + " " + path,
		Path:   unwrap.String(),
	}, payload)
}
