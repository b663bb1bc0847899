package transport

import (
	"errors"
	"fmt"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

// ErrNoMatch is returned when an unwrapper finds nothing in the document.
var ErrNoMatch = errors.New("transport: unwrap path matched nothing")

// Unwrapper extracts the payload from a parsed response document.
type Unwrapper interface {
	Unwrap(document any) (any, error)
	String() string
}

type jsonPathUnwrapper struct {
	source string
	expr   jp.Expr
}

// JSONPath returns an Unwrapper selecting expr, e.g. "$.data.items". A single
// match is returned as-is; several matches come back as a []any.
func JSONPath(expr string) (Unwrapper, error) {
	parsed, err := jp.ParseString(expr)
	if err != nil {
		return nil, fmt.Errorf("transport: parse jsonpath %q: %w", expr, err)
	}
	return &jsonPathUnwrapper{source: expr, expr: parsed}, nil
}

// MustJSONPath is JSONPath for static expressions.
func MustJSONPath(expr string) Unwrapper {
	u, err := JSONPath(expr)
	if err != nil {
		panic(err)
	}
	return u
}

func (u *jsonPathUnwrapper) Unwrap(document any) (any, error) {
	results := u.expr.Get(document)
	switch len(results) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrNoMatch, u.source)
	case 1:
		return results[0], nil
	default:
		return results, nil
	}
}

func (u *jsonPathUnwrapper) String() string {
	return u.source
}

type identity struct{}

// Identity returns the whole document.
func Identity() Unwrapper {
	return identity{}
}

func (identity) Unwrap(document any) (any, error) {
	return document, nil
}

func (identity) String() string {
	return "$"
}

// ParseDocument parses a JSON body into generic maps and slices.
func ParseDocument(body []byte) (any, error) {
	document, err := oj.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("transport: parse body: %w", err)
	}
	return document, nil
}
