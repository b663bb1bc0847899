package commands

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func apiServer(t *testing.T, productStatus int) string {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/products", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(productStatus)
		_, _ = w.Write([]byte(`{"data":{"items":[{"id":1,"title":"Pen","price":10},{"id":2,"title":"Ink","price":2.5}]}}`))
	})
	mux.HandleFunc("/api/address/provinces", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"province_id":1,"name":"Hanoi"}]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv.URL + "/api"
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("STORECTL_LOG_LEVEL", "error")
	var out, errOut bytes.Buffer
	cmd := NewRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestProductsCommand(t *testing.T) {
	out, err := run(t, "--base-url", apiServer(t, http.StatusOK), "products")
	require.NoError(t, err)
	assert.Equal(t, "1\tPen\t10.00\n2\tInk\t2.50\n", out)
}

func TestProductsCommandFailureStaysLoading(t *testing.T) {
	out, err := run(t, "--base-url", apiServer(t, http.StatusServiceUnavailable), "products", "--json")
	require.NoError(t, err)

	var got result
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.True(t, got.Loading)
	assert.Equal(t, "failed", got.Status)
	assert.Contains(t, got.Error, "status 503")
}

func TestProvincesCommandJSON(t *testing.T) {
	out, err := run(t, "--base-url", apiServer(t, http.StatusOK), "provinces", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"loading":false,"data":[{"province_id":1,"name":"Hanoi"}],"status":"settled"}`, out)
}

func TestSelectExpression(t *testing.T) {
	base := apiServer(t, http.StatusOK)

	out, err := run(t, "--base-url", base, "products", "--select", "len(product.items)")
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)

	out, err = run(t, "--base-url", base, "products", "-s", `sum(product.items, "price")`)
	require.NoError(t, err)
	assert.Equal(t, "12.5\n", out)

	out, err = run(t, "--base-url", base, "--engine", "cel", "provinces", "-s", "address.provinces[0].name")
	require.NoError(t, err)
	assert.Equal(t, "Hanoi\n", out)
}

func TestStateCommand(t *testing.T) {
	out, err := run(t, "--base-url", apiServer(t, http.StatusOK), "state")
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"address": {"provinces": [{"province_id": 1, "name": "Hanoi"}]},
		"product": {"items": [{"id": 1, "title": "Pen", "price": 10}, {"id": 2, "title": "Ink", "price": 2.5}]}
	}`, out)
}

func TestStateDescribe(t *testing.T) {
	out, err := run(t, "--base-url", apiServer(t, http.StatusOK), "state", "--describe")
	require.NoError(t, err)
	assert.Equal(t, "address.provinces\t[]map[string]interface {}\nproduct.items\t[]map[string]interface {}\n", out)
}

func TestStateCommandFailure(t *testing.T) {
	_, err := run(t, "--base-url", apiServer(t, http.StatusInternalServerError), "state")
	assert.ErrorContains(t, err, "fetchsync: fetch failed")
}

func TestInvalidEngine(t *testing.T) {
	_, err := run(t, "--engine", "lua", "products")
	assert.ErrorContains(t, err, "selector.engine")
}
