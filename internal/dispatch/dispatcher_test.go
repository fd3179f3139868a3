package dispatch

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/resource-api/pkg/util"
)

func echoHandler(name string) Handler {
	return func(_ context.Context, req *Request) (*Response, error) {
		return &Response{Status: http.StatusOK, Body: map[string]any{"route": name, "params": req.Params}}, nil
	}
}

func notFoundKind(t *testing.T, err error) {
	t.Helper()
	var domainErr *util.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, util.KindNotFound, domainErr.Kind)
}

func TestDispatchMatchesTypedParams(t *testing.T) {
	d := NewDispatcher()
	require.NoError(t, d.Register(http.MethodGet, "/orders/{id:int}", echoHandler("order")))

	resp, err := d.Dispatch(context.Background(), http.MethodGet, "/orders/42", &Request{})
	require.NoError(t, err)
	body := resp.Body.(map[string]any)
	assert.Equal(t, int64(42), body["params"].(map[string]any)["id"])
}

func TestDispatchConversionFailureIsNotFound(t *testing.T) {
	d := NewDispatcher()
	require.NoError(t, d.Register(http.MethodGet, "/orders/{id:int}", echoHandler("order")))

	_, err := d.Dispatch(context.Background(), http.MethodGet, "/orders/not-a-number", &Request{})
	notFoundKind(t, err)
}

func TestDispatchUUIDConverter(t *testing.T) {
	d := NewDispatcher()
	require.NoError(t, d.Register(http.MethodGet, "/contacts/{id:uuid}", echoHandler("contact")))

	resp, err := d.Dispatch(context.Background(), http.MethodGet, "/contacts/a2aa2060-463c-4f31-b1ba-7254b1facd2d", &Request{})
	require.NoError(t, err)
	body := resp.Body.(map[string]any)
	assert.Equal(t, "a2aa2060-463c-4f31-b1ba-7254b1facd2d", body["params"].(map[string]any)["id"])

	_, err = d.Dispatch(context.Background(), http.MethodGet, "/contacts/12345", &Request{})
	notFoundKind(t, err)
}

func TestDispatchTrailingSlashEquivalence(t *testing.T) {
	d := NewDispatcher()
	require.NoError(t, d.Register(http.MethodGet, "/contacts", echoHandler("list")))

	for _, path := range []string{"/contacts", "/contacts/"} {
		resp, err := d.Dispatch(context.Background(), http.MethodGet, path, &Request{})
		require.NoError(t, err, path)
		assert.Equal(t, http.StatusOK, resp.Status)
	}
}

func TestDispatchUnknownMethodOrPathIsNotFound(t *testing.T) {
	d := NewDispatcher()
	require.NoError(t, d.Register(http.MethodGet, "/contacts", echoHandler("list")))

	_, err := d.Dispatch(context.Background(), http.MethodDelete, "/contacts", &Request{})
	notFoundKind(t, err)

	_, err = d.Dispatch(context.Background(), http.MethodGet, "/unknown", &Request{})
	notFoundKind(t, err)
}

func TestRegisterRejectsCollidingTemplates(t *testing.T) {
	d := NewDispatcher()
	require.NoError(t, d.Register(http.MethodGet, "/orders/{id:int}", echoHandler("a")))

	err := d.Register(http.MethodGet, "/orders/{key:uuid}", echoHandler("b"))
	require.Error(t, err)

	// Same shape on another method is fine.
	assert.NoError(t, d.Register(http.MethodPut, "/orders/{id:int}", echoHandler("c")))
}

func TestDispatchLiteralBeatsConverter(t *testing.T) {
	orderings := map[string][]string{
		"literal-first": {"/orders/pending", "/orders/{id}"},
		"param-first":   {"/orders/{id}", "/orders/pending"},
	}
	for name, patterns := range orderings {
		t.Run(name, func(t *testing.T) {
			d := NewDispatcher()
			for _, pattern := range patterns {
				label := "literal"
				if strings.Contains(pattern, "{") {
					label = "param"
				}
				require.NoError(t, d.Register(http.MethodGet, pattern, echoHandler(label)))
			}

			resp, err := d.Dispatch(context.Background(), http.MethodGet, "/orders/pending", &Request{})
			require.NoError(t, err)
			assert.Equal(t, "literal", resp.Body.(map[string]any)["route"])

			resp, err = d.Dispatch(context.Background(), http.MethodGet, "/orders/shipped", &Request{})
			require.NoError(t, err)
			assert.Equal(t, "param", resp.Body.(map[string]any)["route"])
		})
	}
}

func TestDispatchTypedConverterBeatsGreedy(t *testing.T) {
	d := NewDispatcher()
	require.NoError(t, d.Register(http.MethodGet, "/files/{rest:path}", echoHandler("greedy")))
	require.NoError(t, d.Register(http.MethodGet, "/files/{name}", echoHandler("typed")))

	resp, err := d.Dispatch(context.Background(), http.MethodGet, "/files/readme.txt", &Request{})
	require.NoError(t, err)
	assert.Equal(t, "typed", resp.Body.(map[string]any)["route"])

	resp, err = d.Dispatch(context.Background(), http.MethodGet, "/files/docs/readme.txt", &Request{})
	require.NoError(t, err)
	assert.Equal(t, "greedy", resp.Body.(map[string]any)["route"])
}

func TestRegisterRejectsMalformedPatterns(t *testing.T) {
	d := NewDispatcher()
	assert.Error(t, d.Register(http.MethodGet, "orders", echoHandler("a")))
	assert.Error(t, d.Register(http.MethodGet, "/orders/{id:bogus}", echoHandler("a")))
	assert.Error(t, d.Register(http.MethodGet, "/orders/{}", echoHandler("a")))
	assert.Error(t, d.Register(http.MethodGet, "/files/{rest:path}/meta", echoHandler("a")))
	assert.Panics(t, func() { d.MustRegister(http.MethodGet, "orders", echoHandler("a")) })
}

func TestPathConverterConsumesSlashes(t *testing.T) {
	d := NewDispatcher()
	d.MustRegister(http.MethodGet, "/files/{rest:path}", echoHandler("files"))

	resp, err := d.Dispatch(context.Background(), http.MethodGet, "/files/a/b/c.txt", &Request{})
	require.NoError(t, err)
	body := resp.Body.(map[string]any)
	assert.Equal(t, "a/b/c.txt", body["params"].(map[string]any)["rest"])
}
