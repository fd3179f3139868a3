package resource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/spec-kit/resource-api/internal/api/dto"
	"github.com/spec-kit/resource-api/internal/dispatch"
	"github.com/spec-kit/resource-api/internal/store"
	"github.com/spec-kit/resource-api/pkg/util"
)

// List query parameters reserved for paging and ordering; everything else
// is treated as a field filter.
const (
	paramPage     = "page"
	paramPageSize = "page_size"
	paramSort     = "sort"
	paramOrder    = "order"

	containsSuffix = "__contains"

	defaultPageSize = 20
)

// Registry maps resource type names to their definitions and binds the
// standard CRUD routes onto the dispatcher at startup.
type Registry struct {
	service *Service
	defs    map[string]Definition
}

// NewRegistry constructs an empty registry.
func NewRegistry(service *Service) *Registry {
	return &Registry{service: service, defs: make(map[string]Definition)}
}

// Register validates the definition and records it. Registering the same
// name twice is a startup error.
func (r *Registry) Register(def Definition) error {
	if err := def.validate(); err != nil {
		return err
	}
	if _, exists := r.defs[def.Name]; exists {
		return fmt.Errorf("resource %q already registered", def.Name)
	}
	r.defs[def.Name] = def
	return nil
}

// Definition looks up a registered resource type.
func (r *Registry) Definition(name string) (Definition, bool) {
	def, ok := r.defs[name]
	return def, ok
}

// Mount binds collection and item routes for every registered definition.
func (r *Registry) Mount(d *dispatch.Dispatcher) error {
	for name := range r.defs {
		def := r.defs[name]
		collection := "/" + def.Name
		item := collection + "/{id:uuid}"

		routes := []struct {
			method  string
			pattern string
			handler dispatch.Handler
		}{
			{http.MethodGet, collection, r.listHandler(def)},
			{http.MethodPost, collection, r.createHandler(def)},
			{http.MethodGet, item, r.getHandler(def)},
			{http.MethodPut, item, r.replaceHandler(def)},
			{http.MethodPatch, item, r.patchHandler(def)},
			{http.MethodDelete, item, r.deleteHandler(def)},
		}
		for _, rt := range routes {
			if err := d.Register(rt.method, rt.pattern, rt.handler); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Registry) listHandler(def Definition) dispatch.Handler {
	return func(ctx context.Context, req *dispatch.Request) (*dispatch.Response, error) {
		if err := checkRead(def, req); err != nil {
			return nil, err
		}
		params, err := parseListParams(def, req.Query)
		if err != nil {
			return nil, err
		}
		docs, total, err := r.service.List(ctx, def, params)
		if err != nil {
			return nil, err
		}
		return &dispatch.Response{
			Status: http.StatusOK,
			Body: dto.ListEnvelope{
				Data:       docs,
				Pagination: dto.Pagination{Page: params.Page, PageSize: params.PageSize, Total: total},
			},
		}, nil
	}
}

func (r *Registry) createHandler(def Definition) dispatch.Handler {
	return func(ctx context.Context, req *dispatch.Request) (*dispatch.Response, error) {
		if err := checkWrite(def, req); err != nil {
			return nil, err
		}
		payload, err := parsePayload(req.Body)
		if err != nil {
			return nil, err
		}
		doc, err := r.service.Create(ctx, def, req.Principal, payload)
		if err != nil {
			return nil, err
		}
		return &dispatch.Response{Status: http.StatusCreated, Body: dto.Envelope{Data: doc}}, nil
	}
}

func (r *Registry) getHandler(def Definition) dispatch.Handler {
	return func(ctx context.Context, req *dispatch.Request) (*dispatch.Response, error) {
		if err := checkRead(def, req); err != nil {
			return nil, err
		}
		doc, err := r.service.Get(ctx, def, paramKey(req))
		if err != nil {
			return nil, err
		}
		return &dispatch.Response{Status: http.StatusOK, Body: dto.Envelope{Data: doc}}, nil
	}
}

func (r *Registry) replaceHandler(def Definition) dispatch.Handler {
	return func(ctx context.Context, req *dispatch.Request) (*dispatch.Response, error) {
		if err := checkWrite(def, req); err != nil {
			return nil, err
		}
		payload, err := parsePayload(req.Body)
		if err != nil {
			return nil, err
		}
		doc, err := r.service.Replace(ctx, def, req.Principal, paramKey(req), payload)
		if err != nil {
			return nil, err
		}
		return &dispatch.Response{Status: http.StatusOK, Body: dto.Envelope{Data: doc}}, nil
	}
}

func (r *Registry) patchHandler(def Definition) dispatch.Handler {
	return func(ctx context.Context, req *dispatch.Request) (*dispatch.Response, error) {
		if err := checkWrite(def, req); err != nil {
			return nil, err
		}
		payload, err := parsePayload(req.Body)
		if err != nil {
			return nil, err
		}
		doc, err := r.service.Patch(ctx, def, req.Principal, paramKey(req), payload)
		if err != nil {
			return nil, err
		}
		return &dispatch.Response{Status: http.StatusOK, Body: dto.Envelope{Data: doc}}, nil
	}
}

func (r *Registry) deleteHandler(def Definition) dispatch.Handler {
	return func(ctx context.Context, req *dispatch.Request) (*dispatch.Response, error) {
		if err := checkWrite(def, req); err != nil {
			return nil, err
		}
		if err := r.service.Delete(ctx, def, req.Principal, paramKey(req)); err != nil {
			return nil, err
		}
		return &dispatch.Response{Status: http.StatusNoContent}, nil
	}
}

func paramKey(req *dispatch.Request) string {
	key, _ := req.Params["id"].(string)
	return key
}

func checkRead(def Definition, req *dispatch.Request) error {
	if def.PublicRead {
		return nil
	}
	if req.Principal == nil {
		return util.NewUnauthenticated("authentication required")
	}
	if def.ReadPermission != "" && !req.Principal.Can(def.ReadPermission) {
		return util.NewForbidden("insufficient permission")
	}
	return nil
}

func checkWrite(def Definition, req *dispatch.Request) error {
	if req.Principal == nil {
		return util.NewUnauthenticated("authentication required")
	}
	if !req.Principal.Can(def.writePermission()) {
		return util.NewForbidden("insufficient permission")
	}
	return nil
}

func parsePayload(body []byte) (map[string]any, error) {
	if len(body) == 0 {
		return nil, util.NewInvalidArgument("request body required")
	}
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, util.NewInvalidArgument("request body must be a JSON object")
	}
	return payload, nil
}

// parseListParams maps the query string onto ListParams. page and page_size
// default to 1 and 20; sort/order control ordering; any other key is an
// equality filter, or a substring filter with the __contains suffix.
func parseListParams(def Definition, query url.Values) (ListParams, error) {
	params := ListParams{Page: 1, PageSize: defaultPageSize}

	if raw := query.Get(paramPage); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return ListParams{}, util.NewInvalidArgument("page must be an integer")
		}
		params.Page = page
	}
	if raw := query.Get(paramPageSize); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return ListParams{}, util.NewInvalidArgument("page_size must be an integer")
		}
		params.PageSize = size
	}
	if field := query.Get(paramSort); field != "" {
		descending := false
		switch strings.ToLower(query.Get(paramOrder)) {
		case "", "asc":
		case "desc":
			descending = true
		default:
			return ListParams{}, util.NewInvalidArgument("order must be asc or desc")
		}
		params.Sort = &store.Sort{Field: field, Descending: descending}
	}

	for key, values := range query {
		if key == paramPage || key == paramPageSize || key == paramSort || key == paramOrder {
			continue
		}
		if len(values) == 0 {
			continue
		}
		op := store.OpEquals
		field := key
		if strings.HasSuffix(key, containsSuffix) {
			op = store.OpContains
			field = strings.TrimSuffix(key, containsSuffix)
		}
		params.Filters = append(params.Filters, store.Filter{Field: field, Op: op, Value: values[0]})
	}
	return params, nil
}
