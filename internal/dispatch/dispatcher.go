package dispatch

import (
	"context"
	"fmt"
	"net/url"
	"sort"

	"github.com/spec-kit/resource-api/internal/domain"
	"github.com/spec-kit/resource-api/pkg/util"
)

// Request is the transport-independent view of one resource call.
type Request struct {
	Principal *domain.Principal
	Params    map[string]any
	Query     url.Values
	Body      []byte
}

// Response carries the handler result back to the transport.
type Response struct {
	Status int
	Body   any
}

// Handler processes one matched resource call.
type Handler func(ctx context.Context, req *Request) (*Response, error)

type route struct {
	template Template
	handler  Handler
}

// Dispatcher routes (method, path) pairs to exactly one registered handler.
// The routing table is built at startup; colliding registrations fail then,
// never at request time.
type Dispatcher struct {
	routes map[string][]route
}

// NewDispatcher constructs an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{routes: make(map[string][]route)}
}

// Register compiles the pattern and adds it to the table. Two patterns that
// claim exactly the same paths for the same method are a registration error.
// A literal pattern may coexist with a parameter pattern covering it; the
// table stays sorted so the literal is always matched first.
func (d *Dispatcher) Register(method, pattern string, handler Handler) error {
	tpl, err := ParseTemplate(pattern)
	if err != nil {
		return err
	}
	for _, existing := range d.routes[method] {
		if existing.template.shape() == tpl.shape() {
			return fmt.Errorf("route %s %s collides with %s", method, pattern, existing.template.raw)
		}
	}
	d.routes[method] = append(d.routes[method], route{template: tpl, handler: handler})
	sort.SliceStable(d.routes[method], func(i, j int) bool {
		return d.routes[method][i].template.rank() < d.routes[method][j].template.rank()
	})
	return nil
}

// MustRegister panics on registration error; route tables are built once at
// startup where a collision is a programming mistake.
func (d *Dispatcher) MustRegister(method, pattern string, handler Handler) {
	if err := d.Register(method, pattern, handler); err != nil {
		panic(err)
	}
}

// Dispatch matches and invokes the handler for the request. Templates are
// tried most specific first, so a literal segment always beats a converter
// for the same path. An unmatched path and a matched path with a failed
// parameter conversion are deliberately indistinguishable: both are NotFound.
func (d *Dispatcher) Dispatch(ctx context.Context, method, path string, req *Request) (*Response, error) {
	for _, r := range d.routes[method] {
		params, ok := r.template.Match(path)
		if !ok {
			continue
		}
		if req == nil {
			req = &Request{}
		}
		req.Params = params
		return r.handler(ctx, req)
	}
	return nil, util.NewNotFound("route")
}
