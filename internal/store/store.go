package store

import (
	"context"
	"errors"

	"github.com/spec-kit/resource-api/internal/domain"
)

// ErrNotFound is returned when no document exists for the given key.
var ErrNotFound = errors.New("document not found")

// FilterOp enumerates supported per-field predicates.
type FilterOp string

const (
	OpEquals   FilterOp = "eq"
	OpContains FilterOp = "contains"
)

// Filter is one per-field predicate; a query's filters are a conjunction.
type Filter struct {
	Field string
	Op    FilterOp
	Value string
}

// Sort orders a query result by one field. Ties are broken by document key
// so the ordering is stable across pages.
type Sort struct {
	Field      string
	Descending bool
}

// Query describes a filtered, ordered window over one collection.
type Query struct {
	Filters []Filter
	Sort    *Sort
	Offset  int
	Limit   int
}

// Store is the persistence collaborator. The CRUD service is the sole
// caller; it never assumes a specific backing engine.
type Store interface {
	Get(ctx context.Context, typ, key string) (domain.Document, error)
	Put(ctx context.Context, typ, key string, doc domain.Document) error
	Delete(ctx context.Context, typ, key string) error
	// Query returns the requested window plus the total number of documents
	// matching the filters before the window was applied.
	Query(ctx context.Context, typ string, q Query) ([]domain.Document, int, error)
}
