package store

import (
	"context"
	"errors"
	"time"

	"github.com/spec-kit/resource-api/internal/domain"
	"github.com/spec-kit/resource-api/pkg/util"
)

// WithTimeout wraps a Store so every call carries a deadline. A deadline
// hit surfaces as an Internal error with a store_timeout reason rather
// than leaking a context error to handlers.
func WithTimeout(inner Store, timeout time.Duration) Store {
	return &timeoutStore{inner: inner, timeout: timeout}
}

type timeoutStore struct {
	inner   Store
	timeout time.Duration
}

func (t *timeoutStore) Get(ctx context.Context, typ, key string) (domain.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	doc, err := t.inner.Get(ctx, typ, key)
	return doc, translate(err)
}

func (t *timeoutStore) Put(ctx context.Context, typ, key string, doc domain.Document) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return translate(t.inner.Put(ctx, typ, key, doc))
}

func (t *timeoutStore) Delete(ctx context.Context, typ, key string) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return translate(t.inner.Delete(ctx, typ, key))
}

func (t *timeoutStore) Query(ctx context.Context, typ string, q Query) ([]domain.Document, int, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	docs, total, err := t.inner.Query(ctx, typ, q)
	return docs, total, translate(err)
}

func translate(err error) error {
	if err == nil || errors.Is(err, ErrNotFound) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return util.NewInternal("store_timeout", err)
	}
	return err
}
