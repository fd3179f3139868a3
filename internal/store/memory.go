package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/spec-kit/resource-api/internal/domain"
)

// Memory is an in-process Store used as the default backend and as the
// test double for the CRUD service.
type Memory struct {
	mu    sync.RWMutex
	types map[string]map[string]domain.Document
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{types: make(map[string]map[string]domain.Document)}
}

func (m *Memory) Get(ctx context.Context, typ, key string) (domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.types[typ][key]
	if !ok {
		return nil, ErrNotFound
	}
	return doc.Clone(), nil
}

func (m *Memory) Put(ctx context.Context, typ, key string, doc domain.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	coll, ok := m.types[typ]
	if !ok {
		coll = make(map[string]domain.Document)
		m.types[typ] = coll
	}
	coll[key] = doc.Clone()
	return nil
}

func (m *Memory) Delete(ctx context.Context, typ, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	coll := m.types[typ]
	if _, ok := coll[key]; !ok {
		return ErrNotFound
	}
	delete(coll, key)
	return nil
}

func (m *Memory) Query(ctx context.Context, typ string, q Query) ([]domain.Document, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	m.mu.RLock()
	matched := make([]domain.Document, 0, len(m.types[typ]))
	for _, doc := range m.types[typ] {
		if matches(doc, q.Filters) {
			matched = append(matched, doc.Clone())
		}
	}
	m.mu.RUnlock()

	sortDocs(matched, q.Sort)
	total := len(matched)

	start := q.Offset
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := total
	if q.Limit > 0 && start+q.Limit < end {
		end = start + q.Limit
	}
	return matched[start:end], total, nil
}

func matches(doc domain.Document, filters []Filter) bool {
	for _, f := range filters {
		val, ok := doc[f.Field]
		if !ok || val == nil {
			return false
		}
		str := stringify(val)
		switch f.Op {
		case OpContains:
			if !strings.Contains(str, f.Value) {
				return false
			}
		default:
			if str != f.Value {
				return false
			}
		}
	}
	return true
}

// sortDocs orders by the sort field, breaking ties by key so paging over the
// collection is stable.
func sortDocs(docs []domain.Document, s *Sort) {
	field := domain.FieldID
	desc := false
	if s != nil {
		field = s.Field
		desc = s.Descending
	}
	sort.SliceStable(docs, func(i, j int) bool {
		cmp := compare(docs[i][field], docs[j][field])
		if cmp == 0 {
			cmp = strings.Compare(docs[i].Key(), docs[j].Key())
		}
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
}

func compare(a, b any) int {
	an, aNum := asFloat(a)
	bn, bNum := asFloat(b)
	if aNum && bNum {
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		}
		return 0
	}
	return strings.Compare(stringify(a), stringify(b))
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

func stringify(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
