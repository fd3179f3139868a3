package resource

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/resource-api/internal/domain"
	"github.com/spec-kit/resource-api/internal/events"
	"github.com/spec-kit/resource-api/internal/schema"
	"github.com/spec-kit/resource-api/internal/store"
	"github.com/spec-kit/resource-api/pkg/util"
)

// ListParams captures the caller-controlled window over a collection.
type ListParams struct {
	Filters  []store.Filter
	Sort     *store.Sort
	Page     int
	PageSize int
}

// Service implements CRUD semantics for every registered resource type on
// top of the persistence collaborator. Mutations are serialized per key to
// prevent lost updates when two requests race on the same resource.
type Service struct {
	store  store.Store
	events events.Dispatcher
	locks  *keyLock
	now    func() time.Time
}

// NewService builds the CRUD service. The events dispatcher may be nil.
func NewService(st store.Store, ev events.Dispatcher) *Service {
	return &Service{store: st, events: ev, locks: newKeyLock(), now: time.Now}
}

// Create validates the payload, assigns a fresh key and timestamps, and
// persists the document. Unique-field collisions are conflicts.
func (s *Service) Create(ctx context.Context, def Definition, actor *domain.Principal, payload map[string]any) (domain.Document, error) {
	doc, fieldErrs := schema.Validate(def.Schema, payload)
	if fieldErrs != nil {
		return nil, util.NewValidationFailed(fieldErrs)
	}

	key := uuid.NewString()
	s.locks.lock(def.Name + "/" + key)
	defer s.locks.unlock(def.Name + "/" + key)

	if err := s.checkUnique(ctx, def, doc, ""); err != nil {
		return nil, err
	}

	now := s.now().UTC().Format(time.RFC3339Nano)
	doc[domain.FieldID] = key
	doc[domain.FieldCreatedAt] = now
	doc[domain.FieldUpdatedAt] = now

	if err := s.store.Put(ctx, def.Name, key, doc); err != nil {
		return nil, storeErr(err, def.Name)
	}
	s.publish(ctx, events.EventResourceCreated, def.Name, key, actor)
	return doc, nil
}

// Get returns the document for key.
func (s *Service) Get(ctx context.Context, def Definition, key string) (domain.Document, error) {
	doc, err := s.store.Get(ctx, def.Name, key)
	if err != nil {
		return nil, storeErr(err, def.Name)
	}
	return doc, nil
}

// List returns one page of the filtered, sorted collection plus the total
// match count. Pages are 1-based; a non-positive page size is rejected.
func (s *Service) List(ctx context.Context, def Definition, params ListParams) ([]domain.Document, int, error) {
	if params.PageSize <= 0 {
		return nil, 0, util.NewInvalidArgument("page_size must be positive")
	}
	if params.Page <= 0 {
		return nil, 0, util.NewInvalidArgument("page must be positive")
	}
	for _, f := range params.Filters {
		if err := def.knownField(f.Field); err != nil {
			return nil, 0, err
		}
	}
	if params.Sort != nil {
		if err := def.knownField(params.Sort.Field); err != nil {
			return nil, 0, err
		}
	}

	q := store.Query{
		Filters: params.Filters,
		Sort:    params.Sort,
		Offset:  (params.Page - 1) * params.PageSize,
		Limit:   params.PageSize,
	}
	docs, total, err := s.store.Query(ctx, def.Name, q)
	if err != nil {
		return nil, 0, storeErr(err, def.Name)
	}
	return docs, total, nil
}

// Replace overwrites every schema field of an existing document. Fields
// omitted from the payload revert to their schema defaults; only the key
// and created_at survive from the previous version.
func (s *Service) Replace(ctx context.Context, def Definition, actor *domain.Principal, key string, payload map[string]any) (domain.Document, error) {
	doc, fieldErrs := schema.Validate(def.Schema, payload)
	if fieldErrs != nil {
		return nil, util.NewValidationFailed(fieldErrs)
	}

	s.locks.lock(def.Name + "/" + key)
	defer s.locks.unlock(def.Name + "/" + key)

	existing, err := s.store.Get(ctx, def.Name, key)
	if err != nil {
		return nil, storeErr(err, def.Name)
	}
	if err := s.checkUnique(ctx, def, doc, key); err != nil {
		return nil, err
	}

	doc = schema.ApplyDefaults(def.Schema, doc)
	doc[domain.FieldID] = key
	doc[domain.FieldCreatedAt] = existing[domain.FieldCreatedAt]
	doc[domain.FieldUpdatedAt] = s.now().UTC().Format(time.RFC3339Nano)

	if err := s.store.Put(ctx, def.Name, key, doc); err != nil {
		return nil, storeErr(err, def.Name)
	}
	s.publish(ctx, events.EventResourceReplaced, def.Name, key, actor)
	return doc, nil
}

// Patch validates only the supplied fields and merges them onto the
// existing document.
func (s *Service) Patch(ctx context.Context, def Definition, actor *domain.Principal, key string, partial map[string]any) (domain.Document, error) {
	patch, fieldErrs := schema.ValidatePartial(def.Schema, partial)
	if fieldErrs != nil {
		return nil, util.NewValidationFailed(fieldErrs)
	}

	s.locks.lock(def.Name + "/" + key)
	defer s.locks.unlock(def.Name + "/" + key)

	doc, err := s.store.Get(ctx, def.Name, key)
	if err != nil {
		return nil, storeErr(err, def.Name)
	}
	for name, val := range patch {
		doc[name] = val
	}
	if err := s.checkUnique(ctx, def, doc, key); err != nil {
		return nil, err
	}
	doc[domain.FieldUpdatedAt] = s.now().UTC().Format(time.RFC3339Nano)

	if err := s.store.Put(ctx, def.Name, key, doc); err != nil {
		return nil, storeErr(err, def.Name)
	}
	s.publish(ctx, events.EventResourceUpdated, def.Name, key, actor)
	return doc, nil
}

// Delete removes the document. Deleting an absent key reports NotFound
// every time; callers treat repeated deletes as terminal.
func (s *Service) Delete(ctx context.Context, def Definition, actor *domain.Principal, key string) error {
	s.locks.lock(def.Name + "/" + key)
	defer s.locks.unlock(def.Name + "/" + key)

	if err := s.store.Delete(ctx, def.Name, key); err != nil {
		return storeErr(err, def.Name)
	}
	s.publish(ctx, events.EventResourceDeleted, def.Name, key, actor)
	return nil
}

// checkUnique queries each unique field for another document holding the
// same value. excludeKey skips the document being updated.
func (s *Service) checkUnique(ctx context.Context, def Definition, doc domain.Document, excludeKey string) error {
	for _, f := range def.Schema.UniqueFields() {
		val, ok := doc[f.Name]
		if !ok || val == nil {
			continue
		}
		q := store.Query{Filters: []store.Filter{{Field: f.Name, Op: store.OpEquals, Value: fmt.Sprint(val)}}}
		matches, _, err := s.store.Query(ctx, def.Name, q)
		if err != nil {
			return storeErr(err, def.Name)
		}
		for _, m := range matches {
			if m.Key() != excludeKey {
				return util.NewConflict(fmt.Sprintf("%s already in use", f.Name), f.Name)
			}
		}
	}
	return nil
}

func (s *Service) publish(ctx context.Context, typ events.EventType, resourceType, key string, actor *domain.Principal) {
	if s.events == nil {
		return
	}
	actorID := ""
	if actor != nil {
		actorID = actor.ID
	}
	_ = s.events.Publish(ctx, events.Event{
		ID:           uuid.NewString(),
		Type:         typ,
		ResourceType: resourceType,
		ResourceKey:  key,
		ActorID:      actorID,
		Timestamp:    s.now().UTC(),
	})
}

func storeErr(err error, what string) error {
	if errors.Is(err, store.ErrNotFound) {
		return util.NewNotFound(what)
	}
	var domainErr *util.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return util.NewInternal("store_failure", err)
}

func (d Definition) knownField(name string) error {
	if domain.Reserved(name) {
		return nil
	}
	if _, ok := d.Schema.Field(name); !ok {
		return util.NewInvalidArgument(fmt.Sprintf("unknown field %q", name))
	}
	return nil
}
