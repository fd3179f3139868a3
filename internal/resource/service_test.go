package resource

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/resource-api/internal/domain"
	"github.com/spec-kit/resource-api/internal/schema"
	"github.com/spec-kit/resource-api/internal/store"
	"github.com/spec-kit/resource-api/pkg/util"
)

func contactDef() Definition {
	return Definition{
		Name: "contacts",
		Schema: schema.Schema{Fields: []schema.Field{
			{Name: "name", Type: schema.TypeString, Required: true},
			{Name: "email", Type: schema.TypeString, Required: true, Unique: true, Format: schema.FormatEmail},
			{Name: "phone", Type: schema.TypeString},
			{Name: "tier", Type: schema.TypeString, Default: "basic"},
		}},
	}
}

func newTestService() *Service {
	return NewService(store.NewMemory(), nil)
}

func kindOf(t *testing.T, err error) string {
	t.Helper()
	var domainErr *util.DomainError
	require.True(t, errors.As(err, &domainErr), "expected DomainError, got %v", err)
	return domainErr.Kind
}

func TestCreateThenGetReturnsInputPlusAssignedFields(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, contactDef(), nil, map[string]any{
		"name":  "Ann",
		"email": "ann@x.com",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.Key())
	require.NotEmpty(t, created[domain.FieldCreatedAt])
	assert.Equal(t, created[domain.FieldCreatedAt], created[domain.FieldUpdatedAt])

	got, err := svc.Get(ctx, contactDef(), created.Key())
	require.NoError(t, err)
	assert.Equal(t, created, got)
	assert.Equal(t, "Ann", got["name"])
}

func TestCreateRejectsInvalidPayloadWithoutPersisting(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, contactDef(), nil, map[string]any{"email": "ann@x.com"})
	require.Error(t, err)
	assert.Equal(t, util.KindValidationFailed, kindOf(t, err))

	var domainErr *util.DomainError
	require.True(t, errors.As(err, &domainErr))
	require.Len(t, domainErr.FieldErrs, 1)
	assert.Equal(t, "name", domainErr.FieldErrs[0].Field)

	_, total, err := svc.List(ctx, contactDef(), ListParams{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Zero(t, total, "no partial resource may be persisted")
}

func TestCreateUniqueCollisionIsConflict(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, contactDef(), nil, map[string]any{"name": "Ann", "email": "ann@x.com"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, contactDef(), nil, map[string]any{"name": "Ann2", "email": "ann@x.com"})
	require.Error(t, err)
	assert.Equal(t, util.KindConflict, kindOf(t, err))
}

func TestReplaceFullOverwriteLaw(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, contactDef(), nil, map[string]any{
		"name":  "Ann",
		"email": "ann@x.com",
		"phone": "555-0100",
	})
	require.NoError(t, err)

	replaced, err := svc.Replace(ctx, contactDef(), nil, created.Key(), map[string]any{
		"name":  "Ann B",
		"email": "annb@x.com",
	})
	require.NoError(t, err)

	got, err := svc.Get(ctx, contactDef(), created.Key())
	require.NoError(t, err)
	assert.Equal(t, replaced, got)
	assert.Nil(t, got["phone"], "omitted field must revert to its default")
	assert.Equal(t, "basic", got["tier"])
	assert.Equal(t, created.Key(), got.Key())
	assert.Equal(t, created[domain.FieldCreatedAt], got[domain.FieldCreatedAt])
}

func TestReplaceRequiresExistence(t *testing.T) {
	svc := newTestService()
	_, err := svc.Replace(context.Background(), contactDef(), nil, "absent", map[string]any{
		"name":  "Ann",
		"email": "ann@x.com",
	})
	require.Error(t, err)
	assert.Equal(t, util.KindNotFound, kindOf(t, err))
}

func TestPatchPartialUpdateLaw(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, contactDef(), nil, map[string]any{
		"name":  "Ann",
		"email": "ann@x.com",
		"phone": "555-0100",
	})
	require.NoError(t, err)

	patched, err := svc.Patch(ctx, contactDef(), nil, created.Key(), map[string]any{"email": "a2@x.com"})
	require.NoError(t, err)
	assert.Equal(t, "a2@x.com", patched["email"])

	got, err := svc.Get(ctx, contactDef(), created.Key())
	require.NoError(t, err)
	assert.Equal(t, "Ann", got["name"])
	assert.Equal(t, "555-0100", got["phone"])
	assert.Equal(t, created[domain.FieldCreatedAt], got[domain.FieldCreatedAt])
}

func TestDeleteIsTerminal(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, contactDef(), nil, map[string]any{"name": "Ann", "email": "ann@x.com"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, contactDef(), nil, created.Key()))

	_, err = svc.Get(ctx, contactDef(), created.Key())
	assert.Equal(t, util.KindNotFound, kindOf(t, err))

	err = svc.Delete(ctx, contactDef(), nil, created.Key())
	assert.Equal(t, util.KindNotFound, kindOf(t, err))
}

func TestListPaginationReconstructsCollection(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	def := contactDef()

	const n = 23
	for i := 0; i < n; i++ {
		_, err := svc.Create(ctx, def, nil, map[string]any{
			"name":  fmt.Sprintf("c-%02d", i),
			"email": fmt.Sprintf("c%02d@x.com", i),
		})
		require.NoError(t, err)
	}

	for _, pageSize := range []int{1, 4, 7, 23, 50} {
		var seen []string
		page := 1
		for {
			docs, total, err := svc.List(ctx, def, ListParams{
				Page:     page,
				PageSize: pageSize,
				Sort:     &store.Sort{Field: "name"},
			})
			require.NoError(t, err)
			assert.Equal(t, n, total)
			if len(docs) == 0 {
				break
			}
			for _, doc := range docs {
				seen = append(seen, doc["name"].(string))
			}
			page++
		}
		require.Len(t, seen, n, "pageSize=%d", pageSize)
		for i := 1; i < len(seen); i++ {
			assert.Less(t, seen[i-1], seen[i], "ordering must be stable with no duplicates")
		}
	}
}

func TestListRejectsBadPaging(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, _, err := svc.List(ctx, contactDef(), ListParams{Page: 1, PageSize: 0})
	assert.Equal(t, util.KindInvalidArgument, kindOf(t, err))

	_, _, err = svc.List(ctx, contactDef(), ListParams{Page: 0, PageSize: 10})
	assert.Equal(t, util.KindInvalidArgument, kindOf(t, err))

	_, _, err = svc.List(ctx, contactDef(), ListParams{
		Page: 1, PageSize: 10,
		Filters: []store.Filter{{Field: "nope", Op: store.OpEquals, Value: "x"}},
	})
	assert.Equal(t, util.KindInvalidArgument, kindOf(t, err))
}

func TestConcurrentDisjointPatchesBothSurvive(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	def := contactDef()

	created, err := svc.Create(ctx, def, nil, map[string]any{"name": "Ann", "email": "ann@x.com"})
	require.NoError(t, err)

	const rounds = 50
	for i := 0; i < rounds; i++ {
		phone := fmt.Sprintf("555-%04d", i)
		tier := []string{"basic", "pro"}[i%2]

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := svc.Patch(ctx, def, nil, created.Key(), map[string]any{"phone": phone})
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := svc.Patch(ctx, def, nil, created.Key(), map[string]any{"tier": tier})
			assert.NoError(t, err)
		}()
		wg.Wait()

		got, err := svc.Get(ctx, def, created.Key())
		require.NoError(t, err)
		assert.Equal(t, phone, got["phone"], "round %d lost the phone patch", i)
		assert.Equal(t, tier, got["tier"], "round %d lost the tier patch", i)
	}
}
