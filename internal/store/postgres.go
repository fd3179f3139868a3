package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/resource-api/internal/domain"
)

// Postgres persists documents as JSONB rows keyed by (type, key).
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres returns a pgx-backed Store.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) Get(ctx context.Context, typ, key string) (domain.Document, error) {
	const query = `SELECT doc FROM resources WHERE resource_type=$1 AND resource_key=$2`

	var doc domain.Document
	if err := p.pool.QueryRow(ctx, query, typ, key).Scan(&doc); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (p *Postgres) Put(ctx context.Context, typ, key string, doc domain.Document) error {
	const query = `
        INSERT INTO resources (resource_type, resource_key, doc)
        VALUES ($1, $2, $3)
        ON CONFLICT (resource_type, resource_key) DO UPDATE SET doc = EXCLUDED.doc`

	_, err := p.pool.Exec(ctx, query, typ, key, doc)
	return err
}

func (p *Postgres) Delete(ctx context.Context, typ, key string) error {
	const query = `DELETE FROM resources WHERE resource_type=$1 AND resource_key=$2`

	cmd, err := p.pool.Exec(ctx, query, typ, key)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) Query(ctx context.Context, typ string, q Query) ([]domain.Document, int, error) {
	where, args := buildWhere(typ, q.Filters)

	var total int
	countSQL := "SELECT COUNT(*) FROM resources " + where
	if err := p.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortField := domain.FieldID
	direction := "ASC"
	if q.Sort != nil {
		sortField = q.Sort.Field
		if q.Sort.Descending {
			direction = "DESC"
		}
	}
	args = append(args, sortField)
	orderBy := fmt.Sprintf(" ORDER BY doc -> $%d::text %s, resource_key ASC", len(args), direction)

	sql := "SELECT doc FROM resources " + where + orderBy
	if q.Limit > 0 {
		args = append(args, q.Limit)
		sql += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if q.Offset > 0 {
		args = append(args, q.Offset)
		sql += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	docs := make([]domain.Document, 0)
	for rows.Next() {
		var doc domain.Document
		if err := rows.Scan(&doc); err != nil {
			return nil, 0, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

// buildWhere renders the filter conjunction. Field names travel as bind
// parameters through the jsonb ->> operator, so no identifier is ever
// interpolated into the statement.
func buildWhere(typ string, filters []Filter) (string, []any) {
	clauses := []string{"resource_type=$1"}
	args := []any{typ}

	for _, f := range filters {
		args = append(args, f.Field)
		fieldRef := fmt.Sprintf("doc ->> $%d::text", len(args))
		args = append(args, f.Value)
		switch f.Op {
		case OpContains:
			clauses = append(clauses, fmt.Sprintf("POSITION($%d::text IN %s) > 0", len(args), fieldRef))
		default:
			clauses = append(clauses, fmt.Sprintf("%s = $%d", fieldRef, len(args)))
		}
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}
