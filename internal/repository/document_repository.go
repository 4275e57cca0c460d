package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pdch/pdch-server/internal/domain"
)

// CollectionOptions describes a named document collection.
type CollectionOptions struct {
	Name string
	// UniqueEmail makes the store reject a second document with the same email.
	UniqueEmail bool
}

// DocumentRepository stores schema-less documents for a single collection.
type DocumentRepository interface {
	// List returns up to limit documents in store order; limit <= 0 means all.
	List(ctx context.Context, limit int64) ([]domain.Document, error)
	Get(ctx context.Context, id string) (domain.Document, error)
	FindByEmail(ctx context.Context, email string) (domain.Document, error)
	Insert(ctx context.Context, doc domain.Document) (string, error)
	// Merge shallow-overwrites the named fields of the document with the given id.
	Merge(ctx context.Context, id string, fields domain.Document) (matched, modified int64, err error)
	Delete(ctx context.Context, id string) (int64, error)
}

type documentRepository struct {
	pool *pgxpool.Pool
	opts CollectionOptions
}

// NewDocumentRepository returns a Postgres JSONB-backed implementation.
func NewDocumentRepository(pool *pgxpool.Pool, opts CollectionOptions) DocumentRepository {
	return &documentRepository{pool: pool, opts: opts}
}

func (r *documentRepository) List(ctx context.Context, limit int64) ([]domain.Document, error) {
	if limit < 0 {
		limit = 0
	}
	const query = `
        SELECT id, body FROM documents
        WHERE collection=$1
        ORDER BY seq
        LIMIT NULLIF($2::bigint, 0)`

	rows, err := r.pool.Query(ctx, query, r.opts.Name, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.Document, 0)
	for rows.Next() {
		var (
			id   string
			body []byte
		)
		if err := rows.Scan(&id, &body); err != nil {
			return nil, err
		}
		doc, err := decodeBody(id, body)
		if err != nil {
			return nil, err
		}
		result = append(result, doc)
	}
	return result, rows.Err()
}

func (r *documentRepository) Get(ctx context.Context, id string) (domain.Document, error) {
	const query = `
        SELECT id, body FROM documents
        WHERE collection=$1 AND id=$2`
	return r.queryOne(ctx, query, r.opts.Name, id)
}

func (r *documentRepository) FindByEmail(ctx context.Context, email string) (domain.Document, error) {
	const query = `
        SELECT id, body FROM documents
        WHERE collection=$1 AND body->>'email'=$2
        ORDER BY seq
        LIMIT 1`
	return r.queryOne(ctx, query, r.opts.Name, email)
}

func (r *documentRepository) Insert(ctx context.Context, doc domain.Document) (string, error) {
	const query = `
        INSERT INTO documents (id, collection, body, email)
        VALUES ($1, $2, $3::jsonb, $4)`

	body, err := json.Marshal(doc.WithoutID())
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}

	var email *string
	if r.opts.UniqueEmail {
		if e, ok := doc.Email(); ok {
			email = &e
		}
	}

	id := uuid.NewString()
	if _, err := r.pool.Exec(ctx, query, id, r.opts.Name, string(body), email); err != nil {
		return "", mapPgError(err)
	}
	return id, nil
}

func (r *documentRepository) Merge(ctx context.Context, id string, fields domain.Document) (int64, int64, error) {
	const query = `
        WITH target AS (
            SELECT id, (body || $3::jsonb) = body AS unchanged
            FROM documents WHERE collection=$1 AND id=$2
            FOR UPDATE
        ), updated AS (
            UPDATE documents d
            SET body = d.body || $3::jsonb,
                email = CASE WHEN d.email IS NULL THEN NULL ELSE (d.body || $3::jsonb)->>'email' END,
                updated_at = NOW()
            FROM target t
            WHERE d.id = t.id AND NOT t.unchanged
            RETURNING d.id
        )
        SELECT (SELECT COUNT(*) FROM target), (SELECT COUNT(*) FROM updated)`

	patch, err := json.Marshal(fields.WithoutID())
	if err != nil {
		return 0, 0, fmt.Errorf("encode fields: %w", err)
	}

	var matched, modified int64
	if err := r.pool.QueryRow(ctx, query, r.opts.Name, id, string(patch)).Scan(&matched, &modified); err != nil {
		return 0, 0, mapPgError(err)
	}
	return matched, modified, nil
}

func (r *documentRepository) Delete(ctx context.Context, id string) (int64, error) {
	const query = `DELETE FROM documents WHERE collection=$1 AND id=$2`
	cmd, err := r.pool.Exec(ctx, query, r.opts.Name, id)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *documentRepository) queryOne(ctx context.Context, query string, args ...any) (domain.Document, error) {
	var (
		id   string
		body []byte
	)
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&id, &body); err != nil {
		return nil, mapPgError(err)
	}
	return decodeBody(id, body)
}

func decodeBody(id string, body []byte) (domain.Document, error) {
	doc := domain.Document{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", id, err)
	}
	doc[domain.IDField] = id
	return doc, nil
}
