package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// ReferenceSnippet is a role-keyword corpus entry used to ground ATS
// analysis. The embedding column lives only in the database.
type ReferenceSnippet struct {
	ID      string `json:"id"`
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ReferenceRepo stores and searches reference snippets by vector distance.
type ReferenceRepo struct{ Pool PgxPool }

// NewReferenceRepo constructs a ReferenceRepo with the given pool.
func NewReferenceRepo(p PgxPool) *ReferenceRepo { return &ReferenceRepo{Pool: p} }

// Add stores a snippet with its embedding and returns its id (generates one
// if empty).
func (r *ReferenceRepo) Add(ctx context.Context, snippet ReferenceSnippet, embedding []float32) (string, error) {
	tracer := otel.Tracer("store.reference")
	ctx, span := tracer.Start(ctx, "reference.Add")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "reference_snippets"),
	)

	id := snippet.ID
	if id == "" {
		id = uuid.New().String()
	}

	q := `INSERT INTO reference_snippets (id, role, content, embedding, created_at) VALUES ($1,$2,$3,$4,$5)`
	_, err := r.Pool.Exec(ctx, q, id, snippet.Role, snippet.Content, pgvector.NewVector(embedding), time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("op=reference.add: %w", err)
	}
	return id, nil
}

// Search returns the k snippets nearest to the query embedding.
func (r *ReferenceRepo) Search(ctx context.Context, embedding []float32, k int) ([]ReferenceSnippet, error) {
	tracer := otel.Tracer("store.reference")
	ctx, span := tracer.Start(ctx, "reference.Search")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "reference_snippets"),
		attribute.Int("db.search.k", k),
	)

	if k <= 0 {
		k = 5
	}

	q := `SELECT id, role, content FROM reference_snippets ORDER BY embedding <-> $1 LIMIT $2`
	rows, err := r.Pool.Query(ctx, q, pgvector.NewVector(embedding), k)
	if err != nil {
		return nil, fmt.Errorf("op=reference.search: %w", err)
	}
	defer rows.Close()

	var snippets []ReferenceSnippet
	for rows.Next() {
		var s ReferenceSnippet
		if err := rows.Scan(&s.ID, &s.Role, &s.Content); err != nil {
			return nil, fmt.Errorf("op=reference.search_scan: %w", err)
		}
		snippets = append(snippets, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=reference.search_rows: %w", err)
	}
	return snippets, nil
}

// Count returns the number of stored snippets.
func (r *ReferenceRepo) Count(ctx context.Context) (int64, error) {
	tracer := otel.Tracer("store.reference")
	ctx, span := tracer.Start(ctx, "reference.Count")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "COUNT"),
		attribute.String("db.sql.table", "reference_snippets"),
	)

	var count int64
	if err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM reference_snippets`).Scan(&count); err != nil {
		return 0, fmt.Errorf("op=reference.count: %w", err)
	}
	return count, nil
}
