package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"resumeforge/internal/types"
)

// Resume is a stored resume document. Sections are persisted as an opaque
// JSONB column; concurrent writers follow last write wins.
type Resume struct {
	ID        string                `json:"id"`
	Title     string                `json:"title"`
	Sections  []types.ResumeSection `json:"sections"`
	ATSScore  *float64              `json:"atsScore,omitempty"`
	CreatedAt time.Time             `json:"createdAt"`
	UpdatedAt time.Time             `json:"updatedAt"`
}

// ResumeSummary is a listing row without the section payload.
type ResumeSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	ATSScore  *float64  `json:"atsScore,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ResumeRepo persists and loads resumes.
type ResumeRepo struct{ Pool PgxPool }

// NewResumeRepo constructs a ResumeRepo with the given pool.
func NewResumeRepo(p PgxPool) *ResumeRepo { return &ResumeRepo{Pool: p} }

// Save upserts a resume and returns its id (generates one if empty).
func (r *ResumeRepo) Save(ctx context.Context, res Resume) (string, error) {
	tracer := otel.Tracer("store.resumes")
	ctx, span := tracer.Start(ctx, "resumes.Save")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "UPSERT"),
		attribute.String("db.sql.table", "resumes"),
	)

	id := res.ID
	if id == "" {
		id = uuid.New().String()
	}

	sections, err := json.Marshal(res.Sections)
	if err != nil {
		return "", fmt.Errorf("op=resume.marshal_sections: %w", err)
	}

	now := time.Now().UTC()
	q := `INSERT INTO resumes (id, title, sections, ats_score, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$5)
		ON CONFLICT (id) DO UPDATE
		SET title = EXCLUDED.title,
			sections = EXCLUDED.sections,
			ats_score = EXCLUDED.ats_score,
			updated_at = EXCLUDED.updated_at`
	if _, err := r.Pool.Exec(ctx, q, id, res.Title, sections, res.ATSScore, now); err != nil {
		return "", fmt.Errorf("op=resume.save: %w", err)
	}
	return id, nil
}

// Get loads a resume by id or returns ErrNotFound.
func (r *ResumeRepo) Get(ctx context.Context, id string) (Resume, error) {
	tracer := otel.Tracer("store.resumes")
	ctx, span := tracer.Start(ctx, "resumes.Get")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "resumes"),
	)

	q := `SELECT id, title, sections, ats_score, created_at, updated_at FROM resumes WHERE id=$1`
	row := r.Pool.QueryRow(ctx, q, id)

	var res Resume
	var sections []byte
	if err := row.Scan(&res.ID, &res.Title, &sections, &res.ATSScore, &res.CreatedAt, &res.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Resume{}, fmt.Errorf("op=resume.get: %w", ErrNotFound)
		}
		return Resume{}, fmt.Errorf("op=resume.get: %w", err)
	}
	if err := json.Unmarshal(sections, &res.Sections); err != nil {
		return Resume{}, fmt.Errorf("op=resume.unmarshal_sections: %w", err)
	}
	return res, nil
}

// List returns resume summaries ordered by most recently updated.
func (r *ResumeRepo) List(ctx context.Context, limit int) ([]ResumeSummary, error) {
	tracer := otel.Tracer("store.resumes")
	ctx, span := tracer.Start(ctx, "resumes.List")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "resumes"),
	)

	if limit <= 0 {
		limit = 50
	}
	q := `SELECT id, title, ats_score, updated_at FROM resumes ORDER BY updated_at DESC LIMIT $1`
	rows, err := r.Pool.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("op=resume.list: %w", err)
	}
	defer rows.Close()

	var summaries []ResumeSummary
	for rows.Next() {
		var s ResumeSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.ATSScore, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("op=resume.list_scan: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=resume.list_rows: %w", err)
	}
	return summaries, nil
}

// Delete removes a resume by id. Deleting a missing id is not an error.
func (r *ResumeRepo) Delete(ctx context.Context, id string) error {
	tracer := otel.Tracer("store.resumes")
	ctx, span := tracer.Start(ctx, "resumes.Delete")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "DELETE"),
		attribute.String("db.sql.table", "resumes"),
	)

	if _, err := r.Pool.Exec(ctx, `DELETE FROM resumes WHERE id=$1`, id); err != nil {
		return fmt.Errorf("op=resume.delete: %w", err)
	}
	return nil
}
