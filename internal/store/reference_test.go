package store_test

import (
	"context"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeforge/internal/store"
)

func TestReferenceRepo_Add(t *testing.T) {
	t.Parallel()

	m, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer m.Close()

	m.ExpectExec("INSERT INTO reference_snippets").
		WithArgs(pgxmock.AnyArg(), "backend-engineer", "Go, Kubernetes, PostgreSQL", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := store.NewReferenceRepo(m)
	id, err := repo.Add(context.Background(), store.ReferenceSnippet{
		Role:    "backend-engineer",
		Content: "Go, Kubernetes, PostgreSQL",
	}, []float32{0.1, 0.2, 0.3})

	require.NoError(t, err)
	assert.NotEmpty(t, id)
	require.NoError(t, m.ExpectationsWereMet())
}

func TestReferenceRepo_Search(t *testing.T) {
	t.Parallel()

	t.Run("returns nearest snippets", func(t *testing.T) {
		t.Parallel()
		m, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer m.Close()

		rows := pgxmock.NewRows([]string{"id", "role", "content"}).
			AddRow("snip-1", "backend-engineer", "Go, Kubernetes").
			AddRow("snip-2", "backend-engineer", "PostgreSQL, pgvector")
		m.ExpectQuery("SELECT id, role, content FROM reference_snippets").
			WithArgs(pgxmock.AnyArg(), 2).
			WillReturnRows(rows)

		repo := store.NewReferenceRepo(m)
		snippets, err := repo.Search(context.Background(), []float32{0.1, 0.2}, 2)
		require.NoError(t, err)
		require.Len(t, snippets, 2)
		assert.Equal(t, "snip-1", snippets[0].ID)
		require.NoError(t, m.ExpectationsWereMet())
	})

	t.Run("non-positive k defaults to 5", func(t *testing.T) {
		t.Parallel()
		m, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer m.Close()

		m.ExpectQuery("SELECT id, role, content FROM reference_snippets").
			WithArgs(pgxmock.AnyArg(), 5).
			WillReturnRows(pgxmock.NewRows([]string{"id", "role", "content"}))

		repo := store.NewReferenceRepo(m)
		snippets, err := repo.Search(context.Background(), []float32{0.1}, 0)
		require.NoError(t, err)
		assert.Empty(t, snippets)
		require.NoError(t, m.ExpectationsWereMet())
	})

	t.Run("query error is wrapped", func(t *testing.T) {
		t.Parallel()
		m, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer m.Close()

		m.ExpectQuery("SELECT id, role, content FROM reference_snippets").
			WithArgs(pgxmock.AnyArg(), 3).
			WillReturnError(assert.AnError)

		repo := store.NewReferenceRepo(m)
		_, err = repo.Search(context.Background(), []float32{0.1}, 3)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "op=reference.search")
		require.NoError(t, m.ExpectationsWereMet())
	})
}
