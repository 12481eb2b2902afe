package repositories_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-api/internal/models"
	"todo-api/internal/repositories"
	"todo-api/testutil"
)

func newRepo(t *testing.T) *repositories.TodoRepository {
	t.Helper()
	db := testutil.NewTestDB(t)
	return repositories.NewTodoRepository(db, repositories.WithClock(testutil.NewFakeClock().Now))
}

func strPtr(s string) *string { return &s }

func TestTodoRepository_Create(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	created, err := repo.Create(ctx, "A", nil)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "A", created.Title)
	assert.Nil(t, created.Description)
	assert.True(t, created.CreatedAt.Equal(created.UpdatedAt), "created_at and updated_at must be the same instant")

	fetched, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, fetched)

	withDesc, err := repo.Create(ctx, "", strPtr("details"))
	require.NoError(t, err)
	assert.Equal(t, "", withDesc.Title)
	require.NotNil(t, withDesc.Description)
	assert.Equal(t, "details", *withDesc.Description)
	assert.NotEqual(t, created.ID, withDesc.ID)
}

func TestTodoRepository_FindAll(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	empty, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	var ids []int
	for _, title := range []string{"one", "two", "three"} {
		todo, err := repo.Create(ctx, title, nil)
		require.NoError(t, err)
		ids = append(ids, todo.ID)
	}

	todos, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, todos, 3)
	var got []int
	for _, todo := range todos {
		got = append(got, todo.ID)
	}
	assert.ElementsMatch(t, ids, got)
}

func TestTodoRepository_FindByID_NotFound(t *testing.T) {
	repo := newRepo(t)

	_, err := repo.FindByID(context.Background(), 9999)
	require.ErrorIs(t, err, repositories.ErrTodoNotFound)
}

func TestTodoRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	created, err := repo.Create(ctx, "title", strPtr("before"))
	require.NoError(t, err)

	t.Run("only description", func(t *testing.T) {
		updated, err := repo.Update(ctx, created.ID, models.TodoPatch{Description: models.Some("after")})
		require.NoError(t, err)
		assert.Equal(t, "title", updated.Title)
		require.NotNil(t, updated.Description)
		assert.Equal(t, "after", *updated.Description)
		assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))
		assert.True(t, updated.CreatedAt.Equal(created.CreatedAt), "created_at must never change")
	})

	t.Run("zero fields still refreshes updated_at", func(t *testing.T) {
		before, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)

		updated, err := repo.Update(ctx, created.ID, models.TodoPatch{})
		require.NoError(t, err)
		assert.Equal(t, before.Title, updated.Title)
		assert.Equal(t, before.Description, updated.Description)
		assert.True(t, updated.UpdatedAt.After(before.UpdatedAt))
	})

	t.Run("explicit null clears description", func(t *testing.T) {
		updated, err := repo.Update(ctx, created.ID, models.TodoPatch{Description: models.Null[string]()})
		require.NoError(t, err)
		assert.Nil(t, updated.Description)
		assert.Equal(t, "title", updated.Title)
	})

	t.Run("title", func(t *testing.T) {
		updated, err := repo.Update(ctx, created.ID, models.TodoPatch{Title: models.Some("renamed")})
		require.NoError(t, err)
		assert.Equal(t, "renamed", updated.Title)

		fetched, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, updated, fetched)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.Update(ctx, 9999, models.TodoPatch{Title: models.Some("x")})
		require.ErrorIs(t, err, repositories.ErrTodoNotFound)
	})
}

func TestTodoRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	created, err := repo.Create(ctx, "to delete", nil)
	require.NoError(t, err)

	deleted, err := repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = repo.FindByID(ctx, created.ID)
	require.ErrorIs(t, err, repositories.ErrTodoNotFound)

	deleted, err = repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestTodoRepository_StorageFault(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	repo := repositories.NewTodoRepository(db)
	require.NoError(t, db.Close())

	_, err := repo.Create(ctx, "x", nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, repositories.ErrTodoNotFound)

	_, err = repo.FindByID(ctx, 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, repositories.ErrTodoNotFound)
}
