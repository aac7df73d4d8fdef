package repository

import (
	"context"
	"testing"
	"time"

	"wavenote-api/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTask(userID uuid.UUID, title string) *models.Task {
	return &models.Task{
		UserID:      userID,
		Title:       title,
		Description: title + " description",
		Deadline:    time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestMemoryTaskRepository_ListsInInsertionOrderPerUser(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTaskRepository()
	alice, bob := uuid.New(), uuid.New()

	for _, task := range []*models.Task{newTask(alice, "a1"), newTask(bob, "b1"), newTask(alice, "a2")} {
		require.NoError(t, repo.Create(ctx, task))
		assert.NotEqual(t, uuid.Nil, task.ID)
	}

	tasks, err := repo.FindByUserID(ctx, alice)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "a1", tasks[0].Title)
	assert.Equal(t, "a2", tasks[1].Title)

	empty, err := repo.FindByUserID(ctx, uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestMemoryTaskRepository_ScopesByOwner(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTaskRepository()
	owner, other := uuid.New(), uuid.New()

	task := newTask(owner, "mine")
	require.NoError(t, repo.Create(ctx, task))

	found, err := repo.FindByID(ctx, other, task.ID)
	require.NoError(t, err)
	assert.Nil(t, found)

	err = repo.Delete(ctx, other, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	intruder := *task
	intruder.UserID = other
	intruder.Title = "stolen"
	assert.ErrorIs(t, repo.Update(ctx, &intruder), ErrNotFound)

	found, err = repo.FindByID(ctx, owner, task.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "mine", found.Title)
}

func TestMemoryTaskRepository_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTaskRepository()
	owner := uuid.New()

	first, second := newTask(owner, "first"), newTask(owner, "second")
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	first.Completed = true
	require.NoError(t, repo.Update(ctx, first))

	require.NoError(t, repo.Delete(ctx, owner, second.ID))
	assert.ErrorIs(t, repo.Delete(ctx, owner, second.ID), ErrNotFound)

	tasks, err := repo.FindByUserID(ctx, owner)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.True(t, tasks[0].Completed)
}

func TestMemoryUserRepository_UniqueEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	user := &models.User{Email: "a@example.com", PasswordHash: "x"}
	require.NoError(t, repo.Create(ctx, user))

	err := repo.Create(ctx, &models.User{Email: "a@example.com", PasswordHash: "y"})
	assert.ErrorIs(t, err, ErrDuplicated)

	byEmail, err := repo.FindByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, user.ID, byEmail.ID)

	missing, err := repo.FindByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryTokenRepository_ExpiresRevocations(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTokenRepository()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	require.NoError(t, repo.Revoke(ctx, "jti-1", time.Minute))
	require.NoError(t, repo.Revoke(ctx, "jti-2", 0))

	revoked, _ := repo.IsRevoked(ctx, "jti-1")
	assert.True(t, revoked)
	revoked, _ = repo.IsRevoked(ctx, "jti-2")
	assert.False(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, _ = repo.IsRevoked(ctx, "jti-1")
	assert.False(t, revoked)
}

func TestTaskListCacheKey(t *testing.T) {
	id := uuid.MustParse("6b1f0c3e-6f55-4c53-9d0e-2f9a1d3c4b5a")
	assert.Equal(t, "tasks:6b1f0c3e-6f55-4c53-9d0e-2f9a1d3c4b5a", taskListCacheKey(id))
	assert.Equal(t, "revoked_token:abc", revokedTokenKey("abc"))
}
