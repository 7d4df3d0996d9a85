package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"checkout-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) (*UserRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config", "users.json")
	repo := NewUserRepository(path)
	require.NoError(t, repo.Initialize())
	return repo, path
}

func TestUserRepository_InitializeCreatesEmptyFile(t *testing.T) {
	_, path := newTestRepo(t)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"users": []}`, string(data))
}

func TestUserRepository_InitializeKeepsExistingFile(t *testing.T) {
	repo, path := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &models.User{ID: "u1", Username: "admin", Email: "a@example.com"}))

	require.NoError(t, NewUserRepository(path).Initialize())

	_, err := repo.FindByUsername(ctx, "admin")
	assert.NoError(t, err)
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	repo, path := newTestRepo(t)
	ctx := context.Background()

	user := &models.User{
		ID:       "u1",
		Username: "admin_1",
		Email:    "admin@example.com",
		Password: "$2a$10$hash",
		Role:     models.RoleAdmin,
		Created:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Create(ctx, user))

	got, err := repo.FindByUsername(ctx, "admin_1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)
	assert.Nil(t, got.LastLogin)

	got, err = repo.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", got.Email)

	_, err = repo.FindByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)

	var doc map[string][]map[string]interface{}
	data, _ := os.ReadFile(path)
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Nil(t, doc["users"][0]["lastLogin"])
	assert.Equal(t, "admin", doc["users"][0]["role"])
}

func TestUserRepository_CreateRejectsDuplicates(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &models.User{ID: "u1", Username: "admin", Email: "a@example.com"}))

	err := repo.Create(ctx, &models.User{ID: "u2", Username: "admin", Email: "b@example.com"})
	assert.ErrorIs(t, err, ErrUserExists)

	err = repo.Create(ctx, &models.User{ID: "u3", Username: "other", Email: "A@example.com"})
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestUserRepository_Update(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &models.User{ID: "u1", Username: "admin", Email: "a@example.com"}))

	login := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	user, err := repo.FindByID(ctx, "u1")
	require.NoError(t, err)
	user.LastLogin = &login
	require.NoError(t, repo.Update(ctx, user))

	got, err := repo.FindByID(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got.LastLogin)
	assert.True(t, login.Equal(*got.LastLogin))

	assert.ErrorIs(t, repo.Update(ctx, &models.User{ID: "missing"}), ErrUserNotFound)
}

func TestUserRepository_CanceledContext(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.FindByID(ctx, "u1")
	assert.ErrorIs(t, err, context.Canceled)
}
