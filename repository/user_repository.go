package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"checkout-service/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("username or email already exists")
)

type usersDocument struct {
	Users []models.User `json:"users"`
}

// UserRepository stores admin users in a single JSON file. Every write
// replaces the file atomically.
type UserRepository struct {
	path string
	mu   sync.RWMutex
}

func NewUserRepository(path string) *UserRepository {
	return &UserRepository{path: path}
}

// Initialize creates an empty users file if none exists.
func (r *UserRepository) Initialize() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := os.Stat(r.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat users file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create users dir: %w", err)
	}
	return r.save(nil)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.find(ctx, func(u *models.User) bool { return u.Username == username })
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.find(ctx, func(u *models.User) bool { return u.ID == id })
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load()
	if err != nil {
		return err
	}
	for _, u := range users {
		if u.Username == user.Username || strings.EqualFold(u.Email, user.Email) {
			return ErrUserExists
		}
	}
	return r.save(append(users, *user))
}

func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load()
	if err != nil {
		return err
	}
	for i := range users {
		if users[i].ID == user.ID {
			users[i] = *user
			return r.save(users)
		}
	}
	return ErrUserNotFound
}

func (r *UserRepository) find(ctx context.Context, match func(*models.User) bool) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	users, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if match(&users[i]) {
			u := users[i]
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *UserRepository) load() ([]models.User, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read users file: %w", err)
	}
	var doc usersDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode users file: %w", err)
	}
	return doc.Users, nil
}

func (r *UserRepository) save(users []models.User) error {
	if users == nil {
		users = []models.User{}
	}
	data, err := json.MarshalIndent(usersDocument{Users: users}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write users file: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("replace users file: %w", err)
	}
	return nil
}
