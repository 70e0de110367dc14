// Package memory provides in-memory implementations of the store
// interfaces. They are used as test doubles and for single-process
// development deployments where PostgreSQL is not available.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/kerrian/notely-api/internal/domain"
	"github.com/kerrian/notely-api/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// UserStore is an in-memory implementation of store.UserStore.
// Safe for concurrent use.
type UserStore struct {
	mu         sync.RWMutex
	users      map[uuid.UUID]*domain.User
	emailIndex map[string]uuid.UUID
	bcryptCost int
}

// NewUserStore creates an empty in-memory user store. The bcrypt cost is
// deliberately low by default since this store mostly backs tests.
func NewUserStore() *UserStore {
	return &UserStore{
		users:      make(map[uuid.UUID]*domain.User),
		emailIndex: make(map[string]uuid.UUID),
		bcryptCost: bcrypt.MinCost,
	}
}

// Ensure UserStore implements store.UserStore interface
var _ store.UserStore = (*UserStore)(nil)

// Create implements store.UserStore.Create
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.emailIndex[user.Email]; exists {
		return store.ErrEmailExists
	}

	user.HashedPassword = string(hashed)
	user.Password = ""

	stored := *user
	s.users[user.ID] = &stored
	s.emailIndex[user.Email] = user.ID
	return nil
}

// GetByID implements store.UserStore.GetByID
func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[id]
	if !exists {
		return nil, store.ErrUserNotFound
	}

	copied := *user
	return &copied, nil
}

// GetByEmail implements store.UserStore.GetByEmail
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.emailIndex[email]
	if !exists {
		return nil, store.ErrUserNotFound
	}

	copied := *s.users[id]
	return &copied, nil
}
