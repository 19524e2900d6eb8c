package auth

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type mockRepository struct {
	users map[uuid.UUID]*User
	mu    sync.RWMutex
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users: make(map[uuid.UUID]*User),
	}
}

func (r *mockRepository) CreateUser(_ context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Name == user.Name || u.Email == user.Email {
			return ErrUserExists
		}
		if u.FortyTwoLogin != nil && user.FortyTwoLogin != nil && *u.FortyTwoLogin == *user.FortyTwoLogin {
			return ErrUserExists
		}
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	// Clone the user to prevent external modifications
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *mockRepository) GetUserByID(_ context.Context, id uuid.UUID) (*User, error) {
	return r.find(func(u *User) bool { return u.ID == id })
}

func (r *mockRepository) GetUserByEmail(_ context.Context, email string) (*User, error) {
	return r.find(func(u *User) bool { return u.Email == email })
}

func (r *mockRepository) GetUserByName(_ context.Context, name string) (*User, error) {
	return r.find(func(u *User) bool { return u.Name == name })
}

func (r *mockRepository) GetUserByFortyTwoLogin(_ context.Context, login string) (*User, error) {
	return r.find(func(u *User) bool { return u.FortyTwoLogin != nil && *u.FortyTwoLogin == login })
}

func (r *mockRepository) find(match func(*User) bool) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if match(u) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *mockRepository) UpdateName(_ context.Context, id uuid.UUID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Name == name && u.ID != id {
			return ErrUserExists
		}
	}
	return r.mutate(id, func(u *User) { u.Name = name })
}

func (r *mockRepository) SetFortyTwoLogin(_ context.Context, id uuid.UUID, login string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mutate(id, func(u *User) { u.FortyTwoLogin = &login })
}

func (r *mockRepository) SetTwoFactorSecret(_ context.Context, id uuid.UUID, secret string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mutate(id, func(u *User) { u.TwoFactorSecret = secret })
}

func (r *mockRepository) SetTwoFactorEnabled(_ context.Context, id uuid.UUID, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mutate(id, func(u *User) { u.TwoFactorEnabled = enabled })
}

// mutate expects r.mu to be held.
func (r *mockRepository) mutate(id uuid.UUID, fn func(*User)) error {
	user, exists := r.users[id]
	if !exists {
		return ErrUserNotFound
	}
	fn(user)
	return nil
}
