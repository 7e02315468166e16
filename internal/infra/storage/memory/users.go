package memory

import (
	"context"
	"sync"

	domainuser "stayflow/internal/domain/user"
)

type UserRepository struct {
	mu    sync.RWMutex
	items map[string]*domainuser.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{items: make(map[string]*domainuser.User)}
}

func (r *UserRepository) ByID(ctx context.Context, id string) (*domainuser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.items[id]
	if !ok {
		return nil, domainuser.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (r *UserRepository) ByUsername(ctx context.Context, username string) (*domainuser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.items {
		if u.Username == username {
			out := *u
			return &out, nil
		}
	}
	return nil, domainuser.ErrNotFound
}

func (r *UserRepository) Save(ctx context.Context, u *domainuser.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.items {
		if other.Username == u.Username && other.ID != u.ID {
			return domainuser.ErrUsernameTaken
		}
	}
	out := *u
	r.items[u.ID] = &out
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainuser.ErrNotFound
	}
	delete(r.items, id)
	return nil
}
