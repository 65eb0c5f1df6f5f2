// Package usertest provides an in-memory user.UserRepository for tests.
package usertest

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/saulo-duarte/appraisal-lambda/internal/apperror"
	"github.com/saulo-duarte/appraisal-lambda/internal/user"
)

type Repository struct {
	mu    sync.Mutex
	users map[uuid.UUID]user.User
}

func NewRepository(users ...*user.User) *Repository {
	r := &Repository{users: map[uuid.UUID]user.User{}}
	for _, u := range users {
		r.Put(u)
	}
	return r
}

// Put inserts or replaces u.
func (r *Repository) Put(u *user.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = *u
}

func (r *Repository) GetByID(id uuid.UUID) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperror.NotFound("user %s not found", id)
	}
	return &u, nil
}

func (r *Repository) ListByManager(managerID uuid.UUID) ([]*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*user.User
	for _, u := range r.users {
		if u.ManagerID != nil && *u.ManagerID == managerID {
			out = append(out, &u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *Repository) UpdateReportingLinks(id uuid.UUID, managerID, appraiserID *uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return apperror.NotFound("user %s not found", id)
	}
	u.ManagerID = managerID
	u.AppraiserID = appraiserID
	r.users[id] = u
	return nil
}

// NewUser returns a user with a fresh id and the given role.
func NewUser(name string, role user.Role) *user.User {
	return &user.User{ID: uuid.New(), Name: name, Email: name + "@example.com", Role: role}
}
