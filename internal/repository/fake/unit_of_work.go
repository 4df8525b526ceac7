// Package fake provides an in-memory unit of work for service and persister tests.
package fake

import (
	"context"
	"sync"

	"chat-assistant-be/internal/entity"
	"chat-assistant-be/internal/repository/contract"
	"chat-assistant-be/internal/repository/specification"
	"chat-assistant-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// Store is the shared state behind every unit of work a Factory hands out.
// Writes made inside a transaction apply immediately; Rollback does not undo them.
type Store struct {
	mu    sync.Mutex
	users map[string]*entity.User

	Commits   int
	Rollbacks int

	// Injected failures.
	BeginErr  error
	FindErr   error
	UpdateErr error
	CreateErr error
}

func NewStore() *Store {
	return &Store{users: make(map[string]*entity.User)}
}

// Put inserts or replaces a user keyed by email.
func (s *Store) Put(u *entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.Id == uuid.Nil {
		u.Id = uuid.New()
	}
	cp := *u
	s.users[u.Email] = &cp
}

// Get returns a copy of the stored user, or nil.
func (s *Store) Get(email string) *entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return nil
	}
	cp := *u
	return &cp
}

type Factory struct {
	Store *Store
}

func NewFactory(store *Store) *Factory {
	return &Factory{Store: store}
}

func (f *Factory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &UnitOfWork{store: f.Store}
}

type UnitOfWork struct {
	store *Store
	open  bool
}

func (u *UnitOfWork) Begin(ctx context.Context) error {
	if u.store.BeginErr != nil {
		return u.store.BeginErr
	}
	u.open = true
	return nil
}

func (u *UnitOfWork) Commit() error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	u.store.Commits++
	u.open = false
	return nil
}

func (u *UnitOfWork) Rollback() error {
	if !u.open {
		return nil
	}
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	u.store.Rollbacks++
	u.open = false
	return nil
}

func (u *UnitOfWork) UserRepository() contract.UserRepository {
	return &userRepository{store: u.store}
}

type userRepository struct {
	store *Store
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	if r.store.CreateErr != nil {
		return r.store.CreateErr
	}
	r.store.Put(user)
	*user = *r.store.Get(user.Email)
	return nil
}

// FindOne understands ByEmail; other specifications are ignored.
func (r *userRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	if r.store.FindErr != nil {
		return nil, r.store.FindErr
	}
	for _, spec := range specs {
		if s, ok := spec.(specification.ByEmail); ok {
			return r.store.Get(s.Email), nil
		}
	}
	return nil, nil
}

func (r *userRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return int64(len(r.store.users)), nil
}

func (r *userRepository) UpdateHistory(ctx context.Context, id uuid.UUID, history, lastQuestion string) error {
	if r.store.UpdateErr != nil {
		return r.store.UpdateErr
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, u := range r.store.users {
		if u.Id == id {
			u.History = history
			u.LastQuestion = lastQuestion
			return nil
		}
	}
	return nil
}
