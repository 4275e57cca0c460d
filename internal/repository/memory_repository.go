package repository

import (
	"context"
	"reflect"
	"sync"

	"github.com/google/uuid"

	"github.com/pdch/pdch-server/internal/domain"
)

type memoryUserRepository struct {
	mu      sync.RWMutex
	byEmail map[string]domain.User
}

// NewMemoryUserRepository returns a process-local implementation used for
// development and tests.
func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{byEmail: make(map[string]domain.User)}
}

func (r *memoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[user.Email]; exists {
		return ErrDuplicate
	}
	user.ID = uuid.NewString()
	r.byEmail[user.Email] = *user
	return nil
}

func (r *memoryUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

type memoryDocumentRepository struct {
	mu    sync.RWMutex
	opts  CollectionOptions
	order []string
	docs  map[string]domain.Document
}

// NewMemoryDocumentRepository returns a process-local implementation that
// keeps insertion order.
func NewMemoryDocumentRepository(opts CollectionOptions) DocumentRepository {
	return &memoryDocumentRepository{opts: opts, docs: make(map[string]domain.Document)}
}

func (r *memoryDocumentRepository) List(_ context.Context, limit int64) ([]domain.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := int64(len(r.order))
	if limit > 0 && limit < n {
		n = limit
	}
	result := make([]domain.Document, 0, n)
	for _, id := range r.order[:n] {
		result = append(result, r.copyOf(id))
	}
	return result, nil
}

func (r *memoryDocumentRepository) Get(_ context.Context, id string) (domain.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.docs[id]; !ok {
		return nil, ErrNotFound
	}
	return r.copyOf(id), nil
}

func (r *memoryDocumentRepository) FindByEmail(_ context.Context, email string) (domain.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id, ok := r.findEmailLocked(email); ok {
		return r.copyOf(id), nil
	}
	return nil, ErrNotFound
}

func (r *memoryDocumentRepository) Insert(_ context.Context, doc domain.Document) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := doc.WithoutID()
	if r.opts.UniqueEmail {
		if email, ok := stored.Email(); ok {
			if _, taken := r.findEmailLocked(email); taken {
				return "", ErrDuplicate
			}
		}
	}

	id := uuid.NewString()
	r.docs[id] = stored
	r.order = append(r.order, id)
	return id, nil
}

func (r *memoryDocumentRepository) Merge(_ context.Context, id string, fields domain.Document) (int64, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.docs[id]
	if !ok {
		return 0, 0, nil
	}
	merged := current.WithoutID()
	changed := false
	for k, v := range fields.WithoutID() {
		if old, exists := merged[k]; !exists || !reflect.DeepEqual(old, v) {
			changed = true
		}
		merged[k] = v
	}
	if !changed {
		return 1, 0, nil
	}
	if r.opts.UniqueEmail {
		if email, ok := merged.Email(); ok {
			if other, taken := r.findEmailLocked(email); taken && other != id {
				return 0, 0, ErrDuplicate
			}
		}
	}
	r.docs[id] = merged
	return 1, 1, nil
}

func (r *memoryDocumentRepository) Delete(_ context.Context, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.docs[id]; !ok {
		return 0, nil
	}
	delete(r.docs, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return 1, nil
}

func (r *memoryDocumentRepository) findEmailLocked(email string) (string, bool) {
	for _, id := range r.order {
		if e, ok := r.docs[id].Email(); ok && e == email {
			return id, true
		}
	}
	return "", false
}

func (r *memoryDocumentRepository) copyOf(id string) domain.Document {
	doc := r.docs[id].WithoutID()
	doc[domain.IDField] = id
	return doc
}
