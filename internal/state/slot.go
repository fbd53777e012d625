package state

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	apperrors "github.com/mezu1107/moiz-backend-backend-sub001/internal/errors"
)

// Record is one persisted slot as stored.
type Record struct {
	Slot      string
	Version   int
	Payload   []byte
	UpdatedAt time.Time
}

type Repository interface {
	FindBySlot(ctx context.Context, slot string) (*Record, error)
	Save(ctx context.Context, rec Record) error
	Delete(ctx context.Context, slot string) error
}

// Slot is a durable, versioned value of type T. A stored value written with
// another version, or one that no longer decodes, is dropped on load so the
// owner rebuilds it from the server.
type Slot[T any] struct {
	repo    Repository
	name    string
	version int
	now     func() time.Time
}

func NewSlot[T any](repo Repository, name string, version int) *Slot[T] {
	return &Slot[T]{
		repo:    repo,
		name:    name,
		version: version,
		now:     time.Now,
	}
}

func (s *Slot[T]) Name() string {
	return s.name
}

func (s *Slot[T]) Load(ctx context.Context) (T, bool, error) {
	var zero T

	rec, err := s.repo.FindBySlot(ctx, s.name)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			return zero, false, nil
		}
		return zero, false, fmt.Errorf("loading %s slot: %w", s.name, err)
	}

	if rec.Version != s.version {
		return zero, false, s.discard(ctx)
	}

	var value T
	if err := json.Unmarshal(rec.Payload, &value); err != nil {
		return zero, false, s.discard(ctx)
	}

	return value, true, nil
}

func (s *Slot[T]) Store(ctx context.Context, value T) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s slot: %w", s.name, err)
	}

	return s.repo.Save(ctx, Record{
		Slot:      s.name,
		Version:   s.version,
		Payload:   payload,
		UpdatedAt: s.now(),
	})
}

func (s *Slot[T]) Clear(ctx context.Context) error {
	return s.repo.Delete(ctx, s.name)
}

func (s *Slot[T]) discard(ctx context.Context) error {
	if err := s.repo.Delete(ctx, s.name); err != nil {
		return fmt.Errorf("discarding incompatible %s slot: %w", s.name, err)
	}
	return nil
}

// MemoryRepository keeps slots in process memory. It backs tests and the
// "memory" state driver.
type MemoryRepository struct {
	mu      sync.Mutex
	records map[string]Record
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string]Record)}
}

func (m *MemoryRepository) FindBySlot(_ context.Context, slot string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[slot]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("state slot %q not found", slot))
	}
	rec.Payload = append([]byte(nil), rec.Payload...)
	return &rec, nil
}

func (m *MemoryRepository) Save(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec.Payload = append([]byte(nil), rec.Payload...)
	m.records[rec.Slot] = rec
	return nil
}

func (m *MemoryRepository) Delete(_ context.Context, slot string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.records, slot)
	return nil
}
