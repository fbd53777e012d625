package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cartShape struct {
	Items []string `json:"items"`
	Note  string   `json:"note"`
}

type mockRepository struct {
	FindBySlotFunc func(ctx context.Context, slot string) (*Record, error)
	SaveFunc       func(ctx context.Context, rec Record) error
	DeleteFunc     func(ctx context.Context, slot string) error
}

func (m *mockRepository) FindBySlot(ctx context.Context, slot string) (*Record, error) {
	return m.FindBySlotFunc(ctx, slot)
}

func (m *mockRepository) Save(ctx context.Context, rec Record) error {
	return m.SaveFunc(ctx, rec)
}

func (m *mockRepository) Delete(ctx context.Context, slot string) error {
	return m.DeleteFunc(ctx, slot)
}

func TestSlot_StoreAndLoad(t *testing.T) {
	ctx := context.Background()
	slot := NewSlot[cartShape](NewMemoryRepository(), "cart", 1)

	require.NoError(t, slot.Store(ctx, cartShape{Items: []string{"naan"}, Note: "extra spicy"}))

	value, ok, err := slot.Load(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"naan"}, value.Items)
	assert.Equal(t, "extra spicy", value.Note)
}

func TestSlot_Load_Empty(t *testing.T) {
	slot := NewSlot[cartShape](NewMemoryRepository(), "cart", 1)

	value, ok, err := slot.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, value.Items)
}

func TestSlot_Load_DiscardsOtherVersion(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	require.NoError(t, NewSlot[cartShape](repo, "cart", 1).Store(ctx, cartShape{Items: []string{"old"}}))

	slot := NewSlot[cartShape](repo, "cart", 2)
	_, ok, err := slot.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.FindBySlot(ctx, "cart")
	assert.Error(t, err, "incompatible slot must be removed")
}

func TestSlot_Load_DiscardsUndecodablePayload(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	require.NoError(t, repo.Save(ctx, Record{Slot: "cart", Version: 1, Payload: []byte(`{"items": 12}`), UpdatedAt: time.Now()}))

	_, ok, err := NewSlot[cartShape](repo, "cart", 1).Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSlot_Load_RepositoryFailure(t *testing.T) {
	repo := &mockRepository{
		FindBySlotFunc: func(ctx context.Context, slot string) (*Record, error) {
			return nil, errors.New("disk full")
		},
	}

	_, ok, err := NewSlot[cartShape](repo, "cart", 1).Load(context.Background())
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "loading cart slot")
}

func TestSlot_Store_StampsVersionAndTime(t *testing.T) {
	var saved Record
	repo := &mockRepository{
		SaveFunc: func(ctx context.Context, rec Record) error {
			saved = rec
			return nil
		},
	}
	fixed := time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)
	slot := NewSlot[cartShape](repo, "delivery", 4)
	slot.now = func() time.Time { return fixed }

	require.NoError(t, slot.Store(context.Background(), cartShape{Note: "x"}))
	assert.Equal(t, "delivery", saved.Slot)
	assert.Equal(t, 4, saved.Version)
	assert.Equal(t, fixed, saved.UpdatedAt)
	assert.JSONEq(t, `{"items":null,"note":"x"}`, string(saved.Payload))
}

func TestSlot_Clear(t *testing.T) {
	ctx := context.Background()
	slot := NewSlot[cartShape](NewMemoryRepository(), "cart", 1)

	require.NoError(t, slot.Store(ctx, cartShape{Note: "x"}))
	require.NoError(t, slot.Clear(ctx))

	_, ok, err := slot.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}
