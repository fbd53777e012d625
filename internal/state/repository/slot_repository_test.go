package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mezu1107/moiz-backend-backend-sub001/internal/errors"
	"github.com/mezu1107/moiz-backend-backend-sub001/internal/state"
	"github.com/mezu1107/moiz-backend-backend-sub001/internal/testutil"
)

// Unit Tests

func TestNewSQLSlotRepository(t *testing.T) {
	db := &sql.DB{}
	repo := NewSQLSlotRepository(db, DriverSQLite)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
	assert.Equal(t, DriverSQLite, repo.driver)
}

func TestIsDeadlockError(t *testing.T) {
	assert.True(t, isDeadlockError(&mysql.MySQLError{Number: 1213}))
	assert.True(t, isDeadlockError(&mysql.MySQLError{Number: 1205}))
	assert.False(t, isDeadlockError(&mysql.MySQLError{Number: 1062}))
	assert.False(t, isDeadlockError(sql.ErrConnDone))
}

// Integration Tests

func newSQLiteRepo(t *testing.T) *SQLSlotRepository {
	db := testutil.SetupTestDB(t)
	repo := NewSQLSlotRepository(db, DriverSQLite)
	require.NoError(t, repo.EnsureSchema(context.Background()))
	return repo
}

func TestSlotRepository_SaveAndFind(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()
	updatedAt := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

	err := repo.Save(ctx, state.Record{
		Slot:      "cart",
		Version:   1,
		Payload:   []byte(`{"items":[]}`),
		UpdatedAt: updatedAt,
	})
	require.NoError(t, err)

	rec, err := repo.FindBySlot(ctx, "cart")
	require.NoError(t, err)
	assert.Equal(t, "cart", rec.Slot)
	assert.Equal(t, 1, rec.Version)
	assert.JSONEq(t, `{"items":[]}`, string(rec.Payload))
	assert.True(t, updatedAt.Equal(rec.UpdatedAt))
}

func TestSlotRepository_SaveOverwrites(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, state.Record{Slot: "auth", Version: 1, Payload: []byte(`"a"`), UpdatedAt: time.Now()}))
	require.NoError(t, repo.Save(ctx, state.Record{Slot: "auth", Version: 2, Payload: []byte(`"b"`), UpdatedAt: time.Now()}))

	rec, err := repo.FindBySlot(ctx, "auth")
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Version)
	assert.Equal(t, `"b"`, string(rec.Payload))
}

func TestSlotRepository_FindBySlot_NotFound(t *testing.T) {
	repo := newSQLiteRepo(t)

	rec, err := repo.FindBySlot(context.Background(), "delivery")
	assert.Error(t, err)
	assert.Nil(t, rec)

	nfe, ok := errors.IsNotFoundError(err)
	assert.True(t, ok)
	assert.NotNil(t, nfe)
}

func TestSlotRepository_Delete(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, state.Record{Slot: "cart", Version: 1, Payload: []byte(`{}`), UpdatedAt: time.Now()}))
	require.NoError(t, repo.Delete(ctx, "cart"))
	require.NoError(t, repo.Delete(ctx, "cart"))

	_, err := repo.FindBySlot(ctx, "cart")
	_, ok := errors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestSlotRepository_MySQL_SaveAndFind(t *testing.T) {
	db := testutil.SetupMySQLTestDB(t)
	repo := NewSQLSlotRepository(db, DriverMySQL)
	ctx := context.Background()
	require.NoError(t, repo.EnsureSchema(ctx))

	require.NoError(t, repo.Save(ctx, state.Record{Slot: "cart", Version: 1, Payload: []byte(`{"items":[]}`), UpdatedAt: time.Now()}))
	require.NoError(t, repo.Save(ctx, state.Record{Slot: "cart", Version: 3, Payload: []byte(`{"items":[1]}`), UpdatedAt: time.Now()}))

	rec, err := repo.FindBySlot(ctx, "cart")
	require.NoError(t, err)
	assert.Equal(t, 3, rec.Version)
}
