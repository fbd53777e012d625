package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/mezu1107/moiz-backend-backend-sub001/internal/errors"
	"github.com/mezu1107/moiz-backend-backend-sub001/internal/state"
)

func signedToken(t *testing.T, subject string, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestTokenStore_SetAndPersist(t *testing.T) {
	ctx := context.Background()
	repo := state.NewMemoryRepository()
	token := signedToken(t, "user-42", time.Now().Add(time.Hour))

	store := NewTokenStore(repo, zap.NewNop())
	require.NoError(t, store.SetToken(ctx, token))
	assert.Equal(t, token, store.Token())
	assert.Equal(t, "user-42", store.Subject())

	restarted := NewTokenStore(repo, zap.NewNop())
	require.NoError(t, restarted.Init(ctx))
	assert.Equal(t, token, restarted.Token())
}

func TestTokenStore_OpaqueTokenNeverExpires(t *testing.T) {
	store := NewTokenStore(state.NewMemoryRepository(), zap.NewNop())

	require.NoError(t, store.SetToken(context.Background(), "opaque-session-token"))
	assert.Equal(t, "opaque-session-token", store.Token())
	assert.Empty(t, store.Subject())
}

func TestTokenStore_RejectsEmptyAndExpired(t *testing.T) {
	store := NewTokenStore(state.NewMemoryRepository(), zap.NewNop())

	err := store.SetToken(context.Background(), "  ")
	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)

	err = store.SetToken(context.Background(), signedToken(t, "u", time.Now().Add(-time.Minute)))
	_, ok = apperrors.IsValidationError(err)
	assert.True(t, ok)
	assert.Empty(t, store.Token())
}

func TestTokenStore_ExpiresWhileHeld(t *testing.T) {
	store := NewTokenStore(state.NewMemoryRepository(), zap.NewNop())
	expiry := time.Now().Add(time.Hour)
	require.NoError(t, store.SetToken(context.Background(), signedToken(t, "u", expiry)))

	store.now = func() time.Time { return expiry.Add(time.Second) }
	assert.Empty(t, store.Token())
}

func TestTokenStore_InitDropsExpiredPersistedToken(t *testing.T) {
	ctx := context.Background()
	repo := state.NewMemoryRepository()
	slot := state.NewSlot[persistedToken](repo, slotName, slotVersion)
	require.NoError(t, slot.Store(ctx, persistedToken{Token: signedToken(t, "u", time.Now().Add(-time.Hour))}))

	store := NewTokenStore(repo, zap.NewNop())
	require.NoError(t, store.Init(ctx))
	assert.Empty(t, store.Token())
}

func TestTokenStore_ClearDeletesSlot(t *testing.T) {
	ctx := context.Background()
	repo := state.NewMemoryRepository()
	store := NewTokenStore(repo, zap.NewNop())
	require.NoError(t, store.SetToken(ctx, "opaque"))

	require.NoError(t, store.Clear(ctx))
	assert.Empty(t, store.Token())

	_, err := repo.FindBySlot(ctx, slotName)
	_, notFound := apperrors.IsNotFoundError(err)
	assert.True(t, notFound)
}
