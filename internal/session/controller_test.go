package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mezu1107/moiz-backend-backend-sub001/internal/dto"
	apperrors "github.com/mezu1107/moiz-backend-backend-sub001/internal/errors"
)

type mockManager struct {
	SignInFunc func(ctx context.Context, token string) error
	LogoutFunc func(ctx context.Context) error
	signedIn   bool
}

func (m *mockManager) SignIn(ctx context.Context, token string) error {
	if err := m.SignInFunc(ctx, token); err != nil {
		return err
	}
	m.signedIn = true
	return nil
}

func (m *mockManager) Logout(ctx context.Context) error {
	m.signedIn = false
	return m.LogoutFunc(ctx)
}

func (m *mockManager) Authenticated() bool { return m.signedIn }
func (m *mockManager) Subject() string {
	if m.signedIn {
		return "user-42"
	}
	return ""
}

func TestSetToken(t *testing.T) {
	var got string
	manager := &mockManager{SignInFunc: func(ctx context.Context, token string) error {
		got = token
		return nil
	}}
	ctrl := NewController(manager, zap.NewNop())

	rec := httptest.NewRecorder()
	ctrl.SetToken(rec, httptest.NewRequest(http.MethodPut, "/session/token", strings.NewReader(`{"token":"abc"}`)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc", got)
	var resp dto.SessionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Authenticated)
	assert.Equal(t, "user-42", resp.Subject)
}

func TestSetToken_Rejected(t *testing.T) {
	manager := &mockManager{SignInFunc: func(ctx context.Context, token string) error {
		return apperrors.NewValidationError("token is expired", apperrors.ValidationDetail{Field: "token", Message: "token expiry is in the past"})
	}}
	ctrl := NewController(manager, zap.NewNop())

	rec := httptest.NewRecorder()
	ctrl.SetToken(rec, httptest.NewRequest(http.MethodPut, "/session/token", strings.NewReader(`{"token":"old"}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp dto.ValidationErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "token is expired", resp.Message)
}

func TestLogout(t *testing.T) {
	manager := &mockManager{signedIn: true, LogoutFunc: func(ctx context.Context) error { return nil }}
	ctrl := NewController(manager, zap.NewNop())

	rec := httptest.NewRecorder()
	ctrl.Logout(rec, httptest.NewRequest(http.MethodPost, "/session/logout", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp dto.SessionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.False(t, resp.Authenticated)
}

func TestLogout_PersistenceFailure(t *testing.T) {
	manager := &mockManager{LogoutFunc: func(ctx context.Context) error { return errors.New("disk full") }}
	ctrl := NewController(manager, zap.NewNop())

	rec := httptest.NewRecorder()
	ctrl.Logout(rec, httptest.NewRequest(http.MethodPost, "/session/logout", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
