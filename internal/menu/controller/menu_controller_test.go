package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mezu1107/moiz-backend-backend-sub001/internal/domain"
	"github.com/mezu1107/moiz-backend-backend-sub001/internal/dto"
	apperrors "github.com/mezu1107/moiz-backend-backend-sub001/internal/errors"
)

type mockSearchUseCase struct {
	SearchMenuItemsFunc func(ctx context.Context, ids []string) (*dto.MenuSearchResponse, error)
}

func (m *mockSearchUseCase) SearchMenuItems(ctx context.Context, ids []string) (*dto.MenuSearchResponse, error) {
	return m.SearchMenuItemsFunc(ctx, ids)
}

func TestHandleSearchMenuItems_Success(t *testing.T) {
	var gotIDs []string
	uc := &mockSearchUseCase{
		SearchMenuItemsFunc: func(ctx context.Context, ids []string) (*dto.MenuSearchResponse, error) {
			gotIDs = ids
			return &dto.MenuSearchResponse{
				Items:    []domain.MenuItem{{ID: "biryani", Price: 450, IsAvailable: true}},
				NotFound: []string{"karahi"},
			}, nil
		},
	}
	ctrl := NewController(uc, zap.NewNop())

	rec := httptest.NewRecorder()
	ctrl.HandleSearchMenuItems(rec, httptest.NewRequest(http.MethodGet, "/menu/search?ids=biryani,%20karahi", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"biryani", "karahi"}, gotIDs)

	var resp dto.MenuSearchResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp.TraceID)
	assert.Len(t, resp.Items, 1)
	assert.Equal(t, []string{"karahi"}, resp.NotFound)
}

func TestHandleSearchMenuItems_Validation(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		message string
	}{
		{"missing ids", "", "ids is required"},
		{"blank id", "?ids=biryani,,naan", "each id must be non-empty"},
		{"too many ids", "?ids=" + strings.TrimSuffix(strings.Repeat("x,", 101), ","), "ids exceeds maximum of 100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewController(&mockSearchUseCase{}, zap.NewNop())

			rec := httptest.NewRecorder()
			ctrl.HandleSearchMenuItems(rec, httptest.NewRequest(http.MethodGet, "/menu/search"+tt.query, nil))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var resp dto.ValidationErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tt.message, resp.Message)
		})
	}
}

func TestHandleSearchMenuItems_UpstreamError(t *testing.T) {
	uc := &mockSearchUseCase{
		SearchMenuItemsFunc: func(ctx context.Context, ids []string) (*dto.MenuSearchResponse, error) {
			return nil, apperrors.NewTransportError("Kitchen closed", 422, nil)
		},
	}
	ctrl := NewController(uc, zap.NewNop())

	rec := httptest.NewRecorder()
	ctrl.HandleSearchMenuItems(rec, httptest.NewRequest(http.MethodGet, "/menu/search?ids=biryani", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var resp dto.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Kitchen closed", resp.Message)
}
