package catch_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pokedex_service/internal/http_server/handlers/catch"
	authmw "pokedex_service/internal/http_server/middleware/auth"
	"pokedex_service/internal/ledger"
	"pokedex_service/internal/lib/api/validation"
	sl "pokedex_service/internal/lib/logger"
	"pokedex_service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCatcher struct {
	mock.Mock
}

func (m *mockCatcher) Catch(ctx context.Context, uid, name string) (models.CaughtRecord, error) {
	args := m.Called(ctx, uid, name)
	return args.Get(0).(models.CaughtRecord), args.Error(1)
}

func TestCatchHandler(t *testing.T) {
	record := models.CaughtRecord{
		ID:        "record-1",
		UserID:    "user-1",
		SpeciesID: "species-1",
		CaughtAt:  time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name       string
		body       string
		callsCatch bool
		catchErr   error
		wantStatus int
		wantError  string
	}{
		{name: "success", body: `{"name":"pikachu"}`, callsCatch: true, wantStatus: http.StatusOK},
		{name: "missing name", body: `{}`, wantStatus: http.StatusBadRequest, wantError: "Pokemon name is required"},
		{name: "empty name", body: `{"name":""}`, wantStatus: http.StatusBadRequest, wantError: "Pokemon name is required"},
		{name: "malformed json", body: `{"name"`, wantStatus: http.StatusBadRequest, wantError: "Failed to decode request"},
		{
			name:       "blank name rejected by ledger",
			body:       `{"name":"pikachu"}`,
			callsCatch: true,
			catchErr:   fmt.Errorf("ledger.Catch: %w", ledger.ErrInvalidInput),
			wantStatus: http.StatusBadRequest,
			wantError:  "Pokemon name is required",
		},
		{
			name:       "storage failure",
			body:       `{"name":"pikachu"}`,
			callsCatch: true,
			catchErr:   errors.New("connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "Internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catcher := new(mockCatcher)
			if tt.callsCatch {
				catcher.On("Catch", mock.Anything, "user-1", "pikachu").Return(record, tt.catchErr).Once()
			}

			h := catch.New(sl.NewDiscardLogger(), validation.New(), catcher)

			req := httptest.NewRequest(http.MethodPost, "/protected/catch", bytes.NewBufferString(tt.body))
			req = req.WithContext(authmw.WithUID(req.Context(), "user-1"))
			rr := httptest.NewRecorder()

			h.ServeHTTP(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)

			var body catch.Response
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))

			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, body.Error)
			} else {
				assert.Equal(t, "Pokemon caught", body.Message)
				assert.Equal(t, record.ID, body.Data.ID)
				assert.Equal(t, record.SpeciesID, body.Data.SpeciesID)
				assert.True(t, record.CaughtAt.Equal(body.Data.CaughtAt))
			}

			catcher.AssertExpectations(t)
		})
	}
}

func TestCatchHandler_NoUser(t *testing.T) {
	catcher := new(mockCatcher)
	h := catch.New(sl.NewDiscardLogger(), validation.New(), catcher)

	req := httptest.NewRequest(http.MethodPost, "/protected/catch", bytes.NewBufferString(`{"name":"pikachu"}`))
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	catcher.AssertNotCalled(t, "Catch", mock.Anything, mock.Anything, mock.Anything)
}
