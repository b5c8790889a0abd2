package release_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"pokedex_service/internal/http_server/handlers/release"
	authmw "pokedex_service/internal/http_server/middleware/auth"
	"pokedex_service/internal/ledger"
	sl "pokedex_service/internal/lib/logger"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockReleaser struct {
	mock.Mock
}

func (m *mockReleaser) Release(ctx context.Context, uid, id string) error {
	return m.Called(ctx, uid, id).Error(0)
}

const recordID = "6f1c2b0e-8a55-4c1e-9d4b-2f8a7e0d9c31"

func TestReleaseHandler(t *testing.T) {
	tests := []struct {
		name         string
		id           string
		callsRelease bool
		releaseErr   error
		wantStatus   int
		wantBody     string
	}{
		{
			name:         "released",
			id:           recordID,
			callsRelease: true,
			wantStatus:   http.StatusOK,
			wantBody:     `{"status":"OK","message":"Pokemon is released"}`,
		},
		{
			name:         "not found or not owned",
			id:           recordID,
			callsRelease: true,
			releaseErr:   fmt.Errorf("ledger.Release: %w", ledger.ErrNotFoundOrNotOwned),
			wantStatus:   http.StatusNotFound,
			wantBody:     `{"status":"Error","error":"Pokemon not found or not owned by user"}`,
		},
		{
			name:         "storage failure",
			id:           recordID,
			callsRelease: true,
			releaseErr:   errors.New("connection reset"),
			wantStatus:   http.StatusInternalServerError,
			wantBody:     `{"status":"Error","error":"Internal error"}`,
		},
		{
			name:       "numeric id",
			id:         "42",
			wantStatus: http.StatusNotFound,
			wantBody:   `{"status":"Error","error":"Pokemon not found or not owned by user"}`,
		},
		{
			name:       "malformed id",
			id:         "not-a-uuid",
			wantStatus: http.StatusNotFound,
			wantBody:   `{"status":"Error","error":"Pokemon not found or not owned by user"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			releaser := new(mockReleaser)
			if tt.callsRelease {
				releaser.On("Release", mock.Anything, "user-1", recordID).Return(tt.releaseErr).Once()
			}

			r := chi.NewRouter()
			r.Delete("/protected/release/{id}", release.New(sl.NewDiscardLogger(), releaser))

			req := httptest.NewRequest(http.MethodDelete, "/protected/release/"+tt.id, nil)
			req = req.WithContext(authmw.WithUID(req.Context(), "user-1"))
			rr := httptest.NewRecorder()

			r.ServeHTTP(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.JSONEq(t, tt.wantBody, rr.Body.String())
			releaser.AssertExpectations(t)
		})
	}
}
