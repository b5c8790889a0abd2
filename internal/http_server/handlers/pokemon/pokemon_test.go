package pokemon_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"pokedex_service/internal/http_server/handlers/pokemon"
	sl "pokedex_service/internal/lib/logger"
	"pokedex_service/internal/pokeapi"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) Pokemon(ctx context.Context, name string) (json.RawMessage, error) {
	args := m.Called(ctx, name)
	data, _ := args.Get(0).(json.RawMessage)
	return data, args.Error(1)
}

func TestPokemonHandler(t *testing.T) {
	tests := []struct {
		name       string
		data       json.RawMessage
		fetchErr   error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "found",
			data:       json.RawMessage(`{"id":25,"name":"pikachu"}`),
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"OK","data":{"id":25,"name":"pikachu"}}`,
		},
		{
			name:       "unknown species",
			fetchErr:   fmt.Errorf("pokeapi.Pokemon: %w", pokeapi.ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantBody:   `{"status":"Error","error":"Your Pokémon was not found!"}`,
		},
		{
			name:       "upstream failure",
			fetchErr:   fmt.Errorf("pokeapi.Pokemon: %w: %w", pokeapi.ErrUpstream, errors.New("timeout")),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"status":"Error","error":"Internal error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := new(mockFetcher)
			fetcher.On("Pokemon", mock.Anything, "pikachu").Return(tt.data, tt.fetchErr).Once()

			r := chi.NewRouter()
			r.Get("/pokemon/{name}", pokemon.New(sl.NewDiscardLogger(), fetcher))

			req := httptest.NewRequest(http.MethodGet, "/pokemon/pikachu", nil)
			rr := httptest.NewRecorder()

			r.ServeHTTP(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.JSONEq(t, tt.wantBody, rr.Body.String())
			fetcher.AssertExpectations(t)
		})
	}
}
