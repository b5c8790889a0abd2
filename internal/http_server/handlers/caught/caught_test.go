package caught_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"pokedex_service/internal/http_server/handlers/caught"
	authmw "pokedex_service/internal/http_server/middleware/auth"
	sl "pokedex_service/internal/lib/logger"
	"pokedex_service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockLister struct {
	mock.Mock
}

func (m *mockLister) Caught(ctx context.Context, uid string) ([]models.CaughtPokemon, error) {
	args := m.Called(ctx, uid)
	list, _ := args.Get(0).([]models.CaughtPokemon)
	return list, args.Error(1)
}

func serve(t *testing.T, lister *mockLister) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/protected/caught", nil)
	req = req.WithContext(authmw.WithUID(req.Context(), "user-1"))
	rr := httptest.NewRecorder()

	caught.New(sl.NewDiscardLogger(), lister).ServeHTTP(rr, req)

	return rr
}

func TestCaughtHandler_List(t *testing.T) {
	lister := new(mockLister)
	lister.On("Caught", mock.Anything, "user-1").Return([]models.CaughtPokemon{
		{
			CaughtRecord: models.CaughtRecord{ID: "record-1", UserID: "user-1", SpeciesID: "species-1"},
			Species:      models.Species{ID: "species-1", Name: "pikachu"},
		},
	}, nil).Once()

	rr := serve(t, lister)

	require.Equal(t, http.StatusOK, rr.Code)

	var body caught.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "record-1", body.Data[0].ID)
	assert.Equal(t, "pikachu", body.Data[0].Species.Name)
	assert.Empty(t, body.Message)
}

func TestCaughtHandler_Empty(t *testing.T) {
	lister := new(mockLister)
	lister.On("Caught", mock.Anything, "user-1").Return([]models.CaughtPokemon{}, nil).Once()

	rr := serve(t, lister)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"OK","message":"No Pokémon found."}`, rr.Body.String())
}

func TestCaughtHandler_StorageFailure(t *testing.T) {
	lister := new(mockLister)
	lister.On("Caught", mock.Anything, "user-1").Return(nil, errors.New("connection reset")).Once()

	rr := serve(t, lister)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"status":"Error","error":"Internal error"}`, rr.Body.String())
}
