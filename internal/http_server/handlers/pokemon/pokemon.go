package pokemon

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	resp "pokedex_service/internal/lib/api/response"
	sl "pokedex_service/internal/lib/logger"
	"pokedex_service/internal/pokeapi"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Response struct {
	resp.Response
	Data json.RawMessage `json:"data"`
}

type SpeciesFetcher interface {
	Pokemon(ctx context.Context, name string) (json.RawMessage, error)
}

func New(log *slog.Logger, species SpeciesFetcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.pokemon.New"

		name := chi.URLParam(r, "name")

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("pokemon", name),
		)

		data, err := species.Pokemon(r.Context(), name)
		if err != nil {
			if errors.Is(err, pokeapi.ErrNotFound) {
				log.Info("pokemon not found upstream")

				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("Your Pokémon was not found!"))

				return
			}

			log.Error("failed to fetch pokemon", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		ResponseOK(w, r, data)
	}
}

func ResponseOK(w http.ResponseWriter, r *http.Request, data json.RawMessage) {
	render.JSON(w, r, Response{
		Response: resp.OK(""),
		Data:     data,
	})
}
