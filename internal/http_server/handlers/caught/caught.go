package caught

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	authmw "pokedex_service/internal/http_server/middleware/auth"
	resp "pokedex_service/internal/lib/api/response"
	sl "pokedex_service/internal/lib/logger"
	"pokedex_service/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Response struct {
	resp.Response
	Data []models.CaughtPokemon `json:"data,omitempty"`
}

type CaughtLister interface {
	Caught(ctx context.Context, uid string) ([]models.CaughtPokemon, error)
}

func New(log *slog.Logger, lister CaughtLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.caught.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		uid, ok := authmw.UIDFromContext(r.Context())
		if !ok {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, resp.Error("Unauthorized"))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		caught, err := lister.Caught(ctx, uid)
		if err != nil {
			log.Error("failed to list caught pokemon", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		if len(caught) == 0 {
			render.JSON(w, r, resp.OK("No Pokémon found."))

			return
		}

		render.JSON(w, r, Response{
			Response: resp.OK(""),
			Data:     caught,
		})
	}
}
