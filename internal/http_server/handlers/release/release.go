package release

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	authmw "pokedex_service/internal/http_server/middleware/auth"
	"pokedex_service/internal/ledger"
	resp "pokedex_service/internal/lib/api/response"
	sl "pokedex_service/internal/lib/logger"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"
)

type PokemonReleaser interface {
	Release(ctx context.Context, uid, id string) error
}

func New(log *slog.Logger, releaser PokemonReleaser) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.release.New"

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

		// ids are UUIDs, anything else cannot name a record
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			log.Info("malformed record id", sl.Err(err))
			notFound(w, r)

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := releaser.Release(ctx, uid, id.String()); err != nil {
			if errors.Is(err, ledger.ErrNotFoundOrNotOwned) {
				notFound(w, r)

				return
			}

			log.Error("failed to release pokemon", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		render.JSON(w, r, resp.OK("Pokemon is released"))
	}
}

func notFound(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusNotFound)
	render.JSON(w, r, resp.Error("Pokemon not found or not owned by user"))
}
