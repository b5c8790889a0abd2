package catch

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
	"pokedex_service/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Name string `json:"name" validate:"required"`
}

type Response struct {
	resp.Response
	Data models.CaughtRecord `json:"data"`
}

type PokemonCatcher interface {
	Catch(ctx context.Context, uid, name string) (models.CaughtRecord, error)
}

func New(
	log *slog.Logger,
	validate *validator.Validate,
	catcher PokemonCatcher,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.catch.New"

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

		var req Request

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("Failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Failed to decode request"))

			return
		}

		if err := validate.Struct(req); err != nil {
			log.Info("Invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Pokemon name is required"))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		record, err := catcher.Catch(ctx, uid, req.Name)
		if err != nil {
			if errors.Is(err, ledger.ErrInvalidInput) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("Pokemon name is required"))

				return
			}

			log.Error("failed to catch pokemon", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		ResponseOK(w, r, record)
	}
}

func ResponseOK(w http.ResponseWriter, r *http.Request, record models.CaughtRecord) {
	render.JSON(w, r, Response{
		Response: resp.OK("Pokemon caught"),
		Data:     record,
	})
}
