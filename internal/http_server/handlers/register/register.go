package register

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"pokedex_service/internal/auth"
	resp "pokedex_service/internal/lib/api/response"
	sl "pokedex_service/internal/lib/logger"
	"pokedex_service/internal/lib/notification"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Email string `json:"email" validate:"required"`
	Pass  string `json:"password" validate:"required"`
}

type Response struct {
	resp.Response
	UserID string `json:"user_id"`
}

type UserRegisterer interface {
	RegisterNewUser(ctx context.Context, email, pass string) (string, error)
}

func New(
	log *slog.Logger,
	validate *validator.Validate,
	users UserRegisterer,
	msgSender notification.Publisher,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.register.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("Failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Failed to decode request"))

			return
		}

		log.Info("Request body decoded")

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("Invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		userID, err := users.RegisterNewUser(ctx, req.Email, req.Pass)
		if err != nil {
			if errors.Is(err, auth.ErrUserExists) {
				log.Info("Email already registered")

				render.Status(r, http.StatusConflict)
				render.JSON(w, r, resp.Error("Email already exists"))

				return
			}

			log.Error("failed to register user", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		log.Info("User registered", slog.String("id", userID))

		notification.SendWelcome(ctx, log, msgSender, req.Email)

		ResponseOK(w, r, req.Email, userID)
	}
}

func ResponseOK(w http.ResponseWriter, r *http.Request, email, userID string) {
	render.JSON(w, r, Response{
		Response: resp.OK(fmt.Sprintf("%s created successfully", email)),
		UserID:   userID,
	})
}
