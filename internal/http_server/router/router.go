package router

import (
	"log/slog"
	"net/http"
	"time"

	"pokedex_service/internal/http_server/handlers/catch"
	"pokedex_service/internal/http_server/handlers/caught"
	"pokedex_service/internal/http_server/handlers/login"
	"pokedex_service/internal/http_server/handlers/pokemon"
	"pokedex_service/internal/http_server/handlers/register"
	"pokedex_service/internal/http_server/handlers/release"
	authmw "pokedex_service/internal/http_server/middleware/auth"
	resp "pokedex_service/internal/lib/api/response"
	"pokedex_service/internal/lib/api/validation"
	"pokedex_service/internal/lib/notification"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Users interface {
	register.UserRegisterer
	login.UserAuthenticator
}

type Ledger interface {
	catch.PokemonCatcher
	release.PokemonReleaser
	caught.CaughtLister
}

type Tokens interface {
	authmw.TokenVerifier
	TTL() time.Duration
}

type Deps struct {
	Users     Users
	Tokens    Tokens
	Ledger    Ledger
	Species   pokemon.SpeciesFetcher
	Publisher notification.Publisher
}

func New(log *slog.Logger, deps Deps) *chi.Mux {
	if deps.Publisher == nil {
		deps.Publisher = notification.NopPublisher{}
	}

	validate := validation.New()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, resp.Error("Not found"))
	})

	r.Post("/register", register.New(log, validate, deps.Users, deps.Publisher))
	r.Post("/login", login.New(log, validate, deps.Users, deps.Tokens.TTL()))
	r.Get("/pokemon/{name}", pokemon.New(log, deps.Species))

	r.Route("/protected", func(r chi.Router) {
		r.Use(authmw.New(log, deps.Tokens))

		r.Post("/catch", catch.New(log, validate, deps.Ledger))
		r.Delete("/release/{id}", release.New(log, deps.Ledger))
		r.Get("/caught", caught.New(log, deps.Ledger))
	})

	return r
}
