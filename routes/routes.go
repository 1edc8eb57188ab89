package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/Dosada05/competition-brackets/docs"
	"github.com/Dosada05/competition-brackets/handlers"
	"github.com/Dosada05/competition-brackets/middleware"
	"github.com/Dosada05/competition-brackets/models"
)

type Options struct {
	JWTSecretKey   string
	AllowedOrigins []string
}

func SetupRoutes(
	router chi.Router,
	opts Options,
	bracketHandler *handlers.BracketHandler,
	matchHandler *handlers.MatchHandler,
	rosterHandler *handlers.RosterHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	authenticate := middleware.Authenticate(opts.JWTSecretKey)
	managers := middleware.Authorize(models.RoleAdmin, models.RoleOrganizer, models.RoleSystem)

	router.Route("/competitions/{competitionID}/brackets", func(r chi.Router) {
		// Публичный просмотр сеток
		r.Get("/", bracketHandler.GetBrackets)

		r.Group(func(r chi.Router) {
			r.Use(authenticate, managers)
			r.Post("/", bracketHandler.CreateBrackets)
		})
	})

	router.Route("/brackets/{bracketID}", func(r chi.Router) {
		r.Get("/standings", bracketHandler.GetStandings)

		r.Group(func(r chi.Router) {
			r.Use(authenticate, managers)
			r.Post("/matches/{matchID}/start", matchHandler.StartMatch)
			r.Post("/matches/{matchID}/result", matchHandler.RecordResult)
			r.Post("/matches/{matchID}/cancel", matchHandler.CancelMatch)
		})
	})

	// Вызывается процессом одобрения заявок
	router.Group(func(r chi.Router) {
		r.Use(authenticate, middleware.Authorize(models.RoleAdmin, models.RoleSystem))
		r.Post("/internal/competitions/{competitionID}/roster-changed", rosterHandler.RosterChanged)
	})

	router.Get("/ws/competitions/{competitionID}", webSocketHandler.ServeWs)
}
