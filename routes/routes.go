package routes

import (
	"github.com/Dosada05/bracket-engine/handlers"
	"github.com/Dosada05/bracket-engine/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes mounts the engine's HTTP surface onto the given router.
//
// Public:    bracket and match reads, the live WebSocket feed.
// Organizer: bracket generation, court administration, reassignment.
// Referee:   match lifecycle (start, score, undo, complete).
func SetupRoutes(
	router *chi.Mux,
	auth *middleware.Auth,
	scoreLimiter *middleware.ScoreRateLimiter,
	bracketHandler *handlers.BracketHandler,
	matchHandler *handlers.MatchHandler,
	courtHandler *handlers.CourtHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)

	router.Route("/tournaments/{tournamentID}", func(r chi.Router) {
		r.Route("/categories/{categoryID}", func(r chi.Router) {
			r.Get("/bracket", bracketHandler.GetFullBracketHandler)

			r.Group(func(r chi.Router) {
				r.Use(auth.Authenticate)
				r.Use(middleware.Authorize(middleware.RoleOrganizer))

				r.Post("/bracket", bracketHandler.GenerateBracketHandler)
				r.Post("/bracket/regenerate", bracketHandler.RegenerateBracketHandler)
			})
		})

		r.Route("/courts", func(r chi.Router) {
			r.Get("/", courtHandler.ListCourtsHandler)

			r.Group(func(r chi.Router) {
				r.Use(auth.Authenticate)
				r.Use(middleware.Authorize(middleware.RoleOrganizer))

				r.Post("/", courtHandler.CreateCourtHandler)
				r.Post("/reassign", courtHandler.ReassignCourtsHandler)
			})
		})
	})

	router.Group(func(r chi.Router) {
		r.Use(auth.Authenticate)
		r.Use(middleware.Authorize(middleware.RoleOrganizer))

		r.Delete("/courts/{courtID}", courtHandler.DeleteCourtHandler)
	})

	router.Route("/matches", func(r chi.Router) {
		r.Get("/{matchID}", matchHandler.GetMatchHandler)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(middleware.Authorize(middleware.RoleReferee, middleware.RoleOrganizer))

			r.Post("/{matchID}/start", matchHandler.StartMatchHandler)
			r.Post("/{matchID}/complete", matchHandler.CompleteMatchHandler)

			r.Group(func(r chi.Router) {
				r.Use(scoreLimiter.Middleware)
				r.Post("/{matchID}/score", matchHandler.RecordScoreHandler)
				r.Post("/{matchID}/score/undo", matchHandler.UndoScoreHandler)
			})
		})
	})

	router.Get("/categories/{categoryID}/matches", matchHandler.ListCategoryMatchesHandler)
}
