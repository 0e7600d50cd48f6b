package routes

import (
	"github.com/dojofed/tournament-core/handlers"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func SetupRoutes(
	router *chi.Mux,
	bracketHandler *handlers.BracketHandler,
	matchHandler *handlers.MatchHandler,
	statisticsHandler *handlers.StatisticsHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Route("/events/{eventID}", func(r chi.Router) {
		r.Post("/brackets/generate", bracketHandler.GenerateBracketsHandler)
		r.Get("/brackets", bracketHandler.ListEventBracketsHandler)
		r.Get("/statistics", statisticsHandler.EventStatisticsHandler)
	})

	router.Route("/brackets/{bracketID}", func(r chi.Router) {
		r.Patch("/status", bracketHandler.UpdateBracketStatusHandler)
		r.Post("/results", bracketHandler.CalculateResultsHandler)
		r.Get("/results", bracketHandler.ListBracketResultsHandler)
	})

	router.Route("/matches/{matchID}", func(r chi.Router) {
		r.Post("/start", matchHandler.StartMatchHandler)
		r.Patch("/score", matchHandler.UpdateMatchScoreHandler)
		r.Post("/end", matchHandler.EndMatchHandler)
	})

	router.Get("/ws/events/{eventID}", webSocketHandler.ServeWs)
}
