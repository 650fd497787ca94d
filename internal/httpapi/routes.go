package httpapi

import (
	"net/http"

	"github.com/DoyleJ11/lane-scoring-backend/internal/domain"
	"github.com/DoyleJ11/lane-scoring-backend/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func SetupRoutes(s *Server) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.Log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", SessionHeader},
		MaxAge:         300,
	}))

	r.Get("/healthz", Healthz)
	r.Get("/ws/{code}", ws.Handler(s.Hub, s.Events, ws.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		OutboxSize:     s.opts.OutboxSize,
	}, s.Log))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", Healthz)

		r.Route("/events", func(r chi.Router) {
			r.Post("/", s.createEvent)
			r.With(s.withCode).Get("/{code}", s.getEvent)
			r.With(s.hostOnly).Patch("/{code}", s.updateEvent)
		})

		r.Route("/distances/{code}", func(r chi.Router) {
			r.With(s.withCode).Get("/", s.listDistances)
			r.With(s.hostOnly).Post("/", s.createDistance)
			r.With(s.hostOnly).Patch("/{distanceID}", s.updateDistance)
			r.With(s.hostOnly).Delete("/{distanceID}", s.deleteDistance)
		})

		r.Route("/participants/{code}", func(r chi.Router) {
			r.With(s.withCode).Get("/", s.listParticipants)
			r.With(s.hostOnly).Post("/", s.addParticipant)
			r.With(s.hostOnly).Put("/{participantID}", s.updateParticipant)
			r.With(s.hostOnly).Delete("/{participantID}", s.deleteParticipant)
		})

		r.Route("/lanes/{code}/{lane}", func(r chi.Router) {
			r.Use(s.laneOnly)
			r.Post("/participants", s.addParticipant)
			r.Put("/participants/{participantID}", s.updateParticipant)
			r.Post("/results", s.saveResults)
		})

		r.Route("/results/{code}", func(r chi.Router) {
			r.With(s.hostOnly).Post("/", s.saveResults)
			r.With(s.withCode).Get("/leaderboard", s.leaderboard)
			r.With(s.withCode).Get("/participants/{participantID}", s.participantResults)
			r.With(s.hostOnly).Delete("/participants/{participantID}", s.resetResults)
			r.With(s.withCode).Get("/distances/{distanceID}", s.distanceSheet)
		})

		r.Route("/sessions/{code}", func(r chi.Router) {
			r.Use(s.withCode)
			r.Post("/host", s.login(fixed(domain.Host())))
			r.Post("/viewer", s.login(fixed(domain.Viewer())))
			r.Post("/lane/{lane}", s.login(laneIdentity))
			r.With(s.hostOnly).Get("/lanes", s.laneSessions)
			r.With(s.hostOnly).Delete("/lane/{lane}", s.revokeLane)
		})

		r.Route("/properties/{code}", func(r chi.Router) {
			r.With(s.hostOnly).Get("/", s.getSettings)
			r.With(s.hostOnly).Patch("/", s.updateSettings)
			r.With(s.withCode).Get("/public", s.publicSettings)
		})
	})
	return r
}
