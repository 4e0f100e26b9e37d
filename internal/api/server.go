package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/core"
	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/jobs"
	"github.com/zachatkinson/drivehr-netlify-sync-sub000/internal/store"
)

type Server struct {
	router  *chi.Mux
	store   *store.Store
	sync    *core.SyncService
	targets map[string]jobs.TargetConfig
}

func NewServer(st *store.Store, sync *core.SyncService, targets []jobs.TargetConfig) *Server {
	byID := make(map[string]jobs.TargetConfig, len(targets))
	for _, t := range targets {
		byID[t.CompanyID] = t
	}
	s := &Server{
		router:  chi.NewRouter(),
		store:   st,
		sync:    sync,
		targets: byID,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/jobs", s.handleListJobs)
	s.router.Get("/stats", s.handleStats)
	s.router.Get("/runs", s.handleListRuns)
	s.router.Post("/sync", s.handleSync)
}

func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
