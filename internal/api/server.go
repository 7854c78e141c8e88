package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dgallion1/bookmarkd/internal/config"
	"github.com/dgallion1/bookmarkd/internal/index"
	"github.com/dgallion1/bookmarkd/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for bookmarkd.
type Server struct {
	router chi.Router
	store  *store.Store
	index  *index.Index
	log    *slog.Logger
	cfg    config.Config
}

// NewServer creates and configures the HTTP server. It takes over the
// store's eviction hook to keep the link index in step.
func NewServer(st *store.Store, idx *index.Index, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		store: st,
		index: idx,
		log:   log,
		cfg:   cfg,
	}
	st.OnEvict(func(id string) {
		if err := idx.Delete(context.Background(), id); err != nil {
			log.Error("index delete failed", "collection_id", id, "error", err)
		}
	})
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/collections", s.handleImport)
		r.Get("/api/collections", s.handleListCollections)

		r.Route("/api/collections/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetCollection)
			r.Delete("/", s.handleDeleteCollection)
			r.Get("/links", s.handleView(viewLinks))
			r.Get("/folders", s.handleView(viewFolders))
			r.Get("/items", s.handleView(viewItems))
			r.Post("/paths", s.handleAssignPaths)
			r.Get("/export", s.handleExport)
		})

		r.Get("/api/search", s.handleSearch)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
