package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/fragdeck/internal/config"
	"github.com/dgallion1/fragdeck/internal/render"
	"github.com/dgallion1/fragdeck/internal/stats"
	"github.com/dgallion1/fragdeck/internal/viewer"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for fragdeck.
type Server struct {
	router     chi.Router
	store      *viewer.Store
	eval       *render.Evaluator
	stats      *stats.BuildStats
	stylesheet string
	log        *slog.Logger
	cfg        config.Config
}

// NewServer creates and configures the HTTP server. A nil evaluator uses the
// default fragment rules.
func NewServer(store *viewer.Store, eval *render.Evaluator, buildStats *stats.BuildStats, log *slog.Logger, cfg config.Config) *Server {
	if eval == nil {
		eval = render.NewEvaluator(nil)
	}
	if buildStats == nil {
		buildStats = stats.NewBuildStats(cfg.SessionTTL)
	}
	s := &Server{
		store: store,
		eval:  eval,
		stats: buildStats,
		log:   log,
		cfg:   cfg,
	}
	css, err := cfg.Stylesheet()
	if err != nil {
		log.Warn("falling back to built-in stylesheet", "error", err)
	}
	s.stylesheet = css
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

	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Post("/api/decks", s.handleUpload)
		r.Get("/api/decks", s.handleListDecks)
		r.Get("/api/stats/render", s.handleBuildStats)

		r.Route("/api/decks/{deckID}", func(r chi.Router) {
			r.Get("/", s.handleGetDeck)
			r.Delete("/", s.handleDeleteDeck)
			r.Post("/advance", s.handleAdvance)
			r.Post("/back", s.handleBack)
			r.Put("/page/{n}", s.handleGoto)
		})

		r.Get("/decks/{deckID}", s.handleView)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
