package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/claude/freeplans/internal/ingest"
	"github.com/claude/freeplans/internal/ingest/program"
	"github.com/claude/freeplans/internal/models"
	"github.com/claude/freeplans/internal/storage"
)

// Store is the persistence the handlers read from. *storage.DB satisfies it.
type Store interface {
	GetTemplate(ctx context.Context, userID int, id uuid.UUID) (*models.WorkoutTemplate, error)
	ListTemplates(ctx context.Context, userID, limit int) ([]models.TemplateSummary, error)
	DeleteTemplate(ctx context.Context, userID int, id uuid.UUID) error
	QueryImportLogs(ctx context.Context, userID, limit int) ([]storage.ImportLog, error)
	GetDataStats(ctx context.Context, userID int) (*storage.DataStats, error)
	GetOrCreateUser(ctx context.Context, login, displayName string) (int, error)
}

// Programs parses and stores program documents. *program.Provider satisfies it.
type Programs interface {
	IngestDocument(ctx context.Context, name string, r io.Reader, userID int) (*ingest.Result, *models.WorkoutTemplate, error)
	Engine() *program.Engine
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	db       Store
	programs Programs
	whois    WhoIser
	log      *slog.Logger
	apiKey   string
	maxBody  int64
	router   chi.Router
}

// New creates a new Server with all routes configured. maxBody bounds the
// size of pasted program text.
func New(db Store, programs Programs, apiKey string, maxBody int64, log *slog.Logger) *Server {
	if maxBody <= 0 {
		maxBody = 20 << 20
	}
	s := &Server{
		db:       db,
		programs: programs,
		log:      log,
		apiKey:   apiKey,
		maxBody:  maxBody,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// SetTailscale enables per-user identity from the tailnet peer of each request.
func (s *Server) SetTailscale(lc WhoIser) {
	s.whois = lc
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(s.identity)

	s.router.Route("/api/v1/programs", func(r chi.Router) {
		r.Post("/parse", s.handleParse)
		r.Get("/", s.handleListTemplates)
		r.Get("/{id}", s.handleGetTemplate)

		// Writes need the API key
		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey))
			r.Post("/import", s.handleImport)
			r.Delete("/{id}", s.handleDeleteTemplate)
		})
	})

	s.router.Get("/api/v1/imports", s.handleImportLogs)
	s.router.Get("/api/v1/stats", s.handleStats)
	s.router.Get("/api/v1/formats", s.handleFormats)
	s.router.Get("/api/v1/me", s.handleMe)
}

// identity dispatches to the tailscale or dev identity middleware depending
// on whether SetTailscale was called.
func (s *Server) identity(next http.Handler) http.Handler {
	dev := DevIdentity(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.whois == nil {
			dev.ServeHTTP(w, r)
			return
		}
		TailscaleIdentity(s.whois, s.db, s.log)(next).ServeHTTP(w, r)
	})
}
