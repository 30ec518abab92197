// Package worker provides the HTTP worker service for focusforge.
package worker

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/thebtf/focusforge/internal/config"
	"github.com/thebtf/focusforge/internal/summary"
	"github.com/thebtf/focusforge/internal/worker/session"
	"github.com/thebtf/focusforge/internal/worker/sse"
	"github.com/thebtf/focusforge/pkg/models"
)

const (
	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout = 5 * time.Second

	// seedLimit is how many recent sessions are inspected on startup.
	seedLimit = 100
)

// SessionSource is the read side the summary pipeline needs.
type SessionSource interface {
	GetSession(ctx context.Context, id string) (*models.Session, error)
	GetEvents(ctx context.Context, id string) ([]models.Event, error)
	GetAnalysis(ctx context.Context, id string) (*models.AnalysisResult, error)
}

// SessionStore is the full persistence surface used by the worker.
// Implemented by the gorm session store.
type SessionStore interface {
	SessionSource
	CreateSession(ctx context.Context, intentRaw string, tags []string) (*models.Session, error)
	ListSessions(ctx context.Context, limit int) ([]*models.Session, error)
	EndSession(ctx context.Context, id string, endedAt int64, status models.SessionStatus) (*models.Session, error)
	MarkAnalyzed(ctx context.Context, id string) error
	AppendEvents(ctx context.Context, id string, events []models.Event) (int, error)
	SaveAnalysis(ctx context.Context, id string, res *models.AnalysisResult) error
	DeleteSession(ctx context.Context, id string) error
}

// Service is the worker: HTTP API, live event stream and idle reaper.
type Service struct {
	startTime      time.Time
	sessionStore   SessionStore
	config         *config.Config
	sessionManager *session.Manager
	sseBroadcaster *sse.Broadcaster
	router         chi.Router
	server         *http.Server
	engine         atomic.Pointer[summary.Engine]
	version        string
	ready          atomic.Bool
}

// NewService wires a worker around store and engine.
func NewService(version string, cfg *config.Config, store SessionStore, engine *summary.Engine) *Service {
	if cfg == nil {
		cfg = config.Default()
	}
	if engine == nil {
		engine = summary.NewEngine(nil, summary.DefaultOptions())
	}

	svc := &Service{
		version:        version,
		config:         cfg,
		sessionStore:   store,
		sessionManager: session.NewManager(store, cfg.IdleTimeout()),
		sseBroadcaster: sse.NewBroadcaster(),
		router:         chi.NewRouter(),
		startTime:      time.Now(),
	}
	svc.engine.Store(engine)
	svc.sessionManager.OnEnded(func(sess *models.Session) {
		svc.sseBroadcaster.Publish(sse.Event{
			Type:      sse.EventSessionEnded,
			SessionID: sess.ID,
			Data:      sess,
		})
	})
	svc.setupRoutes()
	return svc
}

// Engine returns the summary engine currently in use.
func (s *Service) Engine() *summary.Engine {
	return s.engine.Load()
}

// SetEngine swaps the summary engine, e.g. after a taxonomy reload.
// In-flight requests finish with the engine they started with.
func (s *Service) SetEngine(engine *summary.Engine) {
	if engine == nil {
		return
	}
	s.engine.Store(engine)
	s.sseBroadcaster.Publish(sse.Event{Type: sse.EventTaxonomyUpdated})
	log.Info().Msg("Summary engine updated")
}

// Handler returns the HTTP handler.
func (s *Service) Handler() http.Handler {
	return s.router
}

// Ready reports whether the worker accepts API requests.
func (s *Service) Ready() bool {
	return s.ready.Load()
}

func (s *Service) setupRoutes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", serveIndex)
	r.Get("/assets/*", serveAssets)
	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/ready", s.handleReady)
		r.Get("/version", s.handleVersion)

		r.Group(func(r chi.Router) {
			r.Use(s.requireReady)

			r.Get("/events", s.sseBroadcaster.HandleSSE)
			r.Get("/taxonomy", s.handleTaxonomy)
			r.Post("/compute", s.handleCompute)

			r.Route("/sessions", func(r chi.Router) {
				r.Post("/", s.handleCreateSession)
				r.Get("/", s.handleListSessions)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetSession)
					r.Delete("/", s.handleDeleteSession)
					r.Post("/events", s.handleAppendEvents)
					r.Post("/end", s.handleEndSession)
					r.Put("/analysis", s.handlePutAnalysis)
					r.Get("/summary", s.handleGetSummary)
					r.Get("/journal", s.handleGetJournal)
					r.Get("/prompt", s.handleGetPrompt)
					r.Get("/plan", s.handleGetPlan)
				})
			})
		})
	})
}

// Start serves HTTP on the configured address and runs the idle reaper
// until ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr())
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener.
func (s *Service) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	s.server = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		// Request contexts end with the worker so SSE streams unblock on shutdown.
		BaseContext: func(net.Listener) context.Context { return gctx },
	}

	s.seedActiveSessions(gctx)
	s.ready.Store(true)

	log.Info().
		Str("addr", ln.Addr().String()).
		Str("version", s.version).
		Msg("Worker listening")

	g.Go(func() error {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return s.sessionManager.Run(gctx, session.DefaultSweepInterval)
	})
	g.Go(func() error {
		<-gctx.Done()
		s.ready.Store(false)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		log.Info().Msg("Worker shutting down")
		return s.server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// seedActiveSessions tracks sessions left running by a previous process so
// the idle reaper can close them.
func (s *Service) seedActiveSessions(ctx context.Context) {
	sessions, err := s.sessionStore.ListSessions(ctx, seedLimit)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load sessions for idle tracking")
		return
	}

	for _, sess := range sessions {
		if sess.Status != models.SessionStatusRunning && sess.Status != models.SessionStatusPaused {
			continue
		}
		last := sess.StartedAt
		if events, err := s.sessionStore.GetEvents(ctx, sess.ID); err == nil {
			for _, ev := range events {
				if ev.TS > last {
					last = ev.TS
				}
			}
		}
		s.sessionManager.Touch(sess.ID, last)
	}

	log.Debug().
		Int("tracked", s.sessionManager.GetActiveSessionCount()).
		Msg("Seeded active sessions")
}
