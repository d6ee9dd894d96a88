package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-composer/internal/store"
	"github.com/goliatone/go-composer/pkg/components"
	"github.com/goliatone/go-composer/pkg/editor"
	"github.com/goliatone/go-composer/pkg/forms"
	"github.com/goliatone/go-composer/pkg/page"
	"github.com/goliatone/go-composer/pkg/schema"
	"github.com/goliatone/go-composer/pkg/submit"
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRenderer replaces the page renderer.
func WithRenderer(r *page.Renderer) Option {
	return func(s *Server) {
		if r != nil {
			s.renderer = r
		}
	}
}

// WithCompiler replaces the form compiler.
func WithCompiler(c *forms.Compiler) Option {
	return func(s *Server) {
		if c != nil {
			s.compiler = c
		}
	}
}

// WithSubmitHandler sets where accepted submissions go. Without one they
// are logged and acknowledged.
func WithSubmitHandler(h submit.Handler) Option {
	return func(s *Server) {
		if h != nil {
			s.handler = h
		}
	}
}

// WithGateOptions adds options to every submission gate.
func WithGateOptions(options ...submit.Option) Option {
	return func(s *Server) {
		s.gateOptions = append(s.gateOptions, options...)
	}
}

// WithRegistry sets the prometheus registry backing /metrics.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		if reg != nil {
			s.registry = reg
		}
	}
}

// Server hosts page documents for editing and forms for submission.
type Server struct {
	store       store.Store
	renderer    *page.Renderer
	compiler    *forms.Compiler
	handler     submit.Handler
	gateOptions []submit.Option
	registry    *prometheus.Registry
	metrics     *submit.Metrics
	logger      *slog.Logger

	mu        sync.Mutex
	documents map[string]*editor.Document
	latency   map[string]*submit.Latency
}

// New builds a Server backed by st.
func New(st store.Store, options ...Option) (*Server, error) {
	if st == nil {
		return nil, errors.New("server: store is required")
	}
	s := &Server{
		store:     st,
		logger:    slog.New(slog.DiscardHandler),
		documents: make(map[string]*editor.Document),
		latency:   make(map[string]*submit.Latency),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}

	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	metrics, err := submit.NewMetrics(s.registry)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	s.metrics = metrics

	if s.renderer == nil {
		renderer, err := page.New(components.NewPageRegistry().Freeze(), page.WithLogger(s.logger))
		if err != nil {
			return nil, fmt.Errorf("server: %w", err)
		}
		s.renderer = renderer
	}
	if s.compiler == nil {
		compiler, err := forms.NewCompiler(nil, forms.WithLogger(s.logger))
		if err != nil {
			return nil, fmt.Errorf("server: %w", err)
		}
		s.compiler = compiler
	}
	if s.handler == nil {
		s.handler = submit.HandlerFunc(func(_ context.Context, ev *submit.Event) error {
			s.logger.Info("submission accepted", "action", ev.Action, "fields", len(ev.Values))
			return nil
		})
	}
	return s, nil
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/pages/{id}", func(r chi.Router) {
		r.Get("/", s.renderPage)
		r.Get("/schema", s.getPageSchema)
		r.Put("/schema", s.putPageSchema)
		r.Post("/actions", s.pageAction)
	})
	r.Route("/forms/{id}", func(r chi.Router) {
		r.Get("/", s.renderForm)
		r.Post("/validate", s.validateForm)
		r.Post("/submit", s.submitForm)
	})
	return r
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// document returns the document owner for id, loading it from the store on
// first use. Every change is persisted back.
func (s *Server) document(ctx context.Context, id string) (*editor.Document, error) {
	s.mu.Lock()
	doc, ok := s.documents[id]
	s.mu.Unlock()
	if ok {
		return doc, nil
	}

	p, err := s.store.Page(ctx, id)
	if err != nil {
		return nil, err
	}
	loaded, err := editor.New(p, editor.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// another request may have loaded the page meanwhile; its document wins
	if doc, ok := s.documents[id]; ok {
		return doc, nil
	}
	loaded.OnChange(func(updated schema.Page) {
		if err := s.store.SavePage(context.Background(), updated); err != nil {
			s.logger.Error("persist page failed", "page", updated.ID, "err", err)
		}
	})
	s.documents[id] = loaded
	return loaded, nil
}

// forget drops a cached document so the next request reloads it.
func (s *Server) forget(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, id)
}

func (s *Server) formLatency(id string) *submit.Latency {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.latency[id]
	if !ok {
		l = &submit.Latency{}
		s.latency[id] = l
	}
	return l
}
