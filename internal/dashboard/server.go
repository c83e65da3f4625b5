// Package dashboard serves the credit assessment form, the JSON API, the
// websocket feed of assessments and the operational endpoints.
//
// The scaler and the model registry behind the assessor are read-only, so
// handlers run concurrently without coordination. The websocket hub is the
// only shared mutable state.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"credit-risk/internal/assess"
	"credit-risk/internal/features"
	"credit-risk/internal/ml"
	"credit-risk/internal/risk"
)

// Assessor runs one assessment. *assess.Assessor implements it.
type Assessor interface {
	Assess(ctx context.Context, record features.FeatureRecord) (*assess.Assessment, error)
}

// Options configures a Server.
type Options struct {
	Port         int
	Currency     string
	Registry     *ml.Registry
	FeatureOrder []string
	Thresholds   risk.Thresholds
	// Gatherer backs /metrics; nil uses the default Prometheus registry.
	Gatherer prometheus.Gatherer
}

// Server is the HTTP surface of the service.
type Server struct {
	assessor Assessor
	opts     Options
	hub      *Hub
	router   *mux.Router
	server   *http.Server

	isRunning bool
	mu        sync.Mutex
}

// New wires routes. assessor may be nil when no model could be loaded; the
// server then only reports its unhealthy state.
func New(assessor Assessor, opts Options) *Server {
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	s := &Server{assessor: assessor, opts: opts}
	s.hub = NewHub(func() Event { return Event{Type: EventHello, Models: s.modelNames()} })

	r := mux.NewRouter()
	r.HandleFunc("/", s.handleForm).Methods(http.MethodGet)
	r.HandleFunc("/assess", s.handleFormSubmit).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/assessments", s.handleAssessmentAPI).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/models", s.handleModelsAPI).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.hub.ServeWS).Methods(http.MethodGet)
	s.router = r

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub { return s.hub }

// Start binds the port and serves in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("server is already running")
	}

	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.server.Addr, err)
	}

	go s.hub.Run()
	go func() {
		log.Info().Str("address", s.server.Addr).Msg("Starting HTTP server")
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server failed")
		}
	}()

	s.isRunning = true
	return nil
}

// Stop closes websocket clients and shuts the HTTP server down.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	s.hub.Close()
	if err := s.server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to shutdown HTTP server")
		return err
	}

	s.isRunning = false
	log.Info().Msg("HTTP server stopped")
	return nil
}

func (s *Server) modelNames() []string {
	if s.opts.Registry == nil {
		return nil
	}
	return s.opts.Registry.Names()
}

func (s *Server) healthy() bool {
	return s.assessor != nil && s.opts.Registry != nil && s.opts.Registry.Len() > 0
}
