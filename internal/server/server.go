package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yusuf-polat/AI-Translate/internal/runner"
	"github.com/yusuf-polat/AI-Translate/internal/server/middleware"
	"github.com/yusuf-polat/AI-Translate/internal/settings"
	"github.com/yusuf-polat/AI-Translate/internal/types"
)

// Bot is the run lifecycle the API controls.
type Bot interface {
	Begin() (uuid.UUID, error)
	Run(ctx context.Context) (*runner.Report, error)
	Stop()
	State() runner.RunState
	SetAppData(data *types.AppData)
}

// TextTranslator translates free text for POST /translate.
type TextTranslator interface {
	TranslateText(ctx context.Context, req types.TranslationRequest) (string, error)
}

// KeyTester reports whether a Gemini API key is accepted.
type KeyTester func(ctx context.Context, key string) (bool, error)

// Deps are the collaborators behind the routes.
type Deps struct {
	Bot        Bot
	Broker     *Broker
	Settings   settings.Store
	Translator TextTranslator
	TestAPIKey KeyTester
	JWT        *JWTService
	// OnSettingsChanged is called after the API key or tool settings change.
	OnSettingsChanged func(ctx context.Context) error
}

// Config holds server configuration
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	deps       Deps
	cfg        Config

	baseCtx context.Context
	runs    sync.WaitGroup
}

// New creates a new server instance
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Bot == nil || deps.Settings == nil {
		return nil, fmt.Errorf("server requires a bot and a settings store")
	}
	if deps.JWT == nil {
		return nil, fmt.Errorf("server requires a JWT service, set JWT_SECRET")
	}
	if deps.Broker == nil {
		deps.Broker = NewBroker()
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}

	s := &Server{deps: deps, cfg: cfg, baseCtx: context.Background()}

	protected := http.NewServeMux()
	protected.HandleFunc("POST /bot/start", s.handleStart)
	protected.HandleFunc("POST /bot/stop", s.handleStop)
	protected.HandleFunc("GET /bot/status", s.handleStatus)
	protected.HandleFunc("GET /bot/events", s.handleEvents)

	protected.HandleFunc("GET /settings/app-data", s.handleGetAppData)
	protected.HandleFunc("PUT /settings/app-data", s.handlePutAppData)
	protected.HandleFunc("GET /settings/tool", s.handleGetToolSettings)
	protected.HandleFunc("PUT /settings/tool", s.handlePutToolSettings)
	protected.HandleFunc("PUT /settings/api-key", s.handlePutAPIKey)
	protected.HandleFunc("POST /settings/api-key/test", s.handleTestAPIKey)

	protected.HandleFunc("POST /translate", s.handleTranslate)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("/", middleware.AuthMiddleware(deps.JWT.AsTokenValidator())(protected))

	s.httpServer = &http.Server{
		Addr:        cfg.Addr,
		Handler:     s.withLogging(s.withCORS(mux)),
		ReadTimeout: 30 * time.Second,
		// No WriteTimeout: event streams stay open for the whole run.
		IdleTimeout: 60 * time.Second,
	}

	return s, nil
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until ctx is cancelled, then stops any active run and shuts
// down gracefully.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	s.baseCtx = ctx
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("[SERVER] Listening on %s", listener.Addr())
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Println("[SERVER] Shutting down...")
		s.deps.Bot.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		s.runs.Wait()
		log.Println("[SERVER] Stopped")
		return nil
	})

	return g.Wait()
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// failure maps err onto a status code and writes it.
func (s *Server) failure(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("[SERVER] Request failed: %v", err)
	}
	s.errorResponse(w, status, err.Error())
}

const maxBodyBytes = 1 << 20

// decodeJSON reads a bounded JSON body into dest.
func decodeJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return &ErrValidation{Field: "body", Message: err.Error()}
	}
	return nil
}
