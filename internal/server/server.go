package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/lox/drawpoker/internal/game"
	"github.com/lox/drawpoker/internal/store"
)

// maxBodyBytes caps request bodies
const maxBodyBytes = 4096

// Server exposes the game service over HTTP and websockets
type Server struct {
	config   *Config
	service  *GameService
	store    *store.Memory[*game.Session]
	hub      *Hub
	router   *mux.Router
	upgrader websocket.Upgrader
	logger   *log.Logger
}

// NewServer wires a store, hub and game service from config
func NewServer(config *Config, logger *log.Logger, opts ...ServiceOption) *Server {
	st := store.NewMemory[*game.Session](store.WithLogger(logger))
	return NewServerWithStore(config, st, logger, opts...)
}

// NewServerWithStore builds a server around an existing store
func NewServerWithStore(config *Config, st *store.Memory[*game.Session], logger *log.Logger, opts ...ServiceOption) *Server {
	hub := NewHub(logger)
	s := &Server{
		config: config,
		store:  st,
		hub:    hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// The API has no credentials to protect
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger.WithPrefix("server"),
	}
	s.service = NewGameService(st, config.Rules(), logger, append([]ServiceOption{WithHub(hub)}, opts...)...)
	s.router = s.routes()
	return s
}

// Service returns the game service behind the server
func (s *Server) Service() *GameService {
	return s.service
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix(s.config.Server.Prefix).Subrouter()
	api.HandleFunc("/game", s.handleCreate).Methods(http.MethodPost)
	api.HandleFunc("/game/{id}", s.handleGet).Methods(http.MethodGet)
	api.HandleFunc("/game/{id}/bet", s.handleBet).Methods(http.MethodPost)
	api.HandleFunc("/game/{id}/draw", s.handleDraw).Methods(http.MethodPost)
	api.HandleFunc("/game/{id}/log", s.handleLog).Methods(http.MethodGet)
	api.HandleFunc("/game/{id}/ws", s.handleWebSocket).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "no such route")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

// Handler returns the HTTP handler. Trailing slashes are ignored so that
// /game/{id}/ and /game/{id} reach the same route.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(r.URL.Path) > 1 && strings.HasSuffix(r.URL.Path, "/") {
			r.URL.Path = strings.TrimRight(r.URL.Path, "/")
		}
		s.router.ServeHTTP(w, r)
	})
}

// Run serves HTTP and evicts idle sessions until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	ttl, err := s.config.SessionTTL()
	if err != nil {
		return err
	}
	interval, err := s.config.SweepInterval()
	if err != nil {
		return err
	}

	addr := s.config.GetServerAddress()
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, listener, interval, ttl)
}

// Serve serves on an existing listener
func (s *Server) Serve(ctx context.Context, listener net.Listener, sweepInterval, sessionTTL time.Duration) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("Starting server", "addr", listener.Addr().String(), "prefix", s.config.Server.Prefix)
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return s.store.RunJanitor(ctx, sweepInterval, sessionTTL, s.evicted)
	})
	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK") // Ignore write errors for health check
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	state, err := s.service.Create()
	if err != nil {
		s.logger.Error("Failed to create game", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create game")
		return
	}
	writeJSON(w, http.StatusCreated, state)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	state, err := s.service.Get(mux.Vars(r)["id"])
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	lines, err := s.service.Log(mux.Vars(r)["id"])
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"log": lines})
}

type betRequest struct {
	Action string `json:"action"`
	Amount *int   `json:"amount,omitempty"`
}

func (s *Server) handleBet(w http.ResponseWriter, r *http.Request) {
	var req betRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Action == "" {
		writeError(w, http.StatusBadRequest, "action is required")
		return
	}
	action, err := game.ParseAction(req.Action)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	amount := 0
	if action == game.Raise {
		if req.Amount == nil {
			writeError(w, http.StatusBadRequest, "amount is required for a raise")
			return
		}
		amount = *req.Amount
	}

	state, err := s.service.Bet(mux.Vars(r)["id"], action, amount)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

type drawRequest struct {
	DiscardIndices *[]int `json:"discardIndices"`
}

func (s *Server) handleDraw(w http.ResponseWriter, r *http.Request) {
	var req drawRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.DiscardIndices == nil {
		writeError(w, http.StatusBadRequest, "discardIndices is required")
		return
	}

	state, err := s.service.Draw(mux.Vars(r)["id"], *req.DiscardIndices)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := s.service.Get(id); err != nil {
		s.writeServiceError(w, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(conn, s.hub, id, s.logger)
	// Read after subscribing so no commit is missed
	current, err := s.service.Current(id)
	if err != nil {
		_ = client.Close()
		return
	}
	client.Start(current)
	s.logger.Debug("Watcher connected", "game", id, "watchers", s.hub.Count(id))
}

// evicted disconnects anyone still watching sessions the janitor removed
func (s *Server) evicted(ids []string) {
	for _, id := range ids {
		if n := s.hub.Forget(id); n > 0 {
			s.logger.Debug("Closed watchers of evicted game", "game", id, "watchers", n)
		}
	}
}

// statusFor maps a service error to an HTTP status. Anything unrecognised,
// an exhausted deck included, is an internal error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrInvalidPhase),
		errors.Is(err, game.ErrInvalidAction),
		errors.Is(err, game.ErrInsufficientChips),
		errors.Is(err, game.ErrInvalidIndices):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", "error", err)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) // Ignore write errors, the client has gone
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
