package testing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/lox/drawpoker/internal/game"
	"github.com/lox/drawpoker/internal/server"
)

const (
	// StartupTimeout bounds how long a test waits for the server to answer
	StartupTimeout = 5 * time.Second
	// ReadTimeout bounds a single websocket read
	ReadTimeout = 5 * time.Second
)

// TestServer is a server listening on a real TCP port
type TestServer struct {
	URL    string
	Prefix string
	cancel context.CancelFunc
	done   chan error
}

// StartTestServer serves cfg on a random local port until the test ends
func StartTestServer(t *testing.T, cfg *server.Config, opts ...server.ServiceOption) *TestServer {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
	srv := server.NewServer(cfg, logger, opts...)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	ts := &TestServer{
		URL:    "http://" + listener.Addr().String(),
		Prefix: cfg.Server.Prefix,
		cancel: cancel,
		done:   make(chan error, 1),
	}
	go func() {
		ts.done <- srv.Serve(ctx, listener, time.Minute, time.Hour)
	}()
	t.Cleanup(func() { ts.Stop(t) })

	waitCtx, waitCancel := context.WithTimeout(context.Background(), StartupTimeout)
	defer waitCancel()
	require.NoError(t, server.WaitForHealthy(waitCtx, quartz.NewReal(), ts.URL))
	return ts
}

// Stop shuts the server down and waits for it to exit. Safe to call twice.
func (s *TestServer) Stop(t *testing.T) {
	t.Helper()
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.cancel = nil
	select {
	case err := <-s.done:
		require.NoError(t, err)
	case <-time.After(StartupTimeout):
		t.Fatal("server did not shut down")
	}
}

// Client returns an API client for the server
func (s *TestServer) Client(t *testing.T) *TestClient {
	return &TestClient{baseURL: s.URL + s.Prefix, http: &http.Client{Timeout: 5 * time.Second}, t: t}
}

// APIError is a non-2xx response from the API
type APIError struct {
	Status  int
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// TestClient drives the game API over HTTP
type TestClient struct {
	baseURL string
	http    *http.Client
	t       *testing.T
}

func (c *TestClient) do(method, path string, body any, out any) error {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.baseURL+path, reader)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return apiErr
	}
	if out != nil {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return nil
}

// Create starts a new game
func (c *TestClient) Create() game.GameState {
	c.t.Helper()
	state, err := c.CreateGame()
	require.NoError(c.t, err)
	return state
}

// CreateGame starts a new game, returning API errors
func (c *TestClient) CreateGame() (game.GameState, error) {
	var state game.GameState
	err := c.do(http.MethodPost, "/game", nil, &state)
	return state, err
}

// Get fetches the current state
func (c *TestClient) Get(id string) (game.GameState, error) {
	var state game.GameState
	err := c.do(http.MethodGet, "/game/"+id, nil, &state)
	return state, err
}

// Bet submits a betting action. amount is only sent for raises.
func (c *TestClient) Bet(id, action string, amount int) (game.GameState, error) {
	body := map[string]any{"action": action}
	if action == "raise" {
		body["amount"] = amount
	}
	var state game.GameState
	err := c.do(http.MethodPost, "/game/"+id+"/bet", body, &state)
	return state, err
}

// Draw replaces the cards at the given indices
func (c *TestClient) Draw(id string, discards []int) (game.GameState, error) {
	if discards == nil {
		discards = []int{}
	}
	var state game.GameState
	err := c.do(http.MethodPost, "/game/"+id+"/draw", map[string]any{"discardIndices": discards}, &state)
	return state, err
}

// Log fetches the session's action log
func (c *TestClient) Log(id string) ([]string, error) {
	var out struct {
		Log []string `json:"log"`
	}
	err := c.do(http.MethodGet, "/game/"+id+"/log", nil, &out)
	return out.Log, err
}

// PlayOut calls every bet and stands pat until the hand is finished
func (c *TestClient) PlayOut(id string) game.GameState {
	c.t.Helper()
	state, err := c.Get(id)
	require.NoError(c.t, err)
	for i := 0; i < 100 && state.Phase != game.PhaseFinished; i++ {
		switch state.Phase {
		case game.PhaseBetting:
			state, err = c.Bet(id, "call", 0)
		case game.PhaseDrawing:
			state, err = c.Draw(id, nil)
		default:
			c.t.Fatalf("unexpected phase %s", state.Phase)
		}
		require.NoError(c.t, err)
	}
	require.Equal(c.t, game.PhaseFinished, state.Phase)
	return state
}

// Watcher reads the websocket state stream of one game
type Watcher struct {
	conn *websocket.Conn
	t    *testing.T
}

// Watch opens the state stream for a game
func (c *TestClient) Watch(id string) (*Watcher, error) {
	url := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/game/" + id + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		if resp != nil {
			return nil, &APIError{Status: resp.StatusCode, Message: err.Error()}
		}
		return nil, err
	}
	w := &Watcher{conn: conn, t: c.t}
	c.t.Cleanup(func() { _ = conn.Close() })
	return w, nil
}

// Next returns the next streamed state
func (w *Watcher) Next() game.GameState {
	w.t.Helper()
	require.NoError(w.t, w.conn.SetReadDeadline(time.Now().Add(ReadTimeout)))
	var state game.GameState
	require.NoError(w.t, w.conn.ReadJSON(&state))
	return state
}

// WaitForPhase reads states until one is in phase
func (w *Watcher) WaitForPhase(phase game.Phase) game.GameState {
	w.t.Helper()
	for {
		if state := w.Next(); state.Phase == phase {
			return state
		}
	}
}
