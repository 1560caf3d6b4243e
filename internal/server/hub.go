package server

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/lox/drawpoker/internal/game"
)

// watcherBuffer is how many states may queue for one watcher before it is
// dropped as too slow.
const watcherBuffer = 16

// Update is a committed state with the store version it was committed at
type Update struct {
	Version uint64
	State   game.GameState
}

// Watcher receives every state committed for one game, in version order
type Watcher struct {
	gameID    string
	send      chan Update
	closeOnce sync.Once
}

// Updates returns the channel of committed states. It is closed when the
// watcher is unsubscribed or its game is forgotten.
func (w *Watcher) Updates() <-chan Update {
	return w.send
}

func (w *Watcher) close() {
	w.closeOnce.Do(func() {
		close(w.send)
	})
}

// Hub fans committed game states out to watchers of that game. Commits can
// finish publishing out of order, so the hub remembers the newest version
// sent per game and drops anything older.
type Hub struct {
	mu       sync.RWMutex
	watchers map[string]map[*Watcher]struct{}
	latest   map[string]uint64
	logger   *log.Logger
}

// NewHub creates an empty hub
func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		watchers: make(map[string]map[*Watcher]struct{}),
		latest:   make(map[string]uint64),
		logger:   logger.WithPrefix("hub"),
	}
}

// Subscribe registers a watcher for gameID
func (h *Hub) Subscribe(gameID string) *Watcher {
	w := &Watcher{gameID: gameID, send: make(chan Update, watcherBuffer)}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.watchers[gameID] == nil {
		h.watchers[gameID] = make(map[*Watcher]struct{})
	}
	h.watchers[gameID][w] = struct{}{}
	h.logger.Debug("Watcher subscribed", "game", gameID, "watchers", len(h.watchers[gameID]))
	return w
}

// Unsubscribe removes a watcher and closes its channel
func (h *Hub) Unsubscribe(w *Watcher) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(w)
}

func (h *Hub) remove(w *Watcher) {
	if set, ok := h.watchers[w.gameID]; ok {
		delete(set, w)
		if len(set) == 0 {
			delete(h.watchers, w.gameID)
		}
	}
	w.close()
}

// Publish sends state, committed at version, to every watcher of its game.
// It reports false and sends nothing when a newer version was already
// published. A watcher whose buffer is full is dropped.
func (h *Hub) Publish(version uint64, state game.GameState) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if version <= h.latest[state.GameID] {
		h.logger.Debug("Dropping stale state", "game", state.GameID, "version", version, "latest", h.latest[state.GameID])
		return false
	}
	h.latest[state.GameID] = version

	update := Update{Version: version, State: state}
	for w := range h.watchers[state.GameID] {
		select {
		case w.send <- update:
		default:
			h.logger.Warn("Watcher buffer full, dropping watcher", "game", state.GameID)
			h.remove(w)
		}
	}
	return true
}

// Forget unsubscribes every watcher of gameID and clears its version. Used
// once the game has been evicted.
func (h *Hub) Forget(gameID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.latest, gameID)
	n := 0
	for w := range h.watchers[gameID] {
		h.remove(w)
		n++
	}
	return n
}

// Count returns the number of watchers of gameID
func (h *Hub) Count(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.watchers[gameID])
}
