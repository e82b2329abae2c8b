package diag

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/glyphloop/internal/anim"
	"github.com/coreman2200/glyphloop/internal/app"
	"github.com/coreman2200/glyphloop/internal/fps"
	"github.com/coreman2200/glyphloop/internal/params"
)

// clientBuffer is how many diagnostics may queue for one /diag client
// before it is dropped as too slow.
const clientBuffer = 32

const writeWait = 200 * time.Millisecond

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans diagnostics out to /diag clients and keeps a health snapshot.
type Hub struct {
	mu        sync.Mutex
	clients   map[*client]bool
	control   func(rune)
	startTime time.Time

	rate   float64
	frames uint64
	state  anim.State
	params map[string]float64
	events uint64
}

func NewHub() *Hub {
	return &Hub{
		clients:   map[*client]bool{},
		startTime: time.Now(),
		params:    map[string]float64{},
	}
}

// SetControl installs the handler for remote key presses. fn is called from
// connection goroutines and must hand the key to the loop thread.
func (h *Hub) SetControl(fn func(rune)) {
	h.mu.Lock()
	h.control = fn
	h.mu.Unlock()
}

// Observer adapts the hub to conductor events.
func (h *Hub) Observer() app.Observer {
	return app.Observer{
		OnFPS:   h.FPSSample,
		OnParam: h.ParamSet,
		OnState: h.AnimState,
		OnQuit: func() {
			h.Publish(Diagnostic{Severity: Info, Code: CodeQuit, Summary: "Loop quitting"})
		},
	}
}

func (h *Hub) FPSSample(r fps.Report) {
	h.mu.Lock()
	h.rate = r.Rate
	h.frames += r.Frames
	h.mu.Unlock()
	h.Publish(Diagnostic{
		Severity: Info, Code: CodeFPS, Summary: fmt.Sprintf("%gfps", r.Rate),
		Evidence: map[string]any{"fps": r.Rate, "frames": r.Frames, "window_ms": r.Window.Milliseconds()},
	})
}

func (h *Hub) ParamSet(p params.Parameter) {
	h.mu.Lock()
	h.params[p.Name] = p.Value
	h.mu.Unlock()
	h.Publish(Diagnostic{
		Severity: Info, Code: CodeParam, Summary: fmt.Sprintf("Setting %s to %g", p.Name, p.Value),
		Evidence: map[string]any{"name": p.Name, "value": p.Value},
	})
}

func (h *Hub) AnimState(s anim.State, _ time.Time) {
	h.mu.Lock()
	h.state = s
	h.mu.Unlock()
	h.Publish(Diagnostic{Severity: Info, Code: CodeAnim, Summary: "Animation " + s.String()})
}

// Publish queues d for every /diag client without waiting on the network.
// A client whose queue is full is disconnected.
func (h *Hub) Publish(d Diagnostic) {
	if d.T == 0 {
		d.T = time.Now().UnixNano()
	}
	b, err := json.Marshal(d)
	if err != nil {
		log.Error().Err(err).Str("code", d.Code).Msg("marshal diagnostic")
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events++
	for c := range h.clients {
		select {
		case c.send <- b:
		default:
			log.Warn().Msg("diag client too slow, dropping")
			h.dropLocked(c)
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	h.dropLocked(c)
	h.mu.Unlock()
}

func (h *Hub) dropLocked(c *client) {
	if h.clients[c] {
		delete(h.clients, c)
		close(c.send)
	}
}

// writePump is the only writer on c.conn; it owns closing the connection.
func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for b := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Debug().Err(err).Msg("write diagnostic")
			h.drop(c)
			return
		}
	}
}

// Clients returns the number of connected /diag clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

func (h *Hub) HandleDiagWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{conn: conn, send: make(chan []byte, clientBuffer)}
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	go h.writePump(c)
	go func() {
		defer h.drop(c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// ControlMsg is one remote key press: a single character, or "esc".
type ControlMsg struct {
	Key string `json:"key"`
}

func (h *Hub) HandleControlWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg ControlMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			h.Publish(Diagnostic{Severity: Warn, Code: CodeBadControl, Summary: "Malformed control message", Detail: err.Error()})
			continue
		}
		k, ok := parseKey(msg.Key)
		if !ok {
			h.Publish(Diagnostic{
				Severity: Warn, Code: CodeBadControl, Summary: "Unknown key",
				Evidence: map[string]any{"key": msg.Key},
			})
			continue
		}
		h.mu.Lock()
		fn := h.control
		h.mu.Unlock()
		if fn != nil {
			fn(k)
		}
		_ = conn.WriteJSON(h.Snapshot())
	}
}

func parseKey(s string) (rune, bool) {
	switch strings.ToLower(s) {
	case "esc", "escape":
		return app.KeyEscape, true
	case "space":
		return ' ', true
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, true
}

// Snapshot is the /health payload.
type Snapshot struct {
	UptimeS float64            `json:"uptime_s"`
	FPS     float64            `json:"fps"`
	Frames  uint64             `json:"frames"`
	State   string             `json:"state"`
	Params  map[string]float64 `json:"params"`
	Events  uint64             `json:"events"`
	Clients int                `json:"clients"`
}

func (h *Hub) Snapshot() Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	p := make(map[string]float64, len(h.params))
	for k, v := range h.params {
		p[k] = v
	}
	return Snapshot{
		UptimeS: time.Since(h.startTime).Seconds(),
		FPS:     h.rate,
		Frames:  h.frames,
		State:   h.state.String(),
		Params:  p,
		Events:  h.events,
		Clients: len(h.clients),
	}
}

func (h *Hub) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.Snapshot())
}
