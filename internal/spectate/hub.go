// Package spectate streams round snapshots to websocket viewers.
package spectate

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/tomz197/lanerush/internal/round"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 512
	sendBuffer     = 64
)

// Event names carried by Message.
const (
	EventSnapshot = "snapshot"
	EventOver     = "round_over"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is what viewers receive.
type Message struct {
	Round    string          `json:"round"`
	Event    string          `json:"event"`
	Snapshot *round.Snapshot `json:"snapshot,omitempty"`
}

type viewer struct {
	hub   *Hub
	conn  *websocket.Conn
	send  chan []byte
	round string
}

// Hub fans snapshots out to the viewers of each round. All bookkeeping
// happens on the goroutine running Run.
type Hub struct {
	viewers    map[string]map[*viewer]bool
	live       map[string]bool
	broadcast  chan *Message
	register   chan *viewer
	unregister chan *viewer
	rounds     chan chan []string
	done       chan struct{}
	logger     *log.Logger
}

// NewHub creates a hub. Call Run before serving viewers.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		viewers:    make(map[string]map[*viewer]bool),
		live:       make(map[string]bool),
		broadcast:  make(chan *Message, 256),
		register:   make(chan *viewer),
		unregister: make(chan *viewer),
		rounds:     make(chan chan []string),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run processes registrations and broadcasts until ctx is cancelled, then
// disconnects every viewer.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, viewers := range h.viewers {
				for v := range viewers {
					h.remove(v)
				}
			}
			return
		case v := <-h.register:
			if h.viewers[v.round] == nil {
				h.viewers[v.round] = make(map[*viewer]bool)
			}
			h.viewers[v.round][v] = true
			h.logger.Debug("viewer joined", "round", v.round, "viewers", len(h.viewers[v.round]))
		case v := <-h.unregister:
			h.remove(v)
		case msg := <-h.broadcast:
			h.deliver(msg)
		case reply := <-h.rounds:
			ids := make([]string, 0, len(h.live))
			for id := range h.live {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			reply <- ids
		}
	}
}

func (h *Hub) remove(v *viewer) {
	viewers, ok := h.viewers[v.round]
	if !ok || !viewers[v] {
		return
	}
	delete(viewers, v)
	close(v.send)
	if len(viewers) == 0 {
		delete(h.viewers, v.round)
	}
	h.logger.Debug("viewer left", "round", v.round, "viewers", len(viewers))
}

func (h *Hub) deliver(msg *Message) {
	if msg.Event == EventOver {
		delete(h.live, msg.Round)
	} else {
		h.live[msg.Round] = true
	}

	viewers := h.viewers[msg.Round]
	if len(viewers) == 0 {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Warn("encode snapshot", "round", msg.Round, "err", err)
		return
	}
	for v := range viewers {
		select {
		case v.send <- data:
		default:
			// Slow viewer.
			h.remove(v)
		}
	}
}

func (h *Hub) enqueue(msg *Message) {
	select {
	case h.broadcast <- msg:
	case <-h.done:
	default:
		h.logger.Debug("spectator queue full, snapshot dropped", "round", msg.Round)
	}
}

// Publish queues a snapshot of round id. It never blocks the caller; when
// the hub is backed up the snapshot is dropped.
func (h *Hub) Publish(id string, snap round.Snapshot) {
	event := EventSnapshot
	if snap.Over {
		event = EventOver
	}
	h.enqueue(&Message{Round: id, Event: event, Snapshot: &snap})
}

// Rounds lists the rounds that have published and not yet ended.
func (h *Hub) Rounds() []string {
	reply := make(chan []string, 1)
	select {
	case h.rounds <- reply:
		return <-reply
	case <-h.done:
		return nil
	}
}

// ServeWS upgrades the request and streams the round named by the "round"
// query parameter.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("round")
	if id == "" {
		http.Error(w, "missing round", http.StatusBadRequest)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade", "err", err)
		return
	}

	v := &viewer{hub: h, conn: conn, send: make(chan []byte, sendBuffer), round: id}
	select {
	case h.register <- v:
	case <-h.done:
		conn.Close()
		return
	}

	go v.writePump()
	go v.readPump()
}

// ServeRounds writes the live round ids as JSON.
func (h *Hub) ServeRounds(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	ids := h.Rounds()
	if ids == nil {
		ids = []string{}
	}
	if err := json.NewEncoder(w).Encode(ids); err != nil {
		h.logger.Warn("write rounds", "err", err)
	}
}

// Handler routes /ws and /rounds.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.ServeWS)
	mux.HandleFunc("/rounds", h.ServeRounds)
	return mux
}

// readPump discards viewer messages and keeps the connection alive.
func (v *viewer) readPump() {
	defer func() {
		select {
		case v.hub.unregister <- v:
		case <-v.hub.done:
		}
		v.conn.Close()
	}()

	v.conn.SetReadLimit(maxMessageSize)
	v.conn.SetReadDeadline(time.Now().Add(pongWait))
	v.conn.SetPongHandler(func(string) error {
		v.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := v.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				v.hub.logger.Debug("viewer read", "err", err)
			}
			return
		}
	}
}

func (v *viewer) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		v.conn.Close()
	}()

	for {
		select {
		case message, ok := <-v.send:
			v.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				v.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := v.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			v.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := v.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
