// Package network serves a live feed of a session over websockets. Every
// connected client sees scene changes and log lines, and may send command
// lines that run through the parser like typed input.
package network

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/appengine-ltd/wendao/internal/game"
	"github.com/appengine-ltd/wendao/internal/parser"
	"github.com/appengine-ltd/wendao/internal/platform/logger"
)

// Dispatcher runs a command line against the session and its storage.
type Dispatcher interface {
	Dispatch(ctx context.Context, line string) game.CommandResult
}

// Message is one frame sent to clients.
type Message struct {
	Type   string        `json:"type"`
	Scene  *game.Scene   `json:"scene,omitempty"`
	Log    *game.LogLine `json:"log,omitempty"`
	Result *Result       `json:"result,omitempty"`
}

// Result answers a client's command. Only the sender receives it.
type Result struct {
	Input   string   `json:"input"`
	Command string   `json:"command,omitempty"`
	Message string   `json:"message,omitempty"`
	Error   string   `json:"error,omitempty"`
	Clarify string   `json:"clarify,omitempty"`
	Options []string `json:"options,omitempty"`
}

type directMessage struct {
	client  *Client
	payload []byte
}

// Hub maintains the set of active clients and broadcasts to them. It is a
// game.Presenter; presenting never blocks the session.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	direct     chan directMessage
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.Mutex
	logger     *logger.Logger

	session  *game.Session
	dispatch Dispatcher
	parser   *parser.Parser
}

// NewHub initializes a hub over session. Commands go to dispatch.
func NewHub(session *game.Session, dispatch Dispatcher, log *logger.Logger) *Hub {
	if log == nil {
		log = logger.Discard()
	}
	return &Hub{
		broadcast:  make(chan []byte, 256),
		direct:     make(chan directMessage, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
		logger:     log,
		session:    session,
		dispatch:   dispatch,
		parser:     parser.New(),
	}
}

// Run handles registrations and fan-out until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.logger.Info("Feed hub shutting down.")
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.greet(client)
			h.logger.Info("Feed client connected")
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.logger.Info("Feed client disconnected")
			}
			h.mu.Unlock()
		case msg := <-h.direct:
			h.mu.Lock()
			if h.clients[msg.client] {
				h.deliver(msg.client, msg.payload)
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				h.deliver(client, message)
			}
			h.mu.Unlock()
		}
	}
}

// deliver queues payload for client, dropping a client that cannot keep up.
// Callers hold h.mu.
func (h *Hub) deliver(client *Client, payload []byte) {
	select {
	case client.send <- payload:
	default:
		close(client.send)
		delete(h.clients, client)
		h.logger.Warn("Dropped a feed client that fell behind")
	}
}

// greet sends a new client the current scene and recent log.
func (h *Hub) greet(client *Client) {
	scene := h.session.Scene()
	if payload, err := json.Marshal(Message{Type: "scene", Scene: &scene}); err == nil {
		h.mu.Lock()
		h.deliver(client, payload)
		h.mu.Unlock()
	}
	logs := h.session.Logs()
	if len(logs) > 20 {
		logs = logs[len(logs)-20:]
	}
	for i := range logs {
		payload, err := json.Marshal(Message{Type: "log", Log: &logs[i]})
		if err != nil {
			continue
		}
		h.mu.Lock()
		if !h.clients[client] {
			h.mu.Unlock()
			return
		}
		h.deliver(client, payload)
		h.mu.Unlock()
	}
}

func (h *Hub) PresentScene(sc game.Scene) {
	h.publish(Message{Type: "scene", Scene: &sc})
}

func (h *Hub) PresentLog(line game.LogLine) {
	h.publish(Message{Type: "log", Log: &line})
}

func (h *Hub) publish(msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to serialize feed message: " + err.Error())
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		h.logger.Warn("Feed backlog full; dropping a " + msg.Type + " message")
	}
}

// reply sends a result to one client. It gives up once the hub has stopped.
func (h *Hub) reply(client *Client, res Result) {
	payload, err := json.Marshal(Message{Type: "result", Result: &res})
	if err != nil {
		h.logger.Error("Failed to serialize result: " + err.Error())
		return
	}
	select {
	case h.direct <- directMessage{client: client, payload: payload}:
	case <-h.done:
	}
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// upgrader keeps gorilla's same-origin check: browsers on other sites are
// refused, tools that send no Origin header are not.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// ServeWS upgrades the request and attaches the connection to the hub.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade websocket connection: " + err.Error())
		return
	}

	client := NewClient(h, conn)
	select {
	case h.register <- client:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump(context.WithoutCancel(r.Context()))
}

// RegisterRoutes mounts the feed on mux at /feed.
func (h *Hub) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/feed", h.ServeWS)
}
