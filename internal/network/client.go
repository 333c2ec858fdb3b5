package network

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/appengine-ltd/wendao/internal/parser"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 1024
	// Commands arriving faster than this are refused.
	commandGap = 100 * time.Millisecond
)

// Request is a command line sent by a client.
type Request struct {
	Command string `json:"command"`
}

// localOnly verbs touch files or replace the character, so the feed refuses them.
var localOnly = map[string]bool{
	"export":  true,
	"import":  true,
	"quit":    true,
	"reset":   true,
	"load":    true,
	"restore": true,
}

// Client is an active websocket connection.
type Client struct {
	hub         *Hub
	conn        *websocket.Conn
	send        chan []byte
	lastCommand time.Time
	lastEntity  string
}

// NewClient creates a client for conn.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
}

// ReadPump reads command requests until the connection closes.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("Feed read error: " + err.Error())
			}
			return
		}

		var req Request
		if err := json.Unmarshal(message, &req); err != nil {
			c.hub.reply(c, Result{Input: string(message), Error: "expected {\"command\": \"...\"}"})
			continue
		}
		c.hub.reply(c, c.handle(ctx, req))
	}
}

func (c *Client) handle(ctx context.Context, req Request) Result {
	res := Result{Input: req.Command}
	if time.Since(c.lastCommand) < commandGap {
		res.Error = "slow down"
		return res
	}
	c.lastCommand = time.Now()

	h := c.hub
	intent := h.parser.Parse(parser.ContextFor(h.session.Status(), c.lastEntity), req.Command)
	c.lastEntity = parser.LastEntity(intent, c.lastEntity)
	if intent.Clarify != nil {
		res.Clarify = intent.Clarify.Prompt
		for _, opt := range intent.Clarify.Options {
			if line := parser.IntentToCommandString(opt); line != "" {
				res.Options = append(res.Options, line)
			}
		}
		return res
	}

	line := parser.IntentToCommandString(intent)
	res.Command = line
	if localOnly[strings.ToLower(intent.Verb)] {
		res.Error = intent.Verb + " is only available at the console"
		return res
	}

	out := h.dispatch.Dispatch(ctx, line)
	h.logger.Event("FEED_COMMAND", "remote", line)
	res.Message = out.Message
	if out.Err != nil {
		res.Error = out.Err.Error()
	}
	if !out.Handled && res.Message == "" {
		res.Message = "Nothing happens."
	}
	return res
}

// WritePump writes queued frames and keeps the connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
