// Package notify implements a Hub for pushing real-time notifications to players.
// A browser keeps one long-lived Server-Sent Events stream open per tab; when
// something happens that concerns a player (a new message, a connection request,
// an accepted connection) the Hub pushes it down every stream that player has open,
// so the navbar badge updates without polling.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"
)

// Notification types pushed to clients. They become the SSE "event:" name.
const (
	TypeMessage             = "message"
	TypeConnectionRequest   = "connection_request"
	TypeConnectionAccepted  = "connection_accepted"
	clientBufferSize        = 16
	broadcastBufferCapacity = 256
)

// Notification is the JSON document sent to clients.
type Notification struct {
	Type string    `json:"type"`
	Data any       `json:"data"`
	At   time.Time `json:"at"`
}

// Frame is one encoded notification ready to be written to a stream.
type Frame struct {
	Event string // Notification type, used as the SSE event name
	Data  []byte // JSON-encoded Notification
}

// WriteSSE writes f as a Server-Sent Events message.
func (f Frame) WriteSSE(w io.Writer) error {
	_, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", f.Event, f.Data)
	return err
}

// Client represents one open notification stream.
// A player with two browser tabs open has two Clients.
type Client struct {
	PlayerID int64      // Whose notifications this stream receives
	Send     chan Frame // Buffered queue of encoded notifications; closed when the Hub drops the client
}

// NewClient returns a Client for playerID with a bounded send buffer.
func NewClient(playerID int64) *Client {
	return &Client{PlayerID: playerID, Send: make(chan Frame, clientBufferSize)}
}

// message is a unit of data addressed to every client of one player.
type message struct {
	playerID int64
	frame    Frame
}

// Hub tracks all open streams grouped by player id.
// It runs in its own goroutine and processes registration, unregistration and
// broadcast events through channels, so the clients map is only written from Run.
type Hub struct {
	// clients: playerID -> set of Client pointers.
	clients map[int64]map[*Client]bool

	broadcast  chan *message
	register   chan *Client
	unregister chan *Client
	done       chan struct{} // closed when Run returns

	// mu guards clients for readers outside the Run goroutine (Connected).
	mu sync.RWMutex
}

// NewHub creates a Hub. The broadcast channel is buffered so request handlers
// calling Notify don't wait for the Hub goroutine.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		broadcast:  make(chan *message, broadcastBufferCapacity),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run is the Hub's event loop. It must be called in a goroutine ("go hub.Run(ctx)")
// and returns when ctx is cancelled, closing every remaining client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for _, set := range h.clients {
				for client := range set {
					close(client.Send)
				}
			}
			h.clients = make(map[int64]map[*Client]bool)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.PlayerID] == nil {
				h.clients[client.PlayerID] = make(map[*Client]bool)
			}
			h.clients[client.PlayerID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.remove(client)

		case msg := <-h.broadcast:
			h.mu.RLock()
			var slow []*Client
			for client := range h.clients[msg.playerID] {
				select {
				case client.Send <- msg.frame:
				default:
					// The stream isn't draining its buffer; drop it rather than
					// stall notifications for everyone else.
					slow = append(slow, client)
				}
			}
			h.mu.RUnlock()
			for _, client := range slow {
				h.remove(client)
			}
		}
	}
}

// remove deletes client from the map and closes its Send channel. Only called from Run.
func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[client.PlayerID]
	if !ok || !set[client] {
		return
	}
	delete(set, client)
	close(client.Send)
	if len(set) == 0 {
		delete(h.clients, client.PlayerID)
	}
}

// Register starts delivering notifications to client. It returns false if the Hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister stops delivery to client and closes its Send channel.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Notify queues a notification for every open stream of playerID. It never blocks:
// if the Hub is saturated the notification is dropped, since clients can always
// fall back to the polling endpoints.
func (h *Hub) Notify(playerID int64, kind string, payload any) {
	data, err := json.Marshal(Notification{Type: kind, Data: payload, At: time.Now().UTC()})
	if err != nil {
		return
	}
	select {
	case h.broadcast <- &message{playerID: playerID, frame: Frame{Event: kind, Data: data}}:
	default:
	}
}

// Connected returns how many streams playerID currently has open.
func (h *Hub) Connected(playerID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[playerID])
}
