// Package live pushes feature image changes to browsers watching a post over
// websockets.
package live

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/dmitrijs2005/featureimage/internal/logging"
	"github.com/dmitrijs2005/featureimage/internal/server/hooks"
)

// MsgFeatureImageUpdated is sent after a post's featured image changed.
const MsgFeatureImageUpdated = "feature_image.updated"

// Message is the JSON frame sent to clients.
type Message struct {
	Type         string `json:"type"`
	PostID       int64  `json:"post_id"`
	AttachmentID int64  `json:"attachment_id"`
	Markup       string `json:"markup"`
}

// Observer is told when clients come and go.
type Observer interface {
	ClientConnected()
	ClientDisconnected()
}

type nopObserver struct{}

func (nopObserver) ClientConnected()    {}
func (nopObserver) ClientDisconnected() {}

// Hub tracks clients per post and fans out messages to them.
type Hub struct {
	clients    map[int64]map[*Client]bool
	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	logger     logging.Logger
	observer   Observer
}

// NewHub creates a hub. A nil observer is allowed.
func NewHub(logger logging.Logger, observer Observer) *Hub {
	if observer == nil {
		observer = nopObserver{}
	}
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		broadcast:  make(chan *Message, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.With("module", "live"),
		observer:   observer,
	}
}

// Run processes registrations and broadcasts until ctx is done, then closes
// every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for postID, clients := range h.clients {
				for c := range clients {
					close(c.send)
					h.observer.ClientDisconnected()
				}
				delete(h.clients, postID)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			if h.clients[c.postID] == nil {
				h.clients[c.postID] = make(map[*Client]bool)
			}
			h.clients[c.postID][c] = true
			h.mu.Unlock()
			h.observer.ClientConnected()

		case c := <-h.unregister:
			h.remove(c)

		case msg := <-h.broadcast:
			data, err := json.Marshal(msg)
			if err != nil {
				h.logger.Error(ctx, "marshal live message", "error", err)
				continue
			}

			h.mu.RLock()
			var slow []*Client
			for c := range h.clients[msg.PostID] {
				select {
				case c.send <- data:
				default:
					slow = append(slow, c)
				}
			}
			h.mu.RUnlock()

			for _, c := range slow {
				h.remove(c)
			}
		}
	}
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients, ok := h.clients[c.postID]
	if !ok || !clients[c] {
		return
	}
	delete(clients, c)
	close(c.send)
	if len(clients) == 0 {
		delete(h.clients, c.postID)
	}
	h.observer.ClientDisconnected()
}

// Publish queues msg for the clients of msg.PostID. It never blocks; when
// the queue is full the message is dropped.
func (h *Hub) Publish(msg *Message) {
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn(context.Background(), "live queue full, dropping message", "post_id", msg.PostID)
	}
}

// Clients returns the number of clients watching postID.
func (h *Hub) Clients(postID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[postID])
}

// OnSwitch is a hooks.ActionFunc for hooks.SwitcherUpdated.
func (h *Hub) OnSwitch(_ context.Context, args ...any) {
	if len(args) == 0 {
		return
	}
	ev, ok := args[0].(hooks.SwitchEvent)
	if !ok {
		return
	}
	h.Publish(&Message{
		Type:         MsgFeatureImageUpdated,
		PostID:       ev.PostID,
		AttachmentID: ev.AttachmentID,
		Markup:       ev.Markup,
	})
}
