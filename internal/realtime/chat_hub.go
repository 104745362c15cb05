package realtime

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"chats/internal/metrics"
	"chats/internal/models"
)

// ChatHub tracks the open websockets of every chat on this replica.
type ChatHub struct {
	mu    sync.RWMutex
	chats map[int]map[*Client]struct{}
}

func NewChatHub() *ChatHub {
	return &ChatHub{
		chats: make(map[int]map[*Client]struct{}),
	}
}

func (h *ChatHub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.chats[c.chatID] == nil {
		h.chats[c.chatID] = make(map[*Client]struct{})
	}
	h.chats[c.chatID][c] = struct{}{}
	metrics.WSConnections.Inc()
}

func (h *ChatHub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.chats[c.chatID]
	if !ok {
		return
	}
	if _, ok := conns[c]; !ok {
		return
	}
	delete(conns, c)
	if len(conns) == 0 {
		delete(h.chats, c.chatID)
	}
	metrics.WSConnections.Dec()
}

func (h *ChatHub) Connections(chatID int) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.chats[chatID])
}

// Broadcast queues frame for every client of the chat. Clients whose queue is
// full are closed rather than allowed to stall the others.
func (h *ChatHub) Broadcast(chatID int, frame []byte) int {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.chats[chatID]))
	for c := range h.chats[chatID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, c := range targets {
		if c.Enqueue(frame) {
			delivered++
			continue
		}
		if c.Close() {
			metrics.RecordDroppedConnection()
			log.Warn().Int("chat_id", chatID).Msg("dropping slow websocket client")
		}
	}
	return delivered
}

// Publish delivers msg to this replica's clients only.
func (h *ChatHub) Publish(chatID int, msg *models.Message) error {
	frame, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	h.Broadcast(chatID, frame)
	return nil
}
