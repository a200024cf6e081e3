package api

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"statflow/ports"
)

// SSEClient represents a connected SSE client
type SSEClient struct {
	ScreenID string
	Channel  chan ports.ScreenEvent
}

// SSEHub fans screen events out to the browsers watching each screen
type SSEHub struct {
	clients    map[string]map[chan ports.ScreenEvent]bool
	clientsMu  sync.RWMutex
	register   chan SSEClient
	unregister chan SSEClient
	broadcast  chan ports.ScreenEvent
	done       chan struct{}
	stopOnce   sync.Once

	// PingInterval is how often idle streams receive a keep-alive
	PingInterval time.Duration
}

var _ ports.EventPublisher = (*SSEHub)(nil)

// NewSSEHub creates a new SSE hub
func NewSSEHub() *SSEHub {
	hub := &SSEHub{
		clients:      make(map[string]map[chan ports.ScreenEvent]bool),
		register:     make(chan SSEClient, 10),
		unregister:   make(chan SSEClient, 10),
		broadcast:    make(chan ports.ScreenEvent, 100),
		done:         make(chan struct{}),
		PingInterval: 30 * time.Second,
	}

	go hub.run()
	return hub
}

// run processes SSE hub operations
func (h *SSEHub) run() {
	for {
		select {
		case client := <-h.register:
			h.clientsMu.Lock()
			if h.clients[client.ScreenID] == nil {
				h.clients[client.ScreenID] = make(map[chan ports.ScreenEvent]bool)
			}
			h.clients[client.ScreenID][client.Channel] = true
			log.Printf("[SSE] Client registered for screen %s (total clients: %d)",
				client.ScreenID, len(h.clients[client.ScreenID]))
			h.clientsMu.Unlock()

		case client := <-h.unregister:
			h.clientsMu.Lock()
			if clients, exists := h.clients[client.ScreenID]; exists {
				delete(clients, client.Channel)
				log.Printf("[SSE] Client unregistered from screen %s (remaining clients: %d)",
					client.ScreenID, len(clients))
				if len(clients) == 0 {
					delete(h.clients, client.ScreenID)
				}
			}
			h.clientsMu.Unlock()

		case event := <-h.broadcast:
			h.clientsMu.RLock()
			for clientChan := range h.clients[event.ScreenID] {
				select {
				case clientChan <- event:
				default:
					log.Printf("[SSE] Client channel full for screen %s, skipping %s", event.ScreenID, event.EventType)
				}
			}
			h.clientsMu.RUnlock()

		case <-h.done:
			return
		}
	}
}

// Publish queues an event for the screen's listeners without blocking
func (h *SSEHub) Publish(event ports.ScreenEvent) {
	select {
	case h.broadcast <- event:
	default:
		log.Printf("[SSE] Broadcast channel full, dropping event: %s", event.EventType)
	}
}

// Stop ends the hub loop; open streams end when their requests do
func (h *SSEHub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// HandleSSE streams events of the screen named by the :id parameter
func (h *SSEHub) HandleSSE(c *gin.Context) {
	screenID := c.Param("id")
	if screenID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "screen id required"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Headers", "Cache-Control")

	clientChan := make(chan ports.ScreenEvent, 10)
	client := SSEClient{ScreenID: screenID, Channel: clientChan}
	select {
	case h.register <- client:
	default:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "SSE hub registration failed"})
		return
	}
	defer func() {
		select {
		case h.unregister <- client:
		default:
			log.Printf("[SSE] Unregister queue full, leaving client of %s to be skipped", screenID)
		}
	}()

	// headers go out before the first event so clients see the stream open
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ping := time.NewTicker(h.PingInterval)
	defer ping.Stop()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case event := <-clientChan:
			eventJSON, err := json.Marshal(event)
			if err != nil {
				log.Printf("[SSE] Failed to marshal event: %v", err)
				return true
			}
			c.SSEvent(event.EventType, string(eventJSON))
			return true

		case <-ping.C:
			c.SSEvent("ping", `{"status": "alive", "timestamp": "`+time.Now().Format(time.RFC3339)+`"}`)
			return true

		case <-ctx.Done():
			return false

		case <-h.done:
			return false
		}
	})
}

// GetActiveScreens returns screens with active SSE clients
func (h *SSEHub) GetActiveScreens() []string {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()

	screens := make([]string, 0, len(h.clients))
	for screenID := range h.clients {
		screens = append(screens, screenID)
	}
	return screens
}

// GetClientCount returns the number of active clients for a screen
func (h *SSEHub) GetClientCount(screenID string) int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients[screenID])
}
