package events

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
)

// Event types broadcast while a run progresses
const (
	RunStarted    = "run_started"
	StageStarted  = "stage_started"
	StageFinished = "stage_finished"
	RunFinished   = "run_finished"
)

// EventBroker manages SSE connections and broadcasts events
type EventBroker struct {
	clients map[chan string]bool
	mu      sync.RWMutex
}

// Global event broker instance
var broker = NewBroker()

// NewBroker creates an empty broker
func NewBroker() *EventBroker {
	return &EventBroker{clients: make(map[chan string]bool)}
}

// GetBroker returns the global event broker
func GetBroker() *EventBroker {
	return broker
}

// Register adds a new SSE client
func (b *EventBroker) Register(client chan string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clients[client] = true
	log.Printf("📡 SSE client connected (total: %d)", len(b.clients))
}

// Unregister removes an SSE client
func (b *EventBroker) Unregister(client chan string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.clients[client]; !ok {
		return
	}
	delete(b.clients, client)
	close(client)
	log.Printf("📡 SSE client disconnected (total: %d)", len(b.clients))
}

// ClientCount returns the number of connected clients
func (b *EventBroker) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// Broadcast sends an event to all connected clients. Full client buffers drop the event.
func (b *EventBroker) Broadcast(eventType string, data interface{}) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Printf("Failed to marshal event data: %v", err)
		return
	}

	message := Format(eventType, jsonData)

	for client := range b.clients {
		select {
		case client <- message:
		default:
		}
	}
}

// Format renders one SSE frame
func Format(eventType string, data []byte) string {
	return fmt.Sprintf("event: %s\ndata: %s\n\n", eventType, string(data))
}
