package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aretw0/accelerate/pkg/domain"
)

// Message is one server-sent event.
type Message struct {
	Type domain.EventType
	Data string
}

// StreamManager fans engine events out to active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[chan Message]struct{}
	logger      *slog.Logger
}

func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &StreamManager{
		subscribers: make(map[chan Message]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a new listener. The returned func unregisters it and closes the channel.
func (sm *StreamManager) Subscribe() (<-chan Message, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan Message, 16)
	sm.subscribers[ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if _, ok := sm.subscribers[ch]; ok {
			delete(sm.subscribers, ch)
			close(ch)
		}
	}
}

// Subscribers returns the number of active listeners.
func (sm *StreamManager) Subscribers() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers)
}

// Broadcast sends v, encoded as JSON, to every listener.
func (sm *StreamManager) Broadcast(typ domain.EventType, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		sm.logger.Error("StreamManager: encode failed", "type", typ, "error", err)
		return
	}
	msg := Message{Type: typ, Data: string(data)}

	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: Client buffer full, dropping message", "type", typ)
		}
	}
}

// runPayload adds the error text, which RunEvent does not serialize.
type runPayload struct {
	*domain.RunEvent
	Error string `json:"error,omitempty"`
}

// Hooks returns lifecycle hooks that broadcast every engine event.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	run := func(_ context.Context, e *domain.RunEvent) {
		p := runPayload{RunEvent: e}
		if e.Err != nil {
			p.Error = e.Err.Error()
		}
		sm.Broadcast(e.Type, p)
	}
	return domain.LifecycleHooks{
		OnRunStart: run,
		OnStep: func(_ context.Context, e *domain.StepEvent) {
			sm.Broadcast(e.Type, e)
		},
		OnRunFinish: run,
	}
}

// SubscribeEvents handles the GET /events request (SSE).
// An optional watch parameter restricts the stream to a comma separated list of event types.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.Logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	watch := parseWatch(r.URL.Query().Get("watch"))

	ch, cancel := s.Streams.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Debug("SSE Client Disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if watch != nil && !watch[msg.Type] {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Type, msg.Data)
			flusher.Flush()
		}
	}
}
