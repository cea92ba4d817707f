package transport

import (
	"errors"
	"sync"
)

// EventType tags an inbound stream event.
type EventType string

const (
	EventStart EventType = "start"
	EventChunk EventType = "chunk"
	EventEnd   EventType = "end"
	EventError EventType = "error"
)

// Metadata carries citation and timing details attached to an end frame.
type Metadata struct {
	Sources        []string `json:"sources,omitempty"`
	ProcessingTime float64  `json:"processingTime,omitempty"`
}

// Event is one inbound frame from the backend. For a given MessageID the
// backend emits exactly one start, zero or more chunks, then exactly one
// terminal end or error frame.
type Event struct {
	Type      EventType `json:"type"`
	MessageID string    `json:"messageId,omitempty"`
	Content   string    `json:"content,omitempty"`
	Error     string    `json:"error,omitempty"`
	Metadata  *Metadata `json:"metadata,omitempty"`
}

// ErrNotConnected is reported when a send is attempted without an open
// connection in live mode.
var ErrNotConnected = errors.New("websocket is not connected")

type MessageHandler func(Event)
type ErrorHandler func(error)
type CloseHandler func()

// Transport delivers user text to the backend and fans backend events out
// to subscribers. Implementations are selected once at construction:
// Simulated fabricates responses locally, Socket speaks to a live backend.
type Transport interface {
	// Connect establishes the connection for the given session. Idempotent;
	// a no-op for the simulated implementation.
	Connect(sessionID string)

	// SendMessage delivers user text. Failures are reported through the
	// event/error subscriptions, never returned synchronously.
	SendMessage(sessionID, content string)

	OnMessage(handler MessageHandler) func()
	OnError(handler ErrorHandler) func()
	OnClose(handler CloseHandler) func()

	// Disconnect tears the connection down intentionally, suppressing
	// reconnect attempts.
	Disconnect()

	IsConnected() bool
}

// subscribers is the fan-out registry shared by both transport
// implementations. Handlers run on the delivering goroutine, so each
// subscription observes events in delivery order.
type subscribers struct {
	mu      sync.Mutex
	nextID  int
	message map[int]MessageHandler
	errs    map[int]ErrorHandler
	closes  map[int]CloseHandler
}

func newSubscribers() subscribers {
	return subscribers{
		message: make(map[int]MessageHandler),
		errs:    make(map[int]ErrorHandler),
		closes:  make(map[int]CloseHandler),
	}
}

// OnMessage registers a handler for inbound events and returns its
// unsubscribe function.
func (s *subscribers) OnMessage(handler MessageHandler) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.message[id] = handler
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.message, id)
	}
}

// OnError registers a handler for connection-level errors.
func (s *subscribers) OnError(handler ErrorHandler) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.errs[id] = handler
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.errs, id)
	}
}

// OnClose registers a handler invoked when the connection closes.
func (s *subscribers) OnClose(handler CloseHandler) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.closes[id] = handler
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.closes, id)
	}
}

func (s *subscribers) publish(ev Event) {
	for _, handler := range s.messageHandlers() {
		handler(ev)
	}
}

func (s *subscribers) publishError(err error) {
	s.mu.Lock()
	handlers := make([]ErrorHandler, 0, len(s.errs))
	for _, h := range s.errs {
		handlers = append(handlers, h)
	}
	s.mu.Unlock()
	for _, handler := range handlers {
		handler(err)
	}
}

func (s *subscribers) publishClose() {
	s.mu.Lock()
	handlers := make([]CloseHandler, 0, len(s.closes))
	for _, h := range s.closes {
		handlers = append(handlers, h)
	}
	s.mu.Unlock()
	for _, handler := range handlers {
		handler()
	}
}

func (s *subscribers) messageHandlers() []MessageHandler {
	s.mu.Lock()
	defer s.mu.Unlock()
	handlers := make([]MessageHandler, 0, len(s.message))
	for _, h := range s.message {
		handlers = append(handlers, h)
	}
	return handlers
}
