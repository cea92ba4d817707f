package chat

import (
	"context"
	"strings"
	"sync"

	"news-chat/internal/api"
	"news-chat/internal/logging"
	"news-chat/internal/session"
	"news-chat/internal/transport"
)

const sendFailureText = "Sorry, I encountered an error. Please try again."

// Snapshot is a consistent copy of the conversation state for rendering.
type Snapshot struct {
	SessionID   string
	Messages    []Message
	IsLoading   bool
	IsStreaming bool
	IsResetting bool
	Err         string
}

// Controller is the single source of truth for the conversation: it owns
// the ordered message list and the request lifecycle flags, reduces
// transport events into message mutations, and exposes the send/reset
// operations the view calls. Public operations never return errors; every
// failure is converted to state.
//
// Transport events arrive on transport goroutines and view calls on the
// bubbletea loop, so all state lives behind one mutex. At most one request
// is in flight at a time (IsLoading || IsStreaming gates sends), which is
// what lets a single currentID identify the streaming message.
type Controller struct {
	store     session.Store
	apiClient api.Client
	transport transport.Transport
	streaming bool

	mu          sync.Mutex
	sessionID   string
	messages    []Message
	isLoading   bool
	isStreaming bool
	isResetting bool
	errText     string

	// currentID is the id of the in-flight streaming assistant message;
	// empty when no stream is active. Events for any other id are stale
	// and dropped.
	currentID string

	// generation increments on every reset so responses that resolve
	// after a reset are discarded instead of landing in the new session.
	generation uint64

	updates     chan struct{}
	unsubscribe []func()
}

// NewController wires the controller to its collaborators and subscribes
// to transport events. The transport is owned by the caller: one
// controller and one transport per active session.
func NewController(store session.Store, apiClient api.Client, tr transport.Transport, streaming bool) *Controller {
	c := &Controller{
		store:     store,
		apiClient: apiClient,
		transport: tr,
		streaming: streaming,
		updates:   make(chan struct{}, 1),
	}

	c.unsubscribe = append(c.unsubscribe,
		tr.OnMessage(c.HandleEvent),
		tr.OnError(c.handleTransportError),
		tr.OnClose(func() {
			logging.Info("transport connection closed")
		}),
	)

	return c
}

// Updates signals that the snapshot changed. Notifications are coalesced:
// the channel carries "something changed", not one entry per mutation.
func (c *Controller) Updates() <-chan struct{} {
	return c.updates
}

func (c *Controller) notify() {
	select {
	case c.updates <- struct{}{}:
	default:
	}
}

// Snapshot returns a copy of the current conversation state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	messages := make([]Message, len(c.messages))
	copy(messages, c.messages)

	return Snapshot{
		SessionID:   c.sessionID,
		Messages:    messages,
		IsLoading:   c.isLoading,
		IsStreaming: c.isStreaming,
		IsResetting: c.isResetting,
		Err:         c.errText,
	}
}

// Initialize obtains or creates the session id, connects the transport and
// loads prior history best-effort. History failures are swallowed: a
// missing history is just an empty conversation.
func (c *Controller) Initialize(ctx context.Context) {
	c.mu.Lock()
	if c.sessionID != "" {
		c.mu.Unlock()
		return
	}
	sessionID := c.store.GetOrCreateSession()
	c.sessionID = sessionID
	c.mu.Unlock()
	c.notify()

	c.transport.Connect(sessionID)

	history, err := c.apiClient.History(ctx, sessionID)
	if err != nil {
		logging.Info("no prior chat history available: %v", err)
		return
	}
	if len(history.Messages) == 0 {
		return
	}

	messages := make([]Message, 0, len(history.Messages))
	for _, hm := range history.Messages {
		messages = append(messages, Message{
			ID:        hm.ID,
			Content:   hm.Content,
			Role:      Role(hm.Role),
			Timestamp: hm.Timestamp,
			Status:    StatusSent,
		})
	}

	c.mu.Lock()
	if c.sessionID == sessionID && len(c.messages) == 0 {
		c.messages = messages
	}
	c.mu.Unlock()
	c.notify()
}

// SendMessage submits one user question. Empty input and sends while a
// request is in flight are rejected without mutating anything; the return
// value reports whether the message was accepted.
func (c *Controller) SendMessage(ctx context.Context, content string) bool {
	content = strings.TrimSpace(content)
	if content == "" {
		return false
	}

	c.mu.Lock()
	if c.isLoading || c.isStreaming {
		c.mu.Unlock()
		return false
	}
	c.errText = ""
	c.isLoading = true
	c.messages = append(c.messages, NewUserMessage(content))
	sessionID := c.sessionID
	generation := c.generation
	c.mu.Unlock()
	c.notify()

	go c.store.IncrementMessageCount()

	if c.streaming {
		c.transport.SendMessage(sessionID, content)
	} else {
		go c.sendViaREST(ctx, generation, sessionID, content)
	}
	return true
}

func (c *Controller) sendViaREST(ctx context.Context, generation uint64, sessionID, query string) {
	resp, err := c.apiClient.SendMessage(ctx, sessionID, query)

	c.mu.Lock()
	if c.generation != generation {
		// The session was reset while the request was in flight.
		c.mu.Unlock()
		logging.Debug("discarding response for reset session %s", sessionID)
		return
	}

	if err != nil {
		logging.Error("send message failed: %v", err)
		c.messages = append(c.messages, NewErrorMessage(sendFailureText, err.Error()))
		c.errText = "Failed to send message"
		c.isLoading = false
		c.mu.Unlock()
		c.notify()
		return
	}

	c.messages = append(c.messages, NewAssistantMessage(resp.Response, resp.SourceLabels(), resp.Timestamp))
	c.isLoading = false
	c.mu.Unlock()
	c.notify()

	go c.store.IncrementMessageCount()
}

// HandleEvent reduces one transport event into the message list. Events
// whose id matches no message (a stream abandoned by a reset, an
// unsolicited start) are dropped silently.
func (c *Controller) HandleEvent(ev transport.Event) {
	c.mu.Lock()

	changed := false
	switch ev.Type {
	case transport.EventStart:
		// Accept a stream only while a request is awaiting its response.
		if !c.isLoading || c.isStreaming || ev.MessageID == "" {
			logging.Debug("dropping unsolicited start event for %q", ev.MessageID)
			break
		}
		c.currentID = ev.MessageID
		c.isStreaming = true
		c.messages = append(c.messages, NewStreamingMessage(ev.MessageID))
		changed = true

	case transport.EventChunk:
		idx := c.streamingIndex(ev.MessageID)
		if idx < 0 {
			logging.Debug("dropping stale chunk for %q", ev.MessageID)
			break
		}
		c.messages[idx].Content += ev.Content
		changed = true

	case transport.EventEnd:
		idx := c.streamingIndex(ev.MessageID)
		if idx < 0 {
			logging.Debug("dropping stale end for %q", ev.MessageID)
			break
		}
		msg := &c.messages[idx]
		msg.Status = StatusSent
		msg.IsStreaming = false
		if ev.Metadata != nil {
			msg.Sources = ev.Metadata.Sources
		}
		c.currentID = ""
		c.isLoading = false
		c.isStreaming = false
		changed = true
		go c.store.IncrementMessageCount()

	case transport.EventError:
		errText := ev.Error
		if errText == "" {
			errText = "An error occurred"
		}
		if idx := c.streamingIndex(ev.MessageID); idx >= 0 {
			msg := &c.messages[idx]
			msg.Status = StatusError
			msg.IsStreaming = false
			msg.Error = errText
		} else if c.isLoading && !c.isStreaming {
			// The request failed before a stream started (e.g. send
			// attempted without a connection); keep the failed turn
			// visible inline.
			c.messages = append(c.messages, NewErrorMessage(sendFailureText, errText))
		} else {
			logging.Debug("dropping stale error for %q", ev.MessageID)
			break
		}
		c.errText = errText
		c.currentID = ""
		c.isLoading = false
		c.isStreaming = false
		changed = true

	default:
		logging.Error("dropping event with unknown type %q", ev.Type)
	}

	c.mu.Unlock()
	if changed {
		c.notify()
	}
}

// streamingIndex locates the in-flight streaming message for id, or -1.
// The currentID check is the fast path; the list scan keeps the lookup
// correct against late events that survive it.
func (c *Controller) streamingIndex(id string) int {
	if id == "" || id != c.currentID {
		return -1
	}
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *Controller) handleTransportError(err error) {
	c.mu.Lock()
	if !c.isLoading {
		// Connection-level noise outside a request: log only.
		c.mu.Unlock()
		logging.Info("transport error: %v", err)
		return
	}
	c.mu.Unlock()
	logging.Error("transport error during request: %v", err)
}

// ResetSession abandons the current conversation: store cleared, fresh
// session id, empty message list, all flags idle. An in-flight stream is
// not terminated; its remaining events reference the old id and
// generation and are dropped as they arrive.
func (c *Controller) ResetSession(ctx context.Context) {
	c.mu.Lock()
	oldSessionID := c.sessionID
	c.isResetting = true
	c.errText = ""
	c.mu.Unlock()
	c.notify()

	c.store.ClearSession()
	newSessionID := c.store.CreateNewSession()

	if oldSessionID != "" {
		// Best-effort backend cleanup; the local reset does not wait on it.
		go func() {
			if _, err := c.apiClient.ResetSession(ctx, oldSessionID); err != nil {
				logging.Info("backend session reset failed: %v", err)
			}
		}()
	}

	c.mu.Lock()
	c.sessionID = newSessionID
	c.messages = nil
	c.isLoading = false
	c.isStreaming = false
	c.isResetting = false
	c.currentID = ""
	c.generation++
	c.mu.Unlock()
	c.notify()

	logging.Info("session reset: %s -> %s", oldSessionID, newSessionID)
}

// Close unsubscribes from the transport and disconnects it.
func (c *Controller) Close() {
	for _, unsub := range c.unsubscribe {
		unsub()
	}
	c.transport.Disconnect()
}
