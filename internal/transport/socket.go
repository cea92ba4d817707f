package transport

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/qmuntal/stateless"

	"news-chat/internal/logging"
)

// Connection FSM states
var (
	StateDisconnected stateless.State = "Disconnected"
	StateConnecting   stateless.State = "Connecting"
	StateOpen         stateless.State = "Open"
	StateClosing      stateless.State = "Closing"
)

// Connection FSM triggers
var (
	triggerDial           stateless.Trigger = "Dial"
	triggerOpened         stateless.Trigger = "Opened"
	triggerDialFailed     stateless.Trigger = "DialFailed"
	triggerConnLost       stateless.Trigger = "ConnLost"
	triggerCloseRequested stateless.Trigger = "CloseRequested"
	triggerClosed         stateless.Trigger = "Closed"
)

// outboundFrame is the wire format for user messages.
type outboundFrame struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// Socket is the live websocket transport. A lost connection is retried
// after a fixed delay, up to maxAttempts times; the attempt counter resets
// on a successful open and Disconnect suppresses retries entirely.
type Socket struct {
	subscribers

	wsURL       string
	maxAttempts int
	delay       time.Duration

	mu          sync.Mutex
	fsm         *stateless.StateMachine
	conn        *websocket.Conn
	attempts    int
	manualClose bool
}

func NewSocket(wsURL string, maxAttempts int, delay time.Duration) *Socket {
	s := &Socket{
		subscribers: newSubscribers(),
		wsURL:       wsURL,
		maxAttempts: maxAttempts,
		delay:       delay,
	}

	fsm := stateless.NewStateMachine(StateDisconnected)
	fsm.Configure(StateDisconnected).
		Permit(triggerDial, StateConnecting)
	fsm.Configure(StateConnecting).
		Permit(triggerOpened, StateOpen).
		Permit(triggerDialFailed, StateDisconnected)
	fsm.Configure(StateOpen).
		Permit(triggerConnLost, StateDisconnected).
		Permit(triggerCloseRequested, StateClosing)
	fsm.Configure(StateClosing).
		Permit(triggerClosed, StateDisconnected)
	s.fsm = fsm

	return s
}

// fire advances the connection FSM; an unpermitted trigger means the event
// raced a state change and is safe to ignore.
func (s *Socket) fire(trigger stateless.Trigger) {
	if err := s.fsm.Fire(trigger); err != nil {
		logging.Debug("connection fsm: %v", err)
	}
}

// ConnectionState reports the current FSM state.
func (s *Socket) ConnectionState() stateless.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fsm.MustState()
}

// Connect dials the backend. Safe to call repeatedly: a dial is started
// only from the Disconnected state.
func (s *Socket) Connect(sessionID string) {
	s.mu.Lock()
	if st := s.fsm.MustState(); st != StateDisconnected {
		s.mu.Unlock()
		return
	}
	s.manualClose = false
	s.fire(triggerDial)
	s.mu.Unlock()

	endpoint := s.wsURL + "?sessionId=" + url.QueryEscape(sessionID)
	conn, resp, err := websocket.DefaultDialer.Dial(endpoint, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		logging.Error("websocket dial failed: %v", err)
		s.mu.Lock()
		s.fire(triggerDialFailed)
		s.mu.Unlock()
		s.publishError(fmt.Errorf("websocket connection error: %w", err))
		s.publishClose()
		s.scheduleReconnect(sessionID)
		return
	}

	s.mu.Lock()
	if s.manualClose {
		// Disconnect raced the dial; drop the fresh connection.
		s.fire(triggerDialFailed)
		s.mu.Unlock()
		conn.Close()
		return
	}
	s.conn = conn
	s.attempts = 0
	s.fire(triggerOpened)
	s.mu.Unlock()

	logging.Info("websocket connected for session %s", sessionID)
	go s.readPump(conn, sessionID)
}

func (s *Socket) readPump(conn *websocket.Conn, sessionID string) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			logging.Info("websocket closed: %v", err)
			break
		}

		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			// Malformed frames are dropped; they are not terminal for any
			// in-flight message.
			logging.Error("dropping malformed websocket frame: %v", err)
			continue
		}
		if ev.Type == "" {
			logging.Error("dropping websocket frame without type")
			continue
		}

		s.publish(ev)
	}

	s.mu.Lock()
	if s.fsm.MustState() == StateClosing {
		s.fire(triggerClosed)
	} else {
		s.fire(triggerConnLost)
	}
	s.conn = nil
	manual := s.manualClose
	s.mu.Unlock()

	s.publishClose()
	if !manual {
		s.scheduleReconnect(sessionID)
	}
}

func (s *Socket) scheduleReconnect(sessionID string) {
	s.mu.Lock()
	if s.manualClose || s.attempts >= s.maxAttempts {
		s.mu.Unlock()
		return
	}
	s.attempts++
	attempt := s.attempts
	s.mu.Unlock()

	logging.Info("reconnecting... (%d/%d)", attempt, s.maxAttempts)
	time.AfterFunc(s.delay, func() {
		s.Connect(sessionID)
	})
}

// SendMessage writes one message frame. Without an open connection it
// emits an error event instead of failing synchronously.
func (s *Socket) SendMessage(sessionID, content string) {
	s.mu.Lock()
	conn := s.conn
	open := s.fsm.MustState() == StateOpen
	s.mu.Unlock()

	if !open || conn == nil {
		logging.Error("send attempted without an open websocket connection")
		s.publish(Event{Type: EventError, Error: "Not connected to the chat service"})
		s.publishError(ErrNotConnected)
		return
	}

	frame := outboundFrame{
		Type:      "message",
		SessionID: sessionID,
		Content:   content,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if err := conn.WriteJSON(frame); err != nil {
		logging.Error("websocket write failed: %v", err)
		s.publish(Event{Type: EventError, Error: "Failed to deliver message"})
		s.publishError(err)
	}
}

// Disconnect marks the close as intentional and tears down the connection.
func (s *Socket) Disconnect() {
	s.mu.Lock()
	s.manualClose = true
	conn := s.conn
	if conn != nil {
		s.fire(triggerCloseRequested)
	}
	s.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
}

func (s *Socket) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fsm.MustState() == StateOpen
}
