package api

import (
	"context"
	"fmt"
	"time"
)

// Source is one citation attached to a backend answer.
type Source struct {
	Title  string `json:"title"`
	Source string `json:"source"`
}

// Label formats a source the way the conversation view displays it.
func (s Source) Label() string {
	return fmt.Sprintf("%s (%s)", s.Title, s.Source)
}

type SendMessageRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"sessionId"`
}

type SendMessageResponse struct {
	SessionID string    `json:"sessionId"`
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
	Sources   []Source  `json:"sources"`
}

// SourceLabels returns the formatted citation strings in response order.
func (r *SendMessageResponse) SourceLabels() []string {
	if len(r.Sources) == 0 {
		return nil
	}
	labels := make([]string, len(r.Sources))
	for i, s := range r.Sources {
		labels[i] = s.Label()
	}
	return labels
}

type HistoryMessage struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Role      string    `json:"role"`
	Timestamp time.Time `json:"timestamp"`
}

type HistoryResponse struct {
	SessionID     string           `json:"sessionId"`
	Messages      []HistoryMessage `json:"messages"`
	TotalMessages int              `json:"totalMessages"`
}

type ResetSessionResponse struct {
	Success      bool   `json:"success"`
	NewSessionID string `json:"newSessionId"`
	Message      string `json:"message"`
}

type createSessionResponse struct {
	SessionID string `json:"sessionId"`
}

// Client is the request-response path to the chat backend: the fallback
// for sends when streaming is disabled, plus history and session
// management. Implementations are selected once at construction.
type Client interface {
	SendMessage(ctx context.Context, sessionID, query string) (*SendMessageResponse, error)
	History(ctx context.Context, sessionID string) (*HistoryResponse, error)
	ResetSession(ctx context.Context, sessionID string) (*ResetSessionResponse, error)
	CreateSession(ctx context.Context) (string, error)
}
