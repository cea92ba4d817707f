package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSendMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/chat/message", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req SendMessageRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "what happened today?", req.Query)
		require.Equal(t, "session_abc", req.SessionID)

		json.NewEncoder(w).Encode(SendMessageResponse{
			SessionID: req.SessionID,
			Response:  "Here is a summary of today's news.",
			Timestamp: time.Now(),
			Sources: []Source{
				{Title: "Market Brief", Source: "Reuters"},
				{Title: "World Roundup", Source: "BBC"},
			},
		})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, time.Second, 2*time.Second)
	resp, err := client.SendMessage(context.Background(), "session_abc", "what happened today?")
	require.NoError(t, err)
	require.Equal(t, "Here is a summary of today's news.", resp.Response)
	require.Equal(t, []string{"Market Brief (Reuters)", "World Roundup (BBC)"}, resp.SourceLabels())
}

func TestSendMessageBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"pipeline unavailable"}`, http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, time.Second, time.Second)
	_, err := client.SendMessage(context.Background(), "session_abc", "query")
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 502")
	require.Contains(t, err.Error(), "pipeline unavailable")
}

func TestHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/chat/history/session_abc", r.URL.Path)

		json.NewEncoder(w).Encode(HistoryResponse{
			SessionID: "session_abc",
			Messages: []HistoryMessage{
				{ID: "m1", Content: "hello", Role: "user"},
				{ID: "m2", Content: "hi there", Role: "assistant"},
			},
			TotalMessages: 2,
		})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, time.Second, time.Second)
	resp, err := client.History(context.Background(), "session_abc")
	require.NoError(t, err)
	require.Equal(t, 2, resp.TotalMessages)
	require.Len(t, resp.Messages, 2)
	require.Equal(t, "assistant", resp.Messages[1].Role)
}

func TestResetSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/api/chat/session/session_abc", r.URL.Path)

		json.NewEncoder(w).Encode(ResetSessionResponse{
			Success:      true,
			NewSessionID: "session_next",
			Message:      "session cleared",
		})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, time.Second, time.Second)
	resp, err := client.ResetSession(context.Background(), "session_abc")
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Equal(t, "session_next", resp.NewSessionID)
}

func TestCreateSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/chat/session", r.URL.Path)

		json.NewEncoder(w).Encode(map[string]string{"sessionId": "session_fresh"})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, time.Second, time.Second)
	id, err := client.CreateSession(context.Background())
	require.NoError(t, err)
	require.Equal(t, "session_fresh", id)
}

func TestSendMessageContextCancelled(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	client := NewHTTPClient(srv.URL, time.Minute, time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.SendMessage(ctx, "session_abc", "query")
	require.Error(t, err)
}

func TestSourceLabel(t *testing.T) {
	tests := []struct {
		name     string
		source   Source
		expected string
	}{
		{
			name:     "title and outlet",
			source:   Source{Title: "Tech Daily", Source: "Reuters"},
			expected: "Tech Daily (Reuters)",
		},
		{
			name:     "empty outlet",
			source:   Source{Title: "Untitled"},
			expected: "Untitled ()",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.source.Label(); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestMockClientSendMessage(t *testing.T) {
	client := NewMockClient()
	client.SendDelay = 0
	client.ReadDelay = 0

	resp, err := client.SendMessage(context.Background(), "session_abc", "latest headlines")
	require.NoError(t, err)
	require.NotEmpty(t, resp.Response)
	require.NotEmpty(t, resp.Sources)
	require.Equal(t, "session_abc", resp.SessionID)
}

func TestMockClientHonorsContext(t *testing.T) {
	client := NewMockClient()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.SendMessage(ctx, "session_abc", "query")
	require.Error(t, err)
}
