package api

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

var mockAnswers = []string{
	"Based on recent news articles, here's what I found: \"%s\" is an interesting topic. Let me provide you with relevant information from our news corpus.\n\n**Key Points:**\n- This is a simulated response\n- The live backend provides RAG-powered answers\n- Streaming mode shows responses in real time\n\nWould you like more details?",
	"According to the latest news articles:\n\n1. **Breaking News**: This is related to %s\n2. **Analysis**: Multiple sources indicate interesting developments\n3. **Context**: Historical perspective shows patterns\n\nThis is a simulated response. The live backend retrieves actual news content.",
	"Great question about \"%s\"!\n\nHere's what our news corpus reveals:\n\n- **Recent Developments**: Simulated data for testing\n- **Expert Opinion**: Placeholder analysis\n- **Related Topics**: Connected news items\n\n*Note: this is a simulated response.*",
}

var mockSources = []Source{
	{Title: "Reuters", Source: "Technology Report 2024"},
	{Title: "BBC", Source: "Business Analysis"},
	{Title: "Associated Press", Source: "Breaking News"},
}

// MockClient fabricates responses locally with a short simulated latency,
// so simulated mode never opens a network connection on the REST path.
type MockClient struct {
	// SendDelay/ReadDelay pace the fake network; tests set them to zero.
	SendDelay time.Duration
	ReadDelay time.Duration
}

func NewMockClient() *MockClient {
	return &MockClient{
		SendDelay: time.Second,
		ReadDelay: 300 * time.Millisecond,
	}
}

func (c *MockClient) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *MockClient) SendMessage(ctx context.Context, sessionID, query string) (*SendMessageResponse, error) {
	if err := c.sleep(ctx, c.SendDelay); err != nil {
		return nil, err
	}

	return &SendMessageResponse{
		SessionID: sessionID,
		Response:  fmt.Sprintf(mockAnswers[rand.Intn(len(mockAnswers))], query),
		Timestamp: time.Now(),
		Sources:   mockSources,
	}, nil
}

func (c *MockClient) History(ctx context.Context, sessionID string) (*HistoryResponse, error) {
	if err := c.sleep(ctx, c.ReadDelay); err != nil {
		return nil, err
	}

	// New simulated sessions start with an empty history.
	return &HistoryResponse{
		SessionID: sessionID,
	}, nil
}

func (c *MockClient) ResetSession(ctx context.Context, sessionID string) (*ResetSessionResponse, error) {
	if err := c.sleep(ctx, c.ReadDelay); err != nil {
		return nil, err
	}

	return &ResetSessionResponse{
		Success:      true,
		NewSessionID: "session_" + uuid.NewString(),
		Message:      "Session reset successfully",
	}, nil
}

func (c *MockClient) CreateSession(ctx context.Context) (string, error) {
	if err := c.sleep(ctx, c.ReadDelay); err != nil {
		return "", err
	}
	return "session_" + uuid.NewString(), nil
}
