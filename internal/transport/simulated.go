package transport

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"news-chat/internal/logging"
)

var simulatedResponses = []string{
	"Based on recent news articles, here's what I found about \"%s\":\n\n**Key Points:**\n- This is a simulated streaming response\n- Each word appears gradually like real streaming\n- Production will use the actual RAG pipeline\n\n**Analysis:**\nThe news corpus contains relevant information that answers your query. In production this will be powered by vector search over the article index.\n\n**Sources:**\n- Reuters Technology Report (2024)\n- BBC Business Analysis\n- Associated Press Breaking News",
	"Great question! Let me search through the news articles...\n\n**Recent Developments:**\nAccording to multiple sources, there have been significant updates related to your query about \"%s\".\n\n**Expert Insights:**\n1. Market analysis shows interesting trends\n2. Industry leaders have commented on this topic\n3. Historical context provides valuable perspective\n\n**Conclusion:**\nThis is a simulated response. The live backend retrieves actual news content and generates context-aware answers.\n\n*Sources: Reuters, BBC News, AP*",
}

var simulatedSources = []string{
	"Reuters - Technology Report (2024)",
	"BBC - Business Analysis",
	"Associated Press - Breaking News",
}

// Simulated fabricates a full start/chunk/end sequence locally, pacing the
// chunks to emulate token-by-token generation. It never opens a network
// connection.
type Simulated struct {
	subscribers

	chunkDelayMin time.Duration
	chunkDelayMax time.Duration
	endDelay      time.Duration
}

func NewSimulated() *Simulated {
	return &Simulated{
		subscribers:   newSubscribers(),
		chunkDelayMin: 30 * time.Millisecond,
		chunkDelayMax: 80 * time.Millisecond,
		endDelay:      200 * time.Millisecond,
	}
}

// SetPacing overrides the chunk and end delays. Tests collapse them to zero.
func (t *Simulated) SetPacing(chunkMin, chunkMax, end time.Duration) {
	t.chunkDelayMin = chunkMin
	t.chunkDelayMax = chunkMax
	t.endDelay = end
}

// Connect is a no-op; there is nothing to connect to.
func (t *Simulated) Connect(sessionID string) {
	logging.Info("transport: simulated mode, no connection needed")
}

// SendMessage synthesizes one streamed response for the given query.
// The single in-flight assumption holds: the caller sends at most one
// message at a time, so sequences never interleave.
func (t *Simulated) SendMessage(sessionID, content string) {
	go t.stream(content)
}

func (t *Simulated) stream(query string) {
	text := fmt.Sprintf(simulatedResponses[rand.Intn(len(simulatedResponses))], query)
	messageID := "msg_" + uuid.NewString()

	t.publish(Event{Type: EventStart, MessageID: messageID})

	// Split on single spaces so newlines stay attached to their words;
	// concatenating the chunks reconstructs the source text.
	for _, word := range strings.Split(text, " ") {
		time.Sleep(t.chunkDelay())
		t.publish(Event{
			Type:      EventChunk,
			MessageID: messageID,
			Content:   word + " ",
		})
	}

	time.Sleep(t.endDelay)
	t.publish(Event{
		Type:      EventEnd,
		MessageID: messageID,
		Metadata: &Metadata{
			Sources:        simulatedSources,
			ProcessingTime: 2.5,
		},
	})
}

func (t *Simulated) chunkDelay() time.Duration {
	if t.chunkDelayMax <= t.chunkDelayMin {
		return t.chunkDelayMin
	}
	return t.chunkDelayMin + time.Duration(rand.Int63n(int64(t.chunkDelayMax-t.chunkDelayMin)))
}

// Disconnect is a no-op; there is no connection to tear down.
func (t *Simulated) Disconnect() {}

// IsConnected always reports true: the simulator is always ready to deliver.
func (t *Simulated) IsConnected() bool {
	return true
}
