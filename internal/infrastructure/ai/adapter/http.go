package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/philipsolarz/chat-backend-sub000/internal/infrastructure/ai/port"
)

// HTTPResponder calls an external generation service over HTTP.
type HTTPResponder struct {
	baseURL string
	client  *http.Client
}

func NewHTTPResponder(baseURL string) *HTTPResponder {
	return &HTTPResponder{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// NewHTTPResponderFromEnv reads AI_SERVICE_URL.
func NewHTTPResponderFromEnv() (*HTTPResponder, error) {
	url := os.Getenv("AI_SERVICE_URL")
	if url == "" {
		return nil, fmt.Errorf("AI_SERVICE_URL is not set")
	}
	return NewHTTPResponder(url), nil
}

type replyRequest struct {
	ConversationID string      `json:"conversation_id"`
	History        []port.Turn `json:"history"`
}

type replyResponse struct {
	Content string `json:"content"`
}

func (r *HTTPResponder) Reply(ctx context.Context, conversationID string, history []port.Turn) (string, error) {
	body, err := json.Marshal(replyRequest{ConversationID: conversationID, History: history})
	if err != nil {
		return "", fmt.Errorf("encoding reply request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/v1/replies", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building reply request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling generation service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generation service returned status %d", resp.StatusCode)
	}

	var out replyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding reply response: %w", err)
	}
	if out.Content == "" {
		return "", fmt.Errorf("generation service returned an empty reply")
	}
	return out.Content, nil
}
