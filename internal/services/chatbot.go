package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"pathvest-web/internal/models"
)

const (
	maxUpstreamBody  = 4 << 20
	maxErrorBodySize = 512
)

var ErrInvalidUpstreamJSON = errors.New("upstream returned invalid JSON")

type ChatbotService struct {
	url    string
	client *http.Client
}

// Option configures a ChatbotService.
type Option func(*ChatbotService)

// WithHTTPClient replaces the default client. A nil client is ignored.
func WithHTTPClient(c *http.Client) Option {
	return func(s *ChatbotService) {
		if c != nil {
			s.client = c
		}
	}
}

// NewChatbotService creates a client for the chat endpoint at url.
// A zero timeout leaves requests bounded only by their context.
func NewChatbotService(url string, timeout time.Duration, opts ...Option) *ChatbotService {
	s := &ChatbotService{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Reply sends the widget payload and returns the reply text.
func (s *ChatbotService) Reply(ctx context.Context, userInput string, history []models.ChatMessage) (string, error) {
	if history == nil {
		history = []models.ChatMessage{}
	}

	body, err := s.post(ctx, models.UpstreamChatRequest{
		UserInput:           userInput,
		ConversationHistory: history,
	})
	if err != nil {
		return "", err
	}

	var resp models.UpstreamChatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}
	return resp.Text(), nil
}

// Relay forwards a proxy request and returns the upstream JSON untouched.
func (s *ChatbotService) Relay(ctx context.Context, req models.ProxyRequest) (json.RawMessage, error) {
	body, err := s.post(ctx, req)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, ErrInvalidUpstreamJSON
	}
	return json.RawMessage(body), nil
}

func (s *ChatbotService) post(ctx context.Context, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read chat response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := body
		if len(snippet) > maxErrorBodySize {
			snippet = snippet[:maxErrorBodySize]
		}
		return nil, &UpstreamStatusError{StatusCode: resp.StatusCode, Body: string(snippet)}
	}

	return body, nil
}
