package models

import "encoding/json"

// ChatMessage is one prior turn sent to the upstream as conversation history.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// UpstreamChatRequest is the payload the widget sends to the upstream.
type UpstreamChatRequest struct {
	UserInput           string        `json:"userInput"`
	ConversationHistory []ChatMessage `json:"conversationHistory"`
}

// UpstreamChatResponse is the part of the upstream reply the widget reads.
// Response is kept raw because the upstream does not always send a string.
type UpstreamChatResponse struct {
	Response json.RawMessage `json:"response"`
}

// Text returns the reply as display text: strings are unquoted, a missing
// or null field is empty, and any other value is shown as its JSON.
func (r UpstreamChatResponse) Text() string {
	if len(r.Response) == 0 || string(r.Response) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(r.Response, &s); err == nil {
		return s
	}
	return string(r.Response)
}

// ProxyRequest is the body accepted by POST /api/chat. Message is kept raw
// so it reaches the upstream exactly as the caller sent it.
type ProxyRequest struct {
	Message json.RawMessage `json:"message,omitempty"`
}

type ProxyErrorResponse struct {
	Error string `json:"error"`
}

// SubmitRequest is the body accepted by the widget message endpoint.
type SubmitRequest struct {
	Message string `json:"message"`
}
