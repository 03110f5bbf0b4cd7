package httpapi

import "github.com/kovacsdev/agentgate/internal/core"

// generateRequest is the native request shape accepted by POST /v1/generate.
type generateRequest struct {
	Prompt       string `json:"prompt"`
	Model        string `json:"model,omitempty"`
	SystemPrompt string `json:"systemPrompt,omitempty"`
	MaxTurns     int    `json:"maxTurns,omitempty"`
	TimeoutMs    int    `json:"timeoutMs,omitempty"`
	Priority     string `json:"priority,omitempty"`
}

// generateResponse is the native response shape returned by POST /v1/generate.
type generateResponse struct {
	Text         string `json:"text"`
	Model        string `json:"model,omitempty"`
	InputTokens  int    `json:"inputTokens,omitempty"`
	OutputTokens int    `json:"outputTokens,omitempty"`
	Error        string `json:"error,omitempty"`
}

func (r generateRequest) toCoreRequest() core.Request {
	return core.Request{
		Prompt:       r.Prompt,
		Model:        r.Model,
		SystemPrompt: r.SystemPrompt,
		MaxTurns:     r.MaxTurns,
		TimeoutMs:    r.TimeoutMs,
		Priority:     core.Priority(r.Priority),
	}
}

func fromCoreResponse(resp core.Response) generateResponse {
	return generateResponse{
		Text:         resp.Text,
		Model:        resp.Model,
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
		Error:        resp.Error,
	}
}

// statsResponse backs GET /stats.
type statsResponse struct {
	Active  int                  `json:"active"`
	Queued  int                  `json:"queued"`
	Metrics core.MetricsSnapshot `json:"metrics"`
}

// errorBody is the shape written for boundary-only rejections (invalid
// request, unauthenticated) that never reach the core.
type errorBody struct {
	Error string `json:"error"`
}
