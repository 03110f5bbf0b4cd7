package httpapi

import "github.com/kovacsdev/agentgate/internal/core"

// messagesRequest is the Messages-API-shaped request accepted by
// POST /v1/messages, translated at the boundary into a core.Request.
type messagesRequest struct {
	Model     string         `json:"model"`
	MaxTokens int            `json:"max_tokens,omitempty"`
	System    string         `json:"system,omitempty"`
	Messages  []messagesTurn `json:"messages"`
}

type messagesTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// messagesResponse is the Messages-API-shaped response emitted by
// POST /v1/messages.
type messagesResponse struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	Role       string            `json:"role"`
	Content    []messagesContent `json:"content"`
	Model      string            `json:"model,omitempty"`
	StopReason string            `json:"stop_reason,omitempty"`
	Usage      messagesUsage     `json:"usage"`
}

type messagesContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type messagesUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// lastUserPrompt returns the content of the last "user" turn, or of the
// last turn of any role when no turn has role "user"; earlier turns are
// dropped, since the core accepts a single prompt string, not a
// multi-turn conversation.
func (r messagesRequest) lastUserPrompt() string {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == "user" {
			return r.Messages[i].Content
		}
	}
	if len(r.Messages) > 0 {
		return r.Messages[len(r.Messages)-1].Content
	}
	return ""
}

func (r messagesRequest) toCoreRequest() core.Request {
	return core.Request{
		Prompt:       r.lastUserPrompt(),
		Model:        r.Model,
		SystemPrompt: r.System,
	}
}

func toMessagesResponse(reqID string, model string, resp core.Response) messagesResponse {
	stopReason := "end_turn"
	if resp.Kind != core.KindSuccess {
		stopReason = string(resp.Kind)
	}
	responseModel := resp.Model
	if responseModel == "" {
		responseModel = model
	}
	return messagesResponse{
		ID:         "msg_" + reqID,
		Type:       "message",
		Role:       "assistant",
		Content:    []messagesContent{{Type: "text", Text: resp.Text}},
		Model:      responseModel,
		StopReason: stopReason,
		Usage: messagesUsage{
			InputTokens:  resp.InputTokens,
			OutputTokens: resp.OutputTokens,
		},
	}
}
