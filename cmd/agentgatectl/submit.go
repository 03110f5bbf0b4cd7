package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kovacsdev/agentgate/internal/config"
)

type submitRequest struct {
	Prompt       string `json:"prompt"`
	Model        string `json:"model,omitempty"`
	SystemPrompt string `json:"systemPrompt,omitempty"`
	MaxTurns     int    `json:"maxTurns,omitempty"`
	TimeoutMs    int    `json:"timeoutMs,omitempty"`
	Priority     string `json:"priority,omitempty"`
}

type submitResponse struct {
	Text         string `json:"text"`
	Model        string `json:"model,omitempty"`
	InputTokens  int    `json:"inputTokens,omitempty"`
	OutputTokens int    `json:"outputTokens,omitempty"`
	Error        string `json:"error,omitempty"`
}

func runSubmit(output io.Writer, args []string) error {
	flags := flag.NewFlagSet("submit", flag.ContinueOnError)
	prompt := flags.String("prompt", "", "prompt text to submit")
	model := flags.String("model", "", "model override")
	priority := flags.String("priority", "", "high|normal|low")
	daemonURL := flags.String("daemon-url", "", "daemon base URL, default http://127.0.0.1:<configured port, 9100 if unset>")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*prompt) == "" {
		return fmt.Errorf("-prompt is required")
	}

	base := resolveDaemonURL(*daemonURL)
	body, err := json.Marshal(submitRequest{Prompt: *prompt, Model: *model, Priority: *priority})
	if err != nil {
		return err
	}

	request, err := http.NewRequest(http.MethodPost, base+"/v1/generate", bytes.NewReader(body))
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", "application/json")
	setAuthHeader(request)

	client := &http.Client{Timeout: 3 * time.Minute}
	response, err := client.Do(request)
	if err != nil {
		return fmt.Errorf("cannot reach daemon at %s: %w", base, err)
	}
	defer response.Body.Close()

	var payload submitResponse
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return fmt.Errorf("invalid response from daemon: %w", err)
	}
	if payload.Error != "" {
		return fmt.Errorf("%s", payload.Error)
	}
	fmt.Fprintln(output, payload.Text)
	return nil
}

func resolveDaemonURL(flagValue string) string {
	if trimmed := strings.TrimSpace(flagValue); trimmed != "" {
		return strings.TrimRight(trimmed, "/")
	}
	cfg, err := config.Load("")
	port := 9100
	if err == nil {
		port = cfg.Port
	}
	return fmt.Sprintf("http://127.0.0.1:%d", port)
}

func setAuthHeader(request *http.Request) {
	cfg, err := config.Load("")
	if err != nil || strings.TrimSpace(cfg.ProxyAPIKey) == "" {
		return
	}
	request.Header.Set("X-Api-Key", cfg.ProxyAPIKey)
}
