package core

import (
	"encoding/json"
	"strings"
)

const maxTurnsPhrase = "Reached max turns"

// ParseOutput converts a child's raw stdout into a normalised ParsedOutput.
// It is pure and total: malformed input degrades to plain text rather than
// producing an error.
func ParseOutput(raw string) ParsedOutput {
	trimmed := strings.TrimSpace(raw)

	var decoded any
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
		return ParsedOutput{Text: trimmed}
	}

	decoded = selectSequenceElement(decoded)

	if obj, ok := decoded.(map[string]any); ok {
		if subtype, _ := obj["subtype"].(string); subtype == "error_max_turns" {
			return ParsedOutput{MaxTurnsExhausted: true}
		}
	}

	out := ParsedOutput{
		Text:  extractText(decoded, trimmed),
		Model: extractModel(decoded),
	}
	out.InputTokens, out.OutputTokens = extractTokens(decoded)
	if strings.Contains(out.Text, maxTurnsPhrase) {
		out.MaxTurnsExhausted = true
	}
	return out
}

// selectSequenceElement replaces a JSON array with the element the parser
// should treat as "the" response: the last result-typed element, else the
// last assistant-typed element, else the first element. Non-array values
// pass through unchanged.
func selectSequenceElement(decoded any) any {
	seq, ok := decoded.([]any)
	if !ok {
		return decoded
	}
	if len(seq) == 0 {
		return decoded
	}

	var lastResult, lastAssistant any
	for _, elem := range seq {
		obj, ok := elem.(map[string]any)
		if !ok {
			continue
		}
		switch obj["type"] {
		case "result":
			lastResult = elem
		case "assistant":
			lastAssistant = elem
		}
	}
	if lastResult != nil {
		return lastResult
	}
	if lastAssistant != nil {
		return lastAssistant
	}
	return seq[0]
}

func extractText(decoded any, fallback string) string {
	switch v := decoded.(type) {
	case string:
		return v
	case map[string]any:
		if result, exists := v["result"]; exists {
			if s, ok := result.(string); ok {
				return s
			}
			if serialized, err := json.Marshal(result); err == nil {
				return string(serialized)
			}
		}
		if text, ok := v["text"].(string); ok {
			return text
		}
	}
	return fallback
}

func extractModel(decoded any) string {
	obj, ok := decoded.(map[string]any)
	if !ok {
		return ""
	}
	model, _ := obj["model"].(string)
	return model
}

func extractTokens(decoded any) (input, output int) {
	obj, ok := decoded.(map[string]any)
	if !ok {
		return 0, 0
	}
	input = firstInt(obj, "input_tokens", "inputTokens")
	output = firstInt(obj, "output_tokens", "outputTokens")
	return input, output
}

// firstInt prefers the snake_case key over the camelCase alternative when
// both are present.
func firstInt(obj map[string]any, snake, camel string) int {
	if v, ok := obj[snake]; ok {
		if n, ok := toInt(v); ok {
			return n
		}
	}
	if v, ok := obj[camel]; ok {
		if n, ok := toInt(v); ok {
			return n
		}
	}
	return 0
}

func toInt(v any) (int, bool) {
	f, ok := v.(float64)
	if !ok {
		return 0, false
	}
	return int(f), true
}
