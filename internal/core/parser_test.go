package core

import "testing"

func TestParseOutput_PlainText(t *testing.T) {
	out := ParseOutput("  just plain output  ")
	if out.Text != "just plain output" {
		t.Fatalf("expected trimmed plain text, got %q", out.Text)
	}
}

func TestParseOutput_JSONString(t *testing.T) {
	out := ParseOutput(`"hi"`)
	if out.Text != "hi" {
		t.Fatalf("expected %q, got %q", "hi", out.Text)
	}
}

func TestParseOutput_ObjectWithResultString(t *testing.T) {
	out := ParseOutput(`{"result":"hi"}`)
	if out.Text != "hi" {
		t.Fatalf("expected %q, got %q", "hi", out.Text)
	}
}

func TestParseOutput_ObjectWithResultObjectSerializes(t *testing.T) {
	out := ParseOutput(`{"result":{"answer":42}}`)
	if out.Text != `{"answer":42}` {
		t.Fatalf("expected serialized result object, got %q", out.Text)
	}
}

func TestParseOutput_ObjectWithText(t *testing.T) {
	out := ParseOutput(`{"text":"hi"}`)
	if out.Text != "hi" {
		t.Fatalf("expected %q, got %q", "hi", out.Text)
	}
}

func TestParseOutput_TokensPreferSnakeCase(t *testing.T) {
	out := ParseOutput(`{"result":"ok","input_tokens":10,"output_tokens":5,"inputTokens":99,"outputTokens":99}`)
	if out.InputTokens != 10 || out.OutputTokens != 5 {
		t.Fatalf("expected snake_case tokens to win, got input=%d output=%d", out.InputTokens, out.OutputTokens)
	}
}

func TestParseOutput_TokensFallBackToCamelCase(t *testing.T) {
	out := ParseOutput(`{"result":"ok","inputTokens":7,"outputTokens":2}`)
	if out.InputTokens != 7 || out.OutputTokens != 2 {
		t.Fatalf("expected camelCase tokens, got input=%d output=%d", out.InputTokens, out.OutputTokens)
	}
}

func TestParseOutput_Model(t *testing.T) {
	out := ParseOutput(`{"result":"ok","model":"sonnet"}`)
	if out.Model != "sonnet" {
		t.Fatalf("expected model %q, got %q", "sonnet", out.Model)
	}
}

func TestParseOutput_SequenceTakesLastResult(t *testing.T) {
	out := ParseOutput(`[{"type":"assistant","text":"partial"},{"type":"result","result":"first final"},{"type":"result","result":"last final"}]`)
	if out.Text != "last final" {
		t.Fatalf("expected last result element, got %q", out.Text)
	}
}

func TestParseOutput_SequenceFallsBackToLastAssistant(t *testing.T) {
	out := ParseOutput(`[{"type":"assistant","text":"first"},{"type":"assistant","text":"second"}]`)
	if out.Text != "second" {
		t.Fatalf("expected last assistant element, got %q", out.Text)
	}
}

func TestParseOutput_SequenceFallsBackToFirstElement(t *testing.T) {
	out := ParseOutput(`[{"type":"system","text":"ignored"},{"type":"other","text":"also ignored"}]`)
	if out.Text != "ignored" {
		t.Fatalf("expected the first element when no result/assistant typed element exists, got %q", out.Text)
	}
}

func TestParseOutput_MaxTurnsSubtype(t *testing.T) {
	out := ParseOutput(`{"subtype":"error_max_turns","result":"should be ignored"}`)
	if !out.MaxTurnsExhausted {
		t.Fatalf("expected MaxTurnsExhausted=true")
	}
	if out.Text != "" {
		t.Fatalf("expected empty text when subtype signals max-turns, got %q", out.Text)
	}
}

func TestParseOutput_MaxTurnsPhraseInText(t *testing.T) {
	out := ParseOutput(`{"result":"Reached max turns without finishing"}`)
	if !out.MaxTurnsExhausted {
		t.Fatalf("expected MaxTurnsExhausted=true when the literal phrase appears in extracted text")
	}
}

func TestParseOutput_MalformedJSONDegradesToPlainText(t *testing.T) {
	out := ParseOutput(`{not valid json`)
	if out.Text != `{not valid json` {
		t.Fatalf("expected malformed input to degrade to raw text, got %q", out.Text)
	}
	if out.MaxTurnsExhausted {
		t.Fatalf("did not expect MaxTurnsExhausted for malformed input")
	}
}

func TestParseOutput_RoundTrip(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"text field", `{"text":"hi"}`, "hi"},
		{"result field", `{"result":"hi"}`, "hi"},
		{"bare string", `"hi"`, "hi"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseOutput(tc.raw).Text; got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
