// Package mockadvisor runs a lightweight OpenAI-compatible mock of the
// advisory capability for tests and local development. Its behavior is
// switchable per instance so failure modes (delays, malformed payloads,
// upstream errors) can be exercised deterministically.
package mockadvisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// Mode selects what the mock returns from /chat/completions.
type Mode string

const (
	// ModeOK returns a well-formed triage JSON payload.
	ModeOK Mode = "ok"
	// ModeFenced wraps the payload in a markdown code fence, as some models do.
	ModeFenced Mode = "fenced"
	// ModeMalformed returns content that is not JSON at all.
	ModeMalformed Mode = "malformed"
	// ModeBadEnum returns JSON with an unknown decision value.
	ModeBadEnum Mode = "bad_enum"
	// ModeError returns HTTP 500.
	ModeError Mode = "error"
)

// Options configure the mock.
type Options struct {
	Mode  Mode
	Delay time.Duration
	// Payload overrides the canned triage JSON when set.
	Payload string
}

const cannedPayload = `{
  "decision": "standard_response",
  "priority": "medium",
  "churn_risk": 0.2,
  "recommended_action": "Respond with the standard workflow."
}`

// Start launches the mock on addr ("127.0.0.1:0" picks a free port). It
// returns a shutdown function and the base URL to point an advisor at.
func Start(addr string, opts Options) (func(context.Context) error, string, error) {
	if addr == "" {
		addr = "127.0.0.1:0"
	}
	if opts.Mode == "" {
		opts.Mode = ModeOK
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, "", fmt.Errorf("listen on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if opts.Delay > 0 {
			select {
			case <-time.After(opts.Delay):
			case <-r.Context().Done():
				return
			}
		}
		writeCompletion(w, opts)
	})

	srv := &http.Server{Handler: mux}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = err
		}
	}()

	return srv.Shutdown, "http://" + ln.Addr().String(), nil
}

func writeCompletion(w http.ResponseWriter, opts Options) {
	content := opts.Payload
	if content == "" {
		content = cannedPayload
	}

	switch opts.Mode {
	case ModeError:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "mock upstream failure", "type": "server_error"},
		})
		return
	case ModeFenced:
		content = "```json\n" + content + "\n```"
	case ModeMalformed:
		content = "Sorry, I cannot produce JSON right now."
	case ModeBadEnum:
		content = `{"decision": "escalate_hard", "priority": "medium", "churn_risk": 0.2, "recommended_action": "n/a"}`
	}

	resp := map[string]any{
		"id":      "chatcmpl-mock",
		"object":  "chat.completion",
		"created": time.Now().Unix(),
		"model":   "mock-llm",
		"choices": []map[string]any{
			{
				"index": 0,
				"message": map[string]string{
					"role":    "assistant",
					"content": content,
				},
				"finish_reason": "stop",
			},
		},
		"usage": map[string]int{
			"prompt_tokens":     5,
			"completion_tokens": 5,
			"total_tokens":      10,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
