package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/decisio-ai/decisio/internal/triage"
)

const (
	defaultTimeout          = 10 * time.Second
	defaultMaxResponseBytes = 1 << 20
	defaultModel            = "gpt-4.1-mini"

	advisoryTemperature = 0.2
	advisoryMaxTokens   = 500
)

// openAIAdvisor calls an OpenAI-compatible chat completions endpoint and
// parses the structured JSON it is prompted to return.
type openAIAdvisor struct {
	baseURL          string
	apiKey           string
	model            string
	timeout          time.Duration
	maxResponseBytes int64
	client           *http.Client
	log              zerolog.Logger
}

// NewOpenAI creates an advisor backed by an OpenAI-compatible API.
func NewOpenAI(baseURL, apiKey, model string, timeout time.Duration, maxResponseBytes int64, log zerolog.Logger) Advisor {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = defaultModel
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if maxResponseBytes <= 0 {
		maxResponseBytes = defaultMaxResponseBytes
	}

	return &openAIAdvisor{
		baseURL:          baseURL,
		apiKey:           apiKey,
		model:            model,
		timeout:          timeout,
		maxResponseBytes: maxResponseBytes,
		client:           &http.Client{Timeout: timeout},
		log:              log,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Advise builds the deterministic query, calls the capability and validates
// its output. Every failure path logs its cause and returns ErrUnavailable;
// the cause is intentionally not recoverable by callers.
func (a *openAIAdvisor) Advise(ctx context.Context, req *triage.Request) (*triage.AdvisoryOutcome, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	raw, err := a.call(ctx, buildAdvisoryPrompt(req))
	if err != nil {
		a.log.Warn().Err(err).Msg("advisory call failed")
		return nil, ErrUnavailable
	}

	outcome, err := ParseAdvisory(raw)
	if err != nil {
		a.log.Warn().Err(err).Msg("advisory output rejected")
		return nil, ErrUnavailable
	}
	return outcome, nil
}

func (a *openAIAdvisor) call(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       a.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: advisoryTemperature,
		MaxTokens:   advisoryMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal advisory request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create advisory request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if a.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+a.apiKey)
	}

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("call advisory endpoint: %w", err)
	}
	defer resp.Body.Close()

	limited := io.LimitReader(resp.Body, a.maxResponseBytes+1)
	respBody, err := io.ReadAll(limited)
	if err != nil {
		return "", fmt.Errorf("read advisory response: %w", err)
	}
	if int64(len(respBody)) > a.maxResponseBytes {
		return "", fmt.Errorf("advisory response exceeded limit (%d bytes)", a.maxResponseBytes)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("advisory endpoint returned status %d", resp.StatusCode)
	}

	var chat chatResponse
	if err := json.Unmarshal(respBody, &chat); err != nil {
		return "", fmt.Errorf("decode advisory response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return "", fmt.Errorf("advisory response had no choices")
	}
	return chat.Choices[0].Message.Content, nil
}

// buildAdvisoryPrompt constructs the fixed query for the capability. The
// same request always produces the same prompt.
func buildAdvisoryPrompt(req *triage.Request) string {
	historyContext := ""
	if len(req.History) > 0 {
		historyContext = fmt.Sprintf("\n- Previous interactions: %d messages", len(req.History))
	}

	return fmt.Sprintf(`You are a customer service decision AI. Analyze the message and return ONLY valid JSON.

Customer Context:
- Plan: %s
- Channel: %s%s

Message: %q

Return this exact JSON structure:
{
  "decision": "ignore | standard_response | priority_response | immediate_escalation",
  "priority": "low | medium | high | critical",
  "churn_risk": <float 0.0-1.0>,
  "recommended_action": "<concise action for support team>"
}

Rules:
- Use "immediate_escalation" for urgent, angry, or legal threats
- Use "priority_response" for paying customers with issues
- Use "standard_response" for normal questions/feedback
- Use "ignore" only for spam/noise (rare)
- churn_risk: 0.0 = happy, 1.0 = about to leave
- recommended_action: 1-2 sentences max

Return ONLY the JSON, no markdown, no explanation.`, req.Tier, req.Channel, historyContext, req.Message)
}
