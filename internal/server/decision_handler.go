package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/decisio-ai/decisio/internal/audit"
	"github.com/decisio-ai/decisio/internal/triage"
)

// decisionRequest is the wire shape of POST /v1/decision. Tier and channel
// arrive as strings and are validated against the enumerations here, before
// the pipeline runs.
type decisionRequest struct {
	Message string   `json:"message"`
	Tier    string   `json:"tier"`
	Channel string   `json:"channel"`
	History []string `json:"history"`
}

func (s *Server) handleDecision(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use POST.")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxRequestBodyBytes)

	var body decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "body_too_large", "Request body exceeds the size limit.")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_json", "Request body is not valid JSON.")
		return
	}

	tier, err := triage.ParseTier(body.Tier)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid_request", err.Error())
		return
	}
	channel, err := triage.ParseChannel(body.Channel)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid_request", err.Error())
		return
	}

	// The account's tier is authoritative when the request omits one; a
	// request may not claim a higher tier than its key.
	acct, ok := accountFromContext(r.Context())
	if !ok {
		// withAuth always runs first; reaching here is a wiring bug.
		writeError(w, http.StatusInternalServerError, "internal_error", "account missing from request context")
		return
	}
	if body.Tier == "" {
		tier = acct.Tier
	} else if triageRank(tier) > triageRank(acct.Tier) {
		writeError(w, http.StatusForbidden, "tier_mismatch", "Requested tier exceeds the account's subscription.")
		return
	}

	req := &triage.Request{
		Message: body.Message,
		Tier:    tier,
		Channel: channel,
		History: body.History,
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid_request", err.Error())
		return
	}

	start := time.Now()
	resp := s.pipeline.Evaluate(r.Context(), req)

	// Client gone: abandon silently, no partial response.
	if r.Context().Err() != nil {
		return
	}

	s.audit.Emit(&audit.Event{
		ID:         requestIDFromContext(r.Context()),
		Time:       start.UTC(),
		AccountID:  acct.ID,
		Tier:       string(req.Tier),
		Channel:    string(req.Channel),
		MessageLen: len(req.Message),
		Decision:   string(resp.Decision),
		Priority:   string(resp.Priority),
		ChurnRisk:  resp.ChurnRisk,
		Confidence: resp.Confidence,
		DurationMS: time.Since(start).Milliseconds(),
	})

	writeJSON(w, http.StatusOK, resp)
}

// triageRank orders tiers for the claim check above. Not part of the
// decision core's orders; tiers have no severity semantics there.
func triageRank(t triage.Tier) int {
	switch t {
	case triage.TierFree:
		return 0
	case triage.TierPro:
		return 1
	case triage.TierEnterprise:
		return 2
	}
	return 0
}
