// Package pipeline sequences the triage stages: rules, advisory (with
// fallback), monotonic merge, confidence scoring and conservative
// escalation. Evaluate is fail-safe: once input validation has passed, it
// always returns a fully valid response, whatever breaks internally.
package pipeline

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/decisio-ai/decisio/internal/advisor"
	"github.com/decisio-ai/decisio/internal/metrics"
	"github.com/decisio-ai/decisio/internal/rules"
	"github.com/decisio-ai/decisio/internal/triage"
)

const (
	// lowConfidenceThreshold triggers the one-shot conservative escalation.
	lowConfidenceThreshold = 0.4

	// terminalConfidence is the fixed confidence of rule-determined
	// responses; rules do not estimate churn.
	terminalConfidence = 0.9

	reviewMarker = "[Low confidence - review required] "

	emergencyAction = "System error occurred. Manual review required immediately."
)

// Pipeline evaluates requests. It holds only injected, read-only components
// and is safe for arbitrarily many concurrent evaluations.
type Pipeline struct {
	rules   *rules.Engine
	advisor advisor.Advisor
	log     zerolog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// New constructs a pipeline. metrics may be nil; tracer may be nil for a
// no-op tracer.
func New(engine *rules.Engine, adv advisor.Advisor, log zerolog.Logger, m *metrics.Metrics, tracer trace.Tracer) *Pipeline {
	if tracer == nil {
		tracer = trace.NewNoopTracerProvider().Tracer("decisio")
	}
	return &Pipeline{
		rules:   engine,
		advisor: adv,
		log:     log,
		metrics: m,
		tracer:  tracer,
	}
}

// Evaluate produces the triage decision for one request. It never returns
// an error: advisory failures fall back to the tier policy and internal
// faults are trapped into the emergency response.
func (p *Pipeline) Evaluate(ctx context.Context, req *triage.Request) (resp *triage.Response) {
	start := time.Now()
	terminalEval := false

	ctx, span := p.tracer.Start(ctx, "decisio.evaluate")
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			p.log.Error().Interface("panic", r).Msg("pipeline fault trapped, emitting emergency response")
			p.metrics.RecordEmergency()
			resp = emergencyResponse()
		}

		span.SetAttributes(
			attribute.String("decisio.decision", string(resp.Decision)),
			attribute.String("decisio.priority", string(resp.Priority)),
			attribute.Float64("decisio.confidence", resp.Confidence),
		)
		p.metrics.RecordDecision(string(resp.Decision), string(req.Tier), terminalEval)
		p.metrics.RecordEvaluation(terminalEval, time.Since(start).Seconds())
	}()

	outcomes, terminal := p.rules.Evaluate(req)

	// A terminal rule fully determines the response; the advisory
	// capability is never invoked.
	if terminal != nil {
		terminalEval = true
		p.log.Info().Str("reason", terminal.Reason).Msg("terminal rule matched")
		return &triage.Response{
			Decision:          terminal.Decision,
			Priority:          terminal.Priority,
			ChurnRisk:         0.0,
			Confidence:        terminalConfidence,
			RecommendedAction: terminal.Reason,
		}
	}

	advisoryStart := time.Now()
	outcome, err := p.advisor.Advise(ctx, req)
	advisoryFailed := err != nil
	p.metrics.RecordAdvisory(advisoryFailed, time.Since(advisoryStart).Seconds())
	if advisoryFailed {
		p.log.Warn().Str("tier", string(req.Tier)).Msg("advisory unavailable, using fallback policy")
		outcome = advisor.Fallback(req.Tier)
	}

	decision, priority, upgradeReason := Merge(outcome, outcomes)
	if upgradeReason != "" {
		p.log.Info().Str("reason", upgradeReason).Msg("rule floor upgraded advisory decision")
	}

	// Confidence reads the advisory assessment as given; rule floors raise
	// the response, not the scorer's view of what the capability said.
	confidence := Score(req, outcomes, outcome, advisoryFailed)

	action := outcome.RecommendedAction
	if confidence < lowConfidenceThreshold {
		decision, priority = escalateOneLevel(decision, priority)
		action = reviewMarker + action
		p.log.Warn().Float64("confidence", confidence).Msg("low confidence, escalated one level")
	}

	return &triage.Response{
		Decision:          decision,
		Priority:          priority,
		ChurnRisk:         outcome.ChurnRisk,
		Confidence:        confidence,
		RecommendedAction: action,
	}
}

// escalateOneLevel applies the one-shot conservative correction: when
// uncertain, over-respond rather than under-respond. Already-escalated
// decisions are left unchanged.
func escalateOneLevel(d triage.Decision, p triage.Priority) (triage.Decision, triage.Priority) {
	switch d {
	case triage.DecisionIgnore:
		return triage.DecisionStandardResponse, triage.PriorityMedium
	case triage.DecisionStandardResponse:
		return triage.DecisionPriorityResponse, triage.PriorityHigh
	}
	return d, p
}

// emergencyResponse is the conservative floor below which quality never
// degrades, whatever failed internally.
func emergencyResponse() *triage.Response {
	return &triage.Response{
		Decision:          triage.DecisionPriorityResponse,
		Priority:          triage.PriorityHigh,
		ChurnRisk:         0.5,
		Confidence:        0.2,
		RecommendedAction: emergencyAction,
	}
}
