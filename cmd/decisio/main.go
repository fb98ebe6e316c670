package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/decisio-ai/decisio/internal/advisor"
	"github.com/decisio-ai/decisio/internal/audit"
	"github.com/decisio-ai/decisio/internal/auth"
	"github.com/decisio-ai/decisio/internal/config"
	"github.com/decisio-ai/decisio/internal/metrics"
	"github.com/decisio-ai/decisio/internal/pipeline"
	"github.com/decisio-ai/decisio/internal/ratelimit"
	"github.com/decisio-ai/decisio/internal/rules"
	"github.com/decisio-ai/decisio/internal/server"
	"github.com/decisio-ai/decisio/internal/telemetry"
	"github.com/decisio-ai/decisio/internal/triage"
)

func main() {
	addrFlag := flag.String("addr", "", "HTTP listen address (overrides config)")
	configPath := flag.String("config", "decisio.yaml", "Path to Decisio config file")
	flag.Parse()

	bootLog := zerolog.New(os.Stderr)
	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLog.Fatal().Err(err).Msg("failed to load config")
	}
	if err := config.Validate(cfg); err != nil {
		bootLog.Fatal().Err(err).Msg("invalid config")
	}

	log := newLogger(cfg.Logging)

	addr := cfg.Server.Addr
	if *addrFlag != "" {
		addr = *addrFlag
	}

	authz, err := auth.NewFromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build auth")
	}

	limiter := newLimiter(cfg, log)
	adv := newAdvisor(cfg, log)

	keywords := rules.DefaultKeywords().Merge(rules.KeywordSets{
		Legal:  cfg.Rules.ExtraLegalKeywords,
		Threat: cfg.Rules.ExtraThreatKeywords,
		Spam:   cfg.Rules.ExtraSpamKeywords,
	})
	engine := rules.NewEngine(keywords)

	ctx := context.Background()
	tel, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:  cfg.Telemetry.Enabled,
		Endpoint: cfg.Telemetry.Endpoint,
		Protocol: cfg.Telemetry.Protocol,
		Service:  "decisio",
		Version:  server.Version,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up telemetry")
	}
	defer tel.Shutdown(ctx)

	m := metrics.New()
	pipe := pipeline.New(engine, adv, log, m, tel.Tracer())

	auditEmitter := newAuditEmitter(cfg, log)

	srv := server.New(cfg, authz, limiter, pipe, auditEmitter, m, log)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("starting decisio")
		errCh <- srv.Start(addr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}

func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	if cfg.JSON {
		return zerolog.New(os.Stdout).Level(level).With().Timestamp().Str("service", "decisio").Logger()
	}
	writer := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

func newLimiter(cfg *config.Config, log zerolog.Logger) ratelimit.Limiter {
	limits := ratelimit.LimitsFromConfig(cfg.Limits)
	if cfg.Limits.Backend == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Limits.Redis.Addr,
			Password: cfg.Limits.Redis.Password,
			DB:       cfg.Limits.Redis.DB,
		})
		return ratelimit.NewRedis(client, limits, log)
	}
	return ratelimit.NewMemory(limits)
}

func newAdvisor(cfg *config.Config, log zerolog.Logger) advisor.Advisor {
	if cfg.Advisor.Type == "fake" {
		log.Warn().Msg("using fake advisor; decisions will not reflect real analysis")
		return advisor.NewFake(&triage.AdvisoryOutcome{
			Decision:          triage.DecisionStandardResponse,
			Priority:          triage.PriorityMedium,
			ChurnRisk:         0.2,
			RecommendedAction: "Respond with the standard workflow.",
		})
	}

	apiKey := os.Getenv(cfg.Advisor.APIKeyEnv)
	if apiKey == "" {
		log.Warn().Str("env", cfg.Advisor.APIKeyEnv).Msg("advisor API key not set; advisory calls will fail over to the fallback policy")
	}
	return advisor.NewOpenAI(cfg.Advisor.BaseURL, apiKey, cfg.Advisor.Model, cfg.AdvisorTimeout(), cfg.Advisor.MaxResponseBytes, log)
}

func newAuditEmitter(cfg *config.Config, log zerolog.Logger) *audit.Emitter {
	if !cfg.Audit.Enabled {
		return nil
	}

	var sinks []audit.Sink
	if cfg.Audit.FilePath != "" {
		sink, err := audit.NewFileSink(cfg.Audit.FilePath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open audit file sink")
		}
		sinks = append(sinks, sink)
	}
	if cfg.Audit.WebhookURL != "" {
		sink, err := audit.NewWebhookSink(cfg.Audit.WebhookURL, 5*time.Second)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to build audit webhook sink")
		}
		sinks = append(sinks, sink)
	}

	return audit.NewEmitter(audit.EmitterConfig{
		QueueSize: cfg.Audit.QueueSize,
		Workers:   cfg.Audit.Workers,
	}, sinks, log)
}
