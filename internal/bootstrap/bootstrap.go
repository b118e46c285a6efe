package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/kirillkom/policy-navigator/internal/config"
	"github.com/kirillkom/policy-navigator/internal/core/normalize"
	"github.com/kirillkom/policy-navigator/internal/core/ports"
	"github.com/kirillkom/policy-navigator/internal/core/usecase"
	"github.com/kirillkom/policy-navigator/internal/infrastructure/gateway/pipeline"
	"github.com/kirillkom/policy-navigator/internal/infrastructure/queue/nats"
	"github.com/kirillkom/policy-navigator/internal/infrastructure/resilience"
	"github.com/kirillkom/policy-navigator/internal/infrastructure/session/memory"
	"github.com/kirillkom/policy-navigator/internal/observability/metrics"
)

type App struct {
	Config  config.Config
	Metrics *metrics.ServerMetrics

	DocumentUC *usecase.UploadIndexUseCase
	AskUC      *usecase.AskUseCase
	SearchUC   *usecase.SearchUseCase

	closeFn func()
}

func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	sessions := memory.New(cfg.SessionTTL())

	var executor *resilience.Executor
	policy := resilience.Policy{
		MaxAttempts:    cfg.GatewayRetryMaxAttempts,
		BreakerEnabled: cfg.GatewayBreakerEnabled,
	}
	if !policy.Passthrough() {
		executor = resilience.NewExecutor(policy)
		logger.Info("gateway_hardening_enabled",
			"max_attempts", cfg.GatewayRetryMaxAttempts,
			"breaker", cfg.GatewayBreakerEnabled,
		)
	}

	gateway := pipeline.New(cfg.PipelineBaseURL, pipeline.Options{
		LLMID:    cfg.PipelineLLMID,
		Timeout:  cfg.PipelineTimeout(),
		Executor: executor,
	})

	var events ports.EventPublisher
	closeFn := func() {}
	if cfg.NATSURL != "" {
		publisher, err := nats.New(cfg.NATSURL, cfg.NATSSubject)
		if err != nil {
			return nil, fmt.Errorf("init event publisher: %w", err)
		}
		events = publisher
		closeFn = publisher.Close
		logger.Info("event_publisher_enabled", "subject", cfg.NATSSubject)
	}

	normalizer := normalize.New(cfg.AnswerFieldList()...)

	return &App{
		Config:  cfg,
		Metrics: metrics.NewServerMetrics("api"),

		DocumentUC: usecase.NewUploadIndexUseCase(gateway, sessions, events, cfg.DocIDPrefix),
		AskUC:      usecase.NewAskUseCase(gateway, sessions, normalizer),
		SearchUC:   usecase.NewSearchUseCase(gateway, cfg.SearchTopK),

		closeFn: closeFn,
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
