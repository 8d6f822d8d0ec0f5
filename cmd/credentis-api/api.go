// Package main provides the Credentis API server implementation.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/redis/go-redis/v9"

	consentactions "github.com/credentis/credentis/pkg/actions/consent"
	credentialactions "github.com/credentis/credentis/pkg/actions/credential"
	"github.com/credentis/credentis/pkg/actions/external"
	"github.com/credentis/credentis/pkg/actions/finance"
	trustactions "github.com/credentis/credentis/pkg/actions/trust"
	"github.com/credentis/credentis/pkg/consent"
	"github.com/credentis/credentis/pkg/credential"
	"github.com/credentis/credentis/pkg/eventbus"
	"github.com/credentis/credentis/pkg/persistence"
	"github.com/credentis/credentis/pkg/registry"
	"github.com/credentis/credentis/pkg/trigger"
	"github.com/credentis/credentis/pkg/trust"
	"github.com/credentis/credentis/pkg/web"
	"github.com/credentis/credentis/pkg/workflow"
)

// Config carries the resolved CLI/environment configuration for the server.
type Config struct {
	Port        int
	AgentURL    string
	AgentAPIKey string
	RedisURL    string
}

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	config      Config

	triggers *trigger.Service
}

func NewAPI(
	logger *slog.Logger,
	store persistence.Persistence,
	eventBus eventbus.EventBus,
	config Config,
) *API {
	return &API{
		logger:      logger,
		persistence: store,
		eventBus:    eventBus,
		config:      config,
	}
}

// App wires every service and returns the configured fiber application.
func (a *API) App(ctx context.Context) (*fiber.App, error) {
	consentService := consent.NewService(a.persistence, a.logger)
	trustRepo := trust.NewRepository(a.persistence, a.logger)
	trustEngine := trust.NewEngine(a.persistence, a.scoreCache(), a.logger)
	issuer := credential.NewAgentClient(a.config.AgentURL, a.config.AgentAPIKey, a.logger)

	reg := buildRegistry(a.logger, consentService, trustRepo, issuer)

	executor := workflow.NewExecutor(a.persistence, a.persistence, reg, a.eventBus, a.logger)
	workflowService := workflow.NewService(a.persistence, reg, a.logger)

	a.triggers = trigger.NewService(a.persistence, executor, a.eventBus, a.logger)
	if err := a.triggers.Initialize(ctx); err != nil {
		return nil, err
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	handlers := web.NewAPIHandlers(
		workflowService,
		executor,
		a.triggers,
		trustEngine,
		trustRepo,
		consentService,
		a.persistence,
		validate,
	)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Credentis API")
	})

	web.RegisterRoutes(app, handlers)

	return app, nil
}

func (a *API) Start(ctx context.Context) error {
	app, err := a.App(ctx)
	if err != nil {
		return err
	}

	return app.Listen(":" + strconv.Itoa(a.config.Port))
}

// Close stops the trigger scheduler and waits for in-flight cron jobs.
func (a *API) Close() {
	if a.triggers != nil {
		a.triggers.Close()
	}
}

// scoreCache prefers redis when configured and falls back to the in-memory
// cache otherwise.
func (a *API) scoreCache() trust.ScoreCache {
	if a.config.RedisURL == "" {
		return trust.NewMemoryCache()
	}

	opts, err := redis.ParseURL(a.config.RedisURL)
	if err != nil {
		a.logger.Error("Invalid redis URL, using in-memory score cache", "error", err)

		return trust.NewMemoryCache()
	}

	return trust.NewRedisCache(redis.NewClient(opts))
}

// buildRegistry registers every built-in action. Registration happens once
// here; the registry is read-only afterwards.
func buildRegistry(
	logger *slog.Logger,
	consentService *consent.Service,
	trustRepo *trust.Repository,
	issuer credential.Issuer,
) *registry.Registry {
	reg := registry.New(logger)

	httpClient := &http.Client{Timeout: 30 * time.Second}

	reg.Register(finance.ActionCalculateInvoice, finance.NewCalculateInvoiceAction().Execute)
	reg.Register(credentialactions.ActionIssueOffer, credentialactions.NewIssueOfferAction(issuer).Execute)
	reg.Register(external.ActionFetch, external.NewFetchAction(httpClient).Execute)
	reg.Register(external.ActionEcoCashPayment, external.NewEcoCashPaymentAction(httpClient).Execute)
	reg.Register(trustactions.ActionUpdateScore, trustactions.NewUpdateScoreAction(trustRepo).Execute)
	reg.Register(trustactions.ActionGetScore, trustactions.NewGetScoreAction(trustRepo).Execute)
	reg.Register(trustactions.ActionCalculateCreditScore, trustactions.NewCalculateCreditScoreAction().Execute)
	reg.Register(consentactions.ActionCapture, consentactions.NewCaptureAction(consentService).Execute)
	reg.Register(consentactions.ActionVerify, consentactions.NewVerifyAction(consentService).Execute)
	reg.Register(consentactions.ActionRevoke, consentactions.NewRevokeAction(consentService).Execute)

	logger.Info("Registered actions", "actions", reg.List())

	return reg
}
