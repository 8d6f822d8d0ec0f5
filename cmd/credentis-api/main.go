package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/credentis/credentis/pkg/eventbus"
	"github.com/credentis/credentis/pkg/log"
	"github.com/credentis/credentis/pkg/otelhelper"
	"github.com/credentis/credentis/pkg/persistence/sqlite"
)

const defaultPort = 8080

func main() {
	logger := log.WithModule("api")

	cmd := &cli.Command{
		Name:                  "credentis-api",
		Usage:                 "Run the Credentis workflow and trust API server",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "SQLite database path or DSN for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "agent-url",
				Usage:   "Base URL of the credential issuance agent",
				Sources: cli.EnvVars("AGENT_URL"),
			},
			&cli.StringFlag{
				Name:    "agent-api-key",
				Usage:   "API key for the credential issuance agent",
				Sources: cli.EnvVars("AGENT_API_KEY"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Optional redis URL for the trust score cache",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format (text, json)",
				Value:   "text",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"), log.Format(command.String("log-format")))

			logger.InfoContext(ctx, "Initializing Credentis API")

			tracerProvider, err := otelhelper.Setup(ctx, "credentis-api")
			if err != nil {
				logger.ErrorContext(ctx, "Failed to initialize tracing", "error", err)
			} else {
				defer func() {
					if err := tracerProvider.Shutdown(context.Background()); err != nil {
						logger.Error("Failed to shut down tracer provider", "error", err)
					}
				}()
			}

			store, err := sqlite.NewStore(command.String("database-url"), logger)
			if err != nil {
				return err
			}

			defer func() {
				if err := store.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus := eventbus.NewGoChannelEventBus(logger)
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			api := NewAPI(logger, store, eventBus, Config{
				Port:        command.Int("port"),
				AgentURL:    command.String("agent-url"),
				AgentAPIKey: command.String("agent-api-key"),
				RedisURL:    command.String("redis-url"),
			})
			defer api.Close()

			return api.Start(ctx)
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
