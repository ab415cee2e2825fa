// Package main provides the migration status API server.
package main

import (
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/tallyfy/migrator/pkg/checkpoint"
	"github.com/tallyfy/migrator/pkg/services"
	"github.com/tallyfy/migrator/pkg/web"
)

type API struct {
	logger *slog.Logger
	store  checkpoint.Store
}

func NewAPI(logger *slog.Logger, store checkpoint.Store) *API {
	return &API{
		logger: logger,
		store:  store,
	}
}

func (a *API) App() *fiber.App {
	runService := services.NewRuns(a.store)

	handlers := web.NewAPIHandlers(runService)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Tallyfy Migrator API")
	})

	r := app.Group("/runs")
	r.Get("/", handlers.GetRuns)
	r.Get("/:id", handlers.GetRun)
	r.Get("/:id/report", handlers.GetRunReport)
	r.Get("/:id/mappings", handlers.GetRunMappings)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}
