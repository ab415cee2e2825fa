package web

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/tallyfy/migrator/pkg/services"
)

// APIHandlers wires the run service into fiber routes.
type APIHandlers struct {
	runService *services.Runs
}

func NewAPIHandlers(runService *services.Runs) *APIHandlers {
	return &APIHandlers{runService: runService}
}

// GetRuns lists recorded runs, newest first. Supports ?source= and ?limit=.
func (h *APIHandlers) GetRuns(c fiber.Ctx) error {
	req := services.ListRunsRequest{Source: c.Query("source")}

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return badRequest(c, "Invalid limit: "+limitStr)
		}

		req.Limit = limit
	}

	result, err := h.runService.ListRuns(c.Context(), req)
	if err != nil {
		return handleServiceError(c, err)
	}

	summaries := make([]RunSummary, 0, len(result.Runs))
	for _, run := range result.Runs {
		summaries = append(summaries, TransformRunSummary(run))
	}

	return c.JSON(fiber.Map{
		"runs":        summaries,
		"total_count": result.TotalCount,
	})
}

// GetRun returns one run with its full phase table.
func (h *APIHandlers) GetRun(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Run ID is required")
	}

	run, err := h.runService.FetchByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(run)
}

// GetRunReport returns the run's stored report. ?format=text renders the
// text summary instead of JSON.
func (h *APIHandlers) GetRunReport(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Run ID is required")
	}

	runReport, err := h.runService.Report(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	if c.Query("format") == "text" {
		var buf bytes.Buffer
		if err := runReport.RenderText(&buf); err != nil {
			return internalError(c, err)
		}

		return c.SendString(buf.String())
	}

	return c.JSON(runReport)
}

// GetRunMappings lists a run's source-to-target mappings. ?kind= filters by
// object kind.
func (h *APIHandlers) GetRunMappings(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Run ID is required")
	}

	mappings, err := h.runService.Mappings(c.Context(), id, c.Query("kind"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"mappings":    mappings,
		"total_count": len(mappings),
	})
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	storeCheck, ok := h.runService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Migrator status API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if ok {
		status = "healthy"
		message = "Migrator status API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"checkpoint_store": storeCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}
