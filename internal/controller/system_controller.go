package controller

import (
	"errors"
	"strings"
	"time"

	"pulse-companion-be/internal/pkg/logger"
	"pulse-companion-be/internal/pkg/serverutils"
	"pulse-companion-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISystemController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
	GetLogs(ctx *fiber.Ctx) error
	GetLogDetail(ctx *fiber.Ctx) error
}

type systemController struct {
	checkin service.ICheckinService
	logger  logger.ILogger
	storage string
	started time.Time
}

// NewSystemController serves health and log inspection. storage names the
// active persistence backend ("postgres" or "memory").
func NewSystemController(checkin service.ICheckinService, logger logger.ILogger, storage string) ISystemController {
	return &systemController{
		checkin: checkin,
		logger:  logger,
		storage: storage,
		started: time.Now(),
	}
}

// RegisterRoutes expects the app root; health lives outside /api.
func (c *systemController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.Health)

	logs := r.Group("/api/logs")
	logs.Get("", c.GetLogs)
	logs.Get(":id", c.GetLogDetail)
}

func (c *systemController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("PULSE backend is healthy", fiber.Map{
		"status":    "healthy",
		"storage":   c.storage,
		"uptime_s":  int(time.Since(c.started).Seconds()),
		"providers": c.checkin.Health(),
	}))
}

func (c *systemController) GetLogs(ctx *fiber.Ctx) error {
	limit := ctx.QueryInt("limit", 50)
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	offset := ctx.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	filter := logger.LogFilter{
		Level:  strings.ToUpper(ctx.Query("level", "")),
		Module: strings.ToUpper(ctx.Query("module", "")),
	}

	logs, err := c.logger.GetLogs(filter, limit, offset)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("System logs", logs))
}

func (c *systemController) GetLogDetail(ctx *fiber.Ctx) error {
	l, err := c.logger.GetLogById(ctx.Params("id"))
	if errors.Is(err, logger.ErrLogNotFound) {
		return serverutils.NewHTTPError(fiber.StatusNotFound, "Log not found")
	}
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Log detail", l))
}
