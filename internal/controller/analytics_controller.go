package controller

import (
	"errors"

	"pulse-companion-be/internal/pkg/serverutils"
	"pulse-companion-be/internal/service"
	"pulse-companion-be/pkg/analytics"

	"github.com/gofiber/fiber/v2"
)

type IAnalyticsController interface {
	RegisterRoutes(r fiber.Router)
	Stats(ctx *fiber.Ctx) error
	Trends(ctx *fiber.Ctx) error
	Alerts(ctx *fiber.Ctx) error
	BaselineComparison(ctx *fiber.Ctx) error
	Risk(ctx *fiber.Ctx) error
}

type analyticsController struct {
	service service.IAnalyticsService
}

func NewAnalyticsController(service service.IAnalyticsService) IAnalyticsController {
	return &analyticsController{service: service}
}

func (c *analyticsController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/analytics/:patientId")
	h.Get("stats", c.Stats)
	h.Get("trends", c.Trends)
	h.Get("alerts", c.Alerts)
	h.Get("baseline-comparison", c.BaselineComparison)
	h.Get("risk", c.Risk)
}

func (c *analyticsController) Stats(ctx *fiber.Ctx) error {
	res, err := c.service.Stats(ctx.UserContext(), ctx.Params("patientId"), ctx.QueryInt("days", service.DefaultAnalyticsDays))
	if err != nil {
		return analyticsError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get stats", res))
}

func (c *analyticsController) Trends(ctx *fiber.Ctx) error {
	res, err := c.service.Trends(ctx.UserContext(), ctx.Params("patientId"), ctx.QueryInt("days", service.DefaultAnalyticsDays))
	if err != nil {
		return analyticsError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get trends", res))
}

func (c *analyticsController) Alerts(ctx *fiber.Ctx) error {
	res, err := c.service.Alerts(ctx.UserContext(), ctx.Params("patientId"))
	if err != nil {
		return analyticsError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success check alerts", res))
}

func (c *analyticsController) BaselineComparison(ctx *fiber.Ctx) error {
	res, err := c.service.BaselineComparison(ctx.UserContext(), ctx.Params("patientId"))
	if err != nil {
		return analyticsError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success compare baseline", res))
}

func (c *analyticsController) Risk(ctx *fiber.Ctx) error {
	res, err := c.service.Risk(ctx.UserContext(), ctx.Params("patientId"), ctx.QueryInt("days", service.DefaultAnalyticsDays))
	if err != nil {
		return analyticsError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success assess risk", res))
}

// analyticsError gives the library's sentinel errors a status code.
func analyticsError(err error) error {
	switch {
	case errors.Is(err, analytics.ErrNoReadings):
		return serverutils.NewHTTPError(fiber.StatusNotFound, "No vitals data found")
	case errors.Is(err, analytics.ErrNotEnoughData):
		return serverutils.NewHTTPError(fiber.StatusBadRequest, "Not enough data for trend analysis (need at least 3 readings)")
	case errors.Is(err, analytics.ErrNoBaseline):
		return serverutils.NewHTTPError(fiber.StatusBadRequest, "No baseline established for patient")
	}
	return err
}
