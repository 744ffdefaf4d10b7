package controller

import (
	"pulse-companion-be/internal/dto"
	"pulse-companion-be/internal/pkg/serverutils"
	"pulse-companion-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IVitalsController interface {
	RegisterRoutes(r fiber.Router)
	Record(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Latest(ctx *fiber.Ctx) error
	Live(ctx *fiber.Ctx) error
}

type vitalsController struct {
	service service.IVitalsService
}

func NewVitalsController(service service.IVitalsService) IVitalsController {
	return &vitalsController{service: service}
}

func (c *vitalsController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/vitals")
	h.Post("", c.Record)
	h.Get(":patientId", c.List)
	h.Get(":patientId/latest", c.Latest)
	h.Get(":patientId/live", c.Live)
}

func (c *vitalsController) Record(ctx *fiber.Ctx) error {
	var req dto.RecordVitalsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Record(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Vitals recorded", res))
}

// List returns the whole history unless ?days= narrows it.
func (c *vitalsController) List(ctx *fiber.Ctx) error {
	days := ctx.QueryInt("days", 0)
	if days < 0 {
		return serverutils.NewHTTPError(fiber.StatusBadRequest, "days must not be negative")
	}

	res, err := c.service.List(ctx.UserContext(), ctx.Params("patientId"), days)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get vitals", res))
}

func (c *vitalsController) Latest(ctx *fiber.Ctx) error {
	res, err := c.service.Latest(ctx.UserContext(), ctx.Params("patientId"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get latest vitals", res))
}

func (c *vitalsController) Live(ctx *fiber.Ctx) error {
	res, err := c.service.Live(ctx.UserContext(), ctx.Params("patientId"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get live vitals", res))
}
