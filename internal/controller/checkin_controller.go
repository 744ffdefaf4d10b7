package controller

import (
	"pulse-companion-be/internal/dto"
	"pulse-companion-be/internal/pkg/serverutils"
	"pulse-companion-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ICheckinController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
	Greeting(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
}

type checkinController struct {
	service service.ICheckinService
}

func NewCheckinController(service service.ICheckinService) ICheckinController {
	return &checkinController{service: service}
}

func (c *checkinController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/checkin")
	h.Get("health", c.Health)
	h.Post(":patientId/chat", c.Chat)
	h.Get(":patientId/greeting", c.Greeting)
	h.Get(":patientId/history", c.History)
}

func (c *checkinController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	req.PatientId = ctx.Params("patientId")

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Chat(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success chat", res))
}

func (c *checkinController) Greeting(ctx *fiber.Ctx) error {
	res, err := c.service.Greeting(ctx.UserContext(), ctx.Params("patientId"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get greeting", res))
}

func (c *checkinController) History(ctx *fiber.Ctx) error {
	query := dto.CheckinHistoryQuery{Limit: service.DefaultHistoryLimit}
	if err := ctx.QueryParser(&query); err != nil {
		return fiber.ErrBadRequest
	}
	if err := serverutils.ValidateRequest(query); err != nil {
		return err
	}

	res, err := c.service.History(ctx.UserContext(), ctx.Params("patientId"), query)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get check-in history", res))
}

// Health reports provider availability and breaker state.
func (c *checkinController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Check-in providers", c.service.Health()))
}
