package controller

import (
	"notes-intelligence-be/internal/dto"
	"notes-intelligence-be/internal/pkg/serverutils"
	"notes-intelligence-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IStyleProfileController interface {
	RegisterRoutes(r fiber.Router, guard fiber.Handler)
	Get(ctx *fiber.Ctx) error
	Replace(ctx *fiber.Ctx) error
	Reset(ctx *fiber.Ctx) error
	Learn(ctx *fiber.Ctx) error
}

type styleProfileController struct {
	styleProfileService service.IStyleProfileService
}

func NewStyleProfileController(styleProfileService service.IStyleProfileService) IStyleProfileController {
	return &styleProfileController{styleProfileService: styleProfileService}
}

func (c *styleProfileController) RegisterRoutes(r fiber.Router, guard fiber.Handler) {
	h := r.Group("/style-profile/v1")
	h.Use(guard)
	h.Get("", c.Get)
	h.Put("", c.Replace)
	h.Post("reset", c.Reset)
	h.Post("learn", c.Learn)
}

func (c *styleProfileController) Get(ctx *fiber.Ctx) error {
	res, err := c.styleProfileService.Get(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get style profile", res))
}

func (c *styleProfileController) Replace(ctx *fiber.Ctx) error {
	var req dto.ReplaceStyleProfileRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.styleProfileService.Replace(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success replace style profile", res))
}

func (c *styleProfileController) Reset(ctx *fiber.Ctx) error {
	res, err := c.styleProfileService.Reset(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success reset style profile", res))
}

func (c *styleProfileController) Learn(ctx *fiber.Ctx) error {
	var req dto.LearnStyleProfileRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.styleProfileService.Learn(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success learn style profile", res))
}
