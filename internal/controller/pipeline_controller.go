package controller

import (
	"notes-intelligence-be/internal/dto"
	"notes-intelligence-be/internal/pkg/serverutils"
	"notes-intelligence-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IPipelineController interface {
	RegisterRoutes(r fiber.Router, guard fiber.Handler)
	Run(ctx *fiber.Ctx) error
	Stages(ctx *fiber.Ctx) error
}

type pipelineController struct {
	pipelineService service.IPipelineService
	stages          []string
}

func NewPipelineController(pipelineService service.IPipelineService, stages []string) IPipelineController {
	return &pipelineController{
		pipelineService: pipelineService,
		stages:          stages,
	}
}

func (c *pipelineController) RegisterRoutes(r fiber.Router, guard fiber.Handler) {
	h := r.Group("/pipeline/v1")
	h.Use(guard)
	h.Get("stages", c.Stages)
	h.Post("run", c.Run)
}

// Run executes the whole workflow synchronously. Progress for the run id is
// pushed over /api/ws/v1/runs/:runId while the request is in flight.
func (c *pipelineController) Run(ctx *fiber.Ctx) error {
	var req dto.RunPipelineRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.pipelineService.Run(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Pipeline finished", res))
}

func (c *pipelineController) Stages(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success list stages", c.stages))
}
