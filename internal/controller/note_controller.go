package controller

import (
	"notes-intelligence-be/internal/dto"
	"notes-intelligence-be/internal/pkg/serverutils"
	"notes-intelligence-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type INoteController interface {
	RegisterRoutes(r fiber.Router, guard fiber.Handler)
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Reindex(ctx *fiber.Ctx) error
	SemanticSearch(ctx *fiber.Ctx) error
}

type noteController struct {
	noteService service.INoteService
}

func NewNoteController(noteService service.INoteService) INoteController {
	return &noteController{
		noteService: noteService,
	}
}

func (c *noteController) RegisterRoutes(r fiber.Router, guard fiber.Handler) {
	h := r.Group("/note/v1")
	h.Use(guard)
	h.Get("semantic-search", c.SemanticSearch)
	h.Get("", c.List)
	h.Get(":id", c.Show)
	h.Post(":id/reindex", c.Reindex)
	h.Delete(":id", c.Delete)
}

func (c *noteController) List(ctx *fiber.Ctx) error {
	var req dto.ListNotesRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.noteService.List(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list notes", res))
}

func (c *noteController) Show(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	res, err := c.noteService.Show(ctx.UserContext(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show note", res))
}

func (c *noteController) Delete(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	if err := c.noteService.Delete(ctx.UserContext(), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete note", nil))
}

func (c *noteController) Reindex(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	if err := c.noteService.Reindex(ctx.UserContext(), id); err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse[any]("Note queued for indexing", nil))
}

func (c *noteController) SemanticSearch(ctx *fiber.Ctx) error {
	res, err := c.noteService.SemanticSearch(ctx.UserContext(), ctx.Query("q", ""))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success semantic search notes", res))
}

func parseID(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return id, nil
}
