package controller

import (
	"notes-intelligence-be/internal/dto"
	"notes-intelligence-be/internal/pkg/serverutils"
	"notes-intelligence-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router, guard fiber.Handler)
	Chat(ctx *fiber.Ctx) error
	ChatNote(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{chatService: chatService}
}

func (c *chatController) RegisterRoutes(r fiber.Router, guard fiber.Handler) {
	h := r.Group("/chat/v1")
	h.Use(guard)
	h.Post("", c.Chat)
	h.Post("note/:id", c.ChatNote)
}

func (c *chatController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := parseChat(ctx, &req); err != nil {
		return err
	}

	res, err := c.chatService.Chat(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success chat", res))
}

func (c *chatController) ChatNote(ctx *fiber.Ctx) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}
	var req dto.ChatRequest
	if err := parseChat(ctx, &req); err != nil {
		return err
	}

	res, err := c.chatService.ChatNote(ctx.UserContext(), id, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success chat", res))
}

func parseChat(ctx *fiber.Ctx, req *dto.ChatRequest) error {
	if err := ctx.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return serverutils.ValidateRequest(req)
}
