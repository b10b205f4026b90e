package controller

import (
	"strconv"

	"terapia-chat-be/internal/dto"
	"terapia-chat-be/internal/pkg/serverutils"
	"terapia-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Start(ctx *fiber.Ctx) error
	SendMessage(ctx *fiber.Ctx) error
	Finalize(ctx *fiber.Ctx) error
	NextSession(ctx *fiber.Ctx) error
	ListSessions(ctx *fiber.Ctx) error
	ShowSession(ctx *fiber.Ctx) error
	PauseTimer(ctx *fiber.Ctx) error
	ResumeTimer(ctx *fiber.Ctx) error
}

type chatController struct {
	lifecycleService service.ILifecycleService
}

func NewChatController(lifecycleService service.ILifecycleService) IChatController {
	return &chatController{
		lifecycleService: lifecycleService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chats")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Start)
	h.Get(":chatId/sessions", c.ListSessions)
	h.Get(":chatId/sessions/:sessao", c.ShowSession)
	h.Post(":chatId/messages", c.SendMessage)
	h.Post(":chatId/finalize", c.Finalize)
	h.Post(":chatId/next-session", c.NextSession)
	h.Post(":chatId/timer/pause", c.PauseTimer)
	h.Post(":chatId/timer/resume", c.ResumeTimer)
}

func (c *chatController) Start(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.StartChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.lifecycleService.Start(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Chat started", res))
}

func (c *chatController) SendMessage(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}
	chatId := ctx.Params("chatId")

	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.lifecycleService.SendMessage(ctx.Context(), userId, chatId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Message delivered", res))
}

func (c *chatController) Finalize(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}
	chatId := ctx.Params("chatId")

	res, err := c.lifecycleService.Finalize(ctx.Context(), userId, chatId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Session finalized", res))
}

func (c *chatController) NextSession(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}
	chatId := ctx.Params("chatId")

	res, err := c.lifecycleService.NextSession(ctx.Context(), userId, chatId)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Session started", res))
}

// ListSessions accepts either a chatId path segment or a threadId query
// parameter; the thread handle wins when both are present.
func (c *chatController) ListSessions(ctx *fiber.Ctx) error {
	if _, err := currentUserId(ctx); err != nil {
		return err
	}
	chatId := ctx.Params("chatId")
	threadId := ctx.Query("threadId")

	res, err := c.lifecycleService.ListSessions(ctx.Context(), chatId, threadId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Sessions listed", res))
}

func (c *chatController) ShowSession(ctx *fiber.Ctx) error {
	if _, err := currentUserId(ctx); err != nil {
		return err
	}
	chatId := ctx.Params("chatId")
	sessao, err := strconv.Atoi(ctx.Params("sessao"))
	if err != nil || sessao < 1 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session number")
	}

	res, err := c.lifecycleService.SelectSession(ctx.Context(), chatId, sessao)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Session found", res))
}

func (c *chatController) PauseTimer(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}
	chatId := ctx.Params("chatId")

	res, err := c.lifecycleService.PauseTimer(ctx.Context(), userId, chatId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Timer paused", res))
}

func (c *chatController) ResumeTimer(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}
	chatId := ctx.Params("chatId")

	res, err := c.lifecycleService.ResumeTimer(ctx.Context(), userId, chatId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Timer resumed", res))
}

func currentUserId(ctx *fiber.Ctx) (uuid.UUID, error) {
	userIdStr, _ := ctx.Locals("user_id").(string)
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "invalid user id")
	}
	return userId, nil
}
