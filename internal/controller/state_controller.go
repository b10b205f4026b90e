package controller

import (
	"os"

	"terapia-chat-be/internal/pkg/logger"
	"terapia-chat-be/internal/pkg/serverutils"
	internalWS "terapia-chat-be/internal/websocket"
	"terapia-chat-be/pkg/store"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// IStateController serves the per-user chat view state and the websocket
// refresh channel.
type IStateController interface {
	RegisterRoutes(r fiber.Router)
	Show(ctx *fiber.Ctx) error
	Save(ctx *fiber.Ctx) error
	Clear(ctx *fiber.Ctx) error
	ServeWs(ctx *fiber.Ctx) error
}

type stateController struct {
	stateStore *store.StateStore
	hub        *internalWS.Hub
	logger     logger.ILogger
}

func NewStateController(stateStore *store.StateStore, hub *internalWS.Hub, log logger.ILogger) IStateController {
	return &stateController{
		stateStore: stateStore,
		hub:        hub,
		logger:     log,
	}
}

func (c *stateController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chats")
	h.Use(serverutils.JwtMiddleware)
	h.Get(":chatId/state", c.Show)
	h.Put(":chatId/state", c.Save)
	h.Delete(":chatId/state", c.Clear)

	// the websocket handshake carries its token in the query string, so it
	// does its own auth instead of using the middleware group
	r.Get("/ws/refresh", c.ServeWs)
}

func (c *stateController) Show(ctx *fiber.Ctx) error {
	userId := ctx.Locals("user_id").(string)
	chatId := ctx.Params("chatId")

	state, err := c.stateStore.Load(ctx.Context(), userId, chatId)
	if err != nil {
		return err
	}
	if state == nil {
		return fiber.NewError(fiber.StatusNotFound, "no view state stored")
	}

	return ctx.JSON(serverutils.SuccessResponse("View state found", state))
}

func (c *stateController) Save(ctx *fiber.Ctx) error {
	userId := ctx.Locals("user_id").(string)
	chatId := ctx.Params("chatId")

	var state store.ChatViewState
	if err := ctx.BodyParser(&state); err != nil {
		return err
	}
	state.LastChatId = chatId

	if err := c.stateStore.Save(ctx.Context(), userId, chatId, &state); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("View state saved", &state))
}

func (c *stateController) Clear(ctx *fiber.Ctx) error {
	userId := ctx.Locals("user_id").(string)
	chatId := ctx.Params("chatId")

	if err := c.stateStore.Clear(ctx.Context(), userId, chatId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("View state cleared", fiber.Map{"chat_id": chatId}))
}

// ServeWs upgrades the connection and parks it on the hub. Browsers cannot
// set headers on websocket handshakes, so the token rides the query string.
func (c *stateController) ServeWs(ctx *fiber.Ctx) error {
	tokenStr := ctx.Query("token")
	if tokenStr == "" {
		authHeader := ctx.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}
	if tokenStr == "" {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing token"})
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		c.logger.Warn("StateController", "Invalid token in ws handshake", map[string]interface{}{"error": err})
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims"})
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Token missing subject"})
	}
	userId, err := uuid.Parse(sub)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user id in token"})
	}

	if websocket.IsWebSocketUpgrade(ctx) {
		return websocket.New(func(conn *websocket.Conn) {
			c.logger.Info("StateController", "Websocket session started", map[string]interface{}{"user_id": userId})
			internalWS.ServeWs(c.hub, conn, userId)
			c.logger.Info("StateController", "Websocket session ended", map[string]interface{}{"user_id": userId})
		})(ctx)
	}
	return fiber.ErrUpgradeRequired
}
