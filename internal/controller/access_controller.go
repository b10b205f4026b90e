package controller

import (
	"strconv"

	"terapia-chat-be/internal/pkg/serverutils"
	"terapia-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IAccessController interface {
	RegisterRoutes(r fiber.Router)
	Validate(ctx *fiber.Ctx) error
}

type accessController struct {
	accessService service.IAccessService
}

func NewAccessController(accessService service.IAccessService) IAccessController {
	return &accessController{
		accessService: accessService,
	}
}

func (c *accessController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/access")
	h.Use(serverutils.JwtMiddleware)
	h.Get("validate", c.Validate)
}

// Validate answers whether the caller may start a new chat for a diagnosis.
// Denial is a 200 with canAccess=false; only infrastructure trouble is an
// error status.
func (c *accessController) Validate(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid user id")
	}

	codigo := ctx.Query("diagnosticoCodigo")
	if codigo == "" {
		codigo = ctx.Query("diagnostico")
	}
	if codigo == "" {
		return fiber.NewError(fiber.StatusBadRequest, "diagnosticoCodigo query parameter is required")
	}

	decision, err := c.accessService.CanUserAccessDiagnostico(ctx.Context(), userId, codigo)
	if err != nil {
		return err
	}
	if decision.Temporary {
		retryAfter := decision.RetryAfter
		if retryAfter <= 0 {
			retryAfter = 5
		}
		ctx.Set("Retry-After", strconv.Itoa(retryAfter))
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"code":    fiber.StatusServiceUnavailable,
			"message": "access check unavailable",
			"data":    decision,
		})
	}

	return ctx.JSON(serverutils.SuccessResponse("Access validated", decision))
}
