package controller

import (
	"strconv"

	"terapia-chat-be/internal/dto"
	"terapia-chat-be/internal/pkg/serverutils"
	"terapia-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IReviewController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
}

type reviewController struct {
	reviewService service.IReviewService
}

func NewReviewController(reviewService service.IReviewService) IReviewController {
	return &reviewController{
		reviewService: reviewService,
	}
}

func (c *reviewController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/reviews")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Create)
	h.Get(":chatId", c.Show)
	h.Get(":chatId/all", c.List)
}

func (c *reviewController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateReviewRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.reviewService.CreateReview(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Review stored", res))
}

// Show returns one review: the sessao query picks a session, otherwise the
// latest review of the chat is returned.
func (c *reviewController) Show(ctx *fiber.Ctx) error {
	chatId := ctx.Params("chatId")

	var (
		res *dto.ReviewResponse
		err error
	)
	if raw := ctx.Query("sessao"); raw != "" {
		sessao, convErr := strconv.Atoi(raw)
		if convErr != nil || sessao < 1 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid session number")
		}
		res, err = c.reviewService.GetReview(ctx.Context(), chatId, sessao)
	} else {
		res, err = c.reviewService.GetLatestReview(ctx.Context(), chatId)
	}
	if err != nil {
		return err
	}
	if res == nil {
		return fiber.NewError(fiber.StatusNotFound, "review not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("Review found", res))
}

func (c *reviewController) List(ctx *fiber.Ctx) error {
	chatId := ctx.Params("chatId")

	res, err := c.reviewService.ListReviews(ctx.Context(), chatId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Reviews listed", res))
}
