package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/postdeckhq/postdeck/internal/service"
	"github.com/postdeckhq/postdeck/internal/transfer"
)

type AssistantHandler struct {
	s service.AssistantService
}

func NewAssistantHandler(service service.AssistantService) *AssistantHandler {
	return &AssistantHandler{s: service}
}

func (h *AssistantHandler) SendMessage(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.AssistantRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	resp, err := h.s.Reply(c.Context(), userID, &req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

func (h *AssistantHandler) History(c *fiber.Ctx) error {
	userID := GetUserID(c)
	conversationID := c.QueryInt("conversation_id", 0)

	turns, err := h.s.History(c.Context(), userID, int64(conversationID))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to load conversation history",
		})
	}

	return c.Status(fiber.StatusOK).JSON(turns)
}
