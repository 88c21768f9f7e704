package handlers

import (
	"io"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/postdeckhq/postdeck/internal/queue"
	"github.com/postdeckhq/postdeck/internal/service"
	"github.com/postdeckhq/postdeck/internal/transfer"
)

// resizeDelay is the simulated processing window before per-platform media
// variants are marked ready.
const resizeDelay = 30 * time.Second

type ComposerHandler struct {
	s           service.ComposerService
	AsynqClient *asynq.Client
}

func NewComposerHandler(service service.ComposerService, asynqClient *asynq.Client) *ComposerHandler {
	return &ComposerHandler{s: service, AsynqClient: asynqClient}
}

func (h *ComposerHandler) Open(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.QueryInt("post_id", 0)

	state, err := h.s.Open(c.Context(), userID, int64(postID))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to open composer",
		})
	}

	return c.Status(fiber.StatusOK).JSON(state)
}

func (h *ComposerHandler) State(c *fiber.Ctx) error {
	userID := GetUserID(c)

	state, err := h.s.State(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No active composer session",
		})
	}

	return c.Status(fiber.StatusOK).JSON(state)
}

func (h *ComposerHandler) Update(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var upd transfer.ComposerUpdate
	if err := c.BodyParser(&upd); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	state, err := h.s.Update(c.Context(), userID, &upd)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(state)
}

func (h *ComposerHandler) SetStep(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var body struct {
		Step string `json:"step"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	state, err := h.s.SetStep(c.Context(), userID, body.Step)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(state)
}

func (h *ComposerHandler) GenerateCaptions(c *fiber.Ctx) error {
	userID := GetUserID(c)

	captions, err := h.s.Generate(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(transfer.CaptionResponse{Captions: captions})
}

func (h *ComposerHandler) SelectCaption(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var body struct {
		Platform string `json:"platform"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	state, err := h.s.SelectCaption(c.Context(), userID, body.Platform)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(state)
}

func (h *ComposerHandler) UploadMedia(c *fiber.Ctx) error {
	userID := GetUserID(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file selected",
		})
	}

	f, err := fileHeader.Open()
	if err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to read file",
		})
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to read file",
		})
	}

	assetID, state, err := h.s.AttachMedia(c.Context(), userID, data)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	err = queue.EnqueueResize(h.AsynqClient, queue.ResizeMediaPayload{AssetID: assetID}, resizeDelay)
	if err != nil {
		slog.Info(err.Error())
	}

	return c.Status(fiber.StatusOK).JSON(state)
}

func (h *ComposerHandler) SaveDraft(c *fiber.Ctx) error {
	userID := GetUserID(c)

	state, err := h.s.SaveDraft(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(state)
}

func (h *ComposerHandler) Commit(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var sched transfer.ScheduleRequest
	if err := c.BodyParser(&sched); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	postID, delay, err := h.s.Commit(c.Context(), userID, &sched)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if sched.Mode == service.ScheduleModeLater {
		err = queue.EnqueuePublish(h.AsynqClient, queue.PublishPostPayload{PostID: postID}, delay)
		if err != nil {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"error": "Error scheduling post",
			})
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Post scheduled successfully",
		"post_id": postID,
	})
}

func (h *ComposerHandler) Close(c *fiber.Ctx) error {
	userID := GetUserID(c)
	save := c.QueryBool("save", true)

	if err := h.s.Close(c.Context(), userID, save); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.SendStatus(fiber.StatusOK)
}
