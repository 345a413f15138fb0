package handlers

import (
	"strings"

	"orgchat/internal/adapters/http/middleware"
	"orgchat/internal/core/services"
	"orgchat/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ChatHandler handles chat endpoints
type ChatHandler struct {
	chatService *services.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// ChatRequest represents a chat request body
type ChatRequest struct {
	Message string `json:"message"`
}

// Chat answers one question for the authenticated user
// @Summary Ask the assistant a question
// @Description Answer a question using only records the caller's role may see
// @Tags Chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ChatRequest true "Question"
// @Success 200 {object} services.ChatResult
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/chat [post]
func (h *ChatHandler) Chat(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return response.BadRequest(c, "Message is required")
	}

	result, err := h.chatService.Ask(c.UserContext(), user, message)
	if err != nil {
		// The caller never learns whether retrieval or generation broke.
		return response.InternalServerError(c, "Error processing your request. Please try again.")
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

// History returns the caller's recent chat history
// @Summary Get chat history
// @Tags Chat
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/chat/history [get]
func (h *ChatHandler) History(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	entries := h.chatService.History(user)

	return response.Success(c, "History retrieved successfully", fiber.Map{
		"history": entries,
	})
}
