package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/lumora-app/backend/internal/models"
	"github.com/lumora-app/backend/internal/repositories"
)

// MessageHandler handles direct-message HTTP requests
type MessageHandler struct {
	conversationRepository repositories.ConversationRepository
	messageRepository      repositories.MessageRepository
	userRepository         repositories.UserRepository
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(convRepo repositories.ConversationRepository, msgRepo repositories.MessageRepository, userRepo repositories.UserRepository) *MessageHandler {
	return &MessageHandler{
		conversationRepository: convRepo,
		messageRepository:      msgRepo,
		userRepository:         userRepo,
	}
}

// RegisterMessageRoutes registers messaging routes
func (h *MessageHandler) RegisterMessageRoutes(g *echo.Group) {
	g.POST("/conversations", h.OpenConversation)
	g.GET("/conversations", h.GetConversations)
	g.POST("/conversations/:id/messages", h.SendMessage)
	g.GET("/conversations/:id/messages", h.GetMessages)
}

// OpenConversation finds or creates the thread with another user
func (h *MessageHandler) OpenConversation(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.OpenConversationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if req.ParticipantID == currentUserID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot message yourself")
	}

	if _, err := h.userRepository.GetUserByID(req.ParticipantID); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	participant := strconv.FormatUint(uint64(req.ParticipantID), 10)
	conv, err := h.conversationRepository.FindOrCreate(c.Request().Context(), actorIDFromContext(c), participant)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"conversation": conv}})
}

// GetConversations lists the caller's threads, most recently active first
func (h *MessageHandler) GetConversations(c echo.Context) error {
	actor := actorIDFromContext(c)
	if actor == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	conversations, err := h.conversationRepository.ListByParticipant(c.Request().Context(), actor)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"conversations": conversations}})
}

// SendMessage appends a message to a conversation the caller belongs to
func (h *MessageHandler) SendMessage(c echo.Context) error {
	actor := actorIDFromContext(c)
	if actor == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	conv, err := h.conversationRepository.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	if !conv.HasParticipant(actor) {
		return echo.NewHTTPError(http.StatusForbidden, "You are not part of this conversation")
	}

	message := &models.Message{
		ConversationID: conv.ID,
		SenderID:       actor,
		Text:           req.Text,
		CreatedAt:      timeNow(),
	}
	if err := h.messageRepository.Insert(c.Request().Context(), message); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.conversationRepository.TouchLastMessage(c.Request().Context(), conv.ID.Hex(), message.CreatedAt); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": echo.Map{"message": message}})
}

// GetMessages lists a conversation's messages, oldest first
func (h *MessageHandler) GetMessages(c echo.Context) error {
	actor := actorIDFromContext(c)
	if actor == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	conv, err := h.conversationRepository.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	if !conv.HasParticipant(actor) {
		return echo.NewHTTPError(http.StatusForbidden, "You are not part of this conversation")
	}

	skip, limit := paginationParams(c)
	messages, err := h.messageRepository.ListByConversation(c.Request().Context(), conv.ID.Hex(), skip, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"messages": messages}})
}
