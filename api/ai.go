package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"economic/database"
	"economic/logging"
	"economic/middleware"
	"economic/models"
	"economic/service"

	"github.com/gin-gonic/gin"
)

// AIHandler proxies chat questions to the completion service and keeps a
// per-user history.
type AIHandler struct {
	svc *service.AIService
}

func NewAIHandler(svc *service.AIService) *AIHandler {
	return &AIHandler{svc: svc}
}

// CompletionRequest is a plain chat question.
type CompletionRequest struct {
	Message string `json:"message" binding:"required,min=1,max=4000" example:"How can I save more?"`
}

// ContextualCompletionRequest carries the user's records as context.
type ContextualCompletionRequest struct {
	Message     string              `json:"message" binding:"required,min=1,max=4000"`
	ContextData service.ContextData `json:"contextData"`
}

// CompletionResponse is the assistant reply.
type CompletionResponse struct {
	Reply string `json:"reply"`
}

// Completion answers a question without context
// @Summary Chat completion
// @Tags ai
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CompletionRequest true "question"
// @Success 200 {object} CompletionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /ai/completion [post]
func (h *AIHandler) Completion(c *gin.Context) {
	var req CompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	h.answer(c, req.Message, nil)
}

// ContextualCompletion answers a question about the supplied records
// @Summary Contextual chat completion
// @Description contextData.expenses and contextData.income are handed to the model as a system message
// @Tags ai
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ContextualCompletionRequest true "question and records"
// @Success 200 {object} CompletionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /ai/contextual-completion [post]
func (h *AIHandler) ContextualCompletion(c *gin.Context) {
	var req ContextualCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	h.answer(c, req.Message, &req.ContextData)
}

// History returns the caller's latest chat rounds, oldest first
// @Summary Chat history
// @Tags ai
// @Produce json
// @Security BearerAuth
// @Param limit query int false "max rounds" default(20)
// @Success 200 {array} models.AIChatMessage
// @Router /ai/history [get]
func (h *AIHandler) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	list := []models.AIChatMessage{}
	err := database.DB.Where("user_id = ?", middleware.GetCurrentUserID(c)).
		Order("id DESC").Limit(limit).Find(&list).Error
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "loading history failed"))
		return
	}
	for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
		list[i], list[j] = list[j], list[i]
	}
	OK(c, list)
}

func (h *AIHandler) answer(c *gin.Context, message string, data *service.ContextData) {
	message = strings.TrimSpace(message)
	if message == "" {
		BadRequest(c, "message is required")
		return
	}
	msgs, err := h.svc.BuildMessages(message, data)
	if err != nil {
		BadRequest(c, SafeErrorMessage(err, "invalid context data"))
		return
	}

	reply, err := h.svc.Complete(c.Request.Context(), msgs)
	if err != nil {
		if errors.Is(err, service.ErrAIDisabled) {
			Error(c, http.StatusServiceUnavailable, err.Error())
			return
		}
		logging.Component("ai").WithError(err).Warn("completion failed")
		Error(c, http.StatusBadGateway, SafeErrorMessage(err, "the assistant is unavailable right now"))
		return
	}

	round := models.AIChatMessage{
		UserID:     middleware.GetCurrentUserID(c),
		Model:      h.svc.Model(),
		UserText:   message,
		AIText:     reply,
		Contextual: data != nil && !data.Empty(),
	}
	if err := database.DB.Create(&round).Error; err != nil {
		logging.Component("ai").WithError(err).Warn("chat round not stored")
	}
	OK(c, CompletionResponse{Reply: reply})
}
