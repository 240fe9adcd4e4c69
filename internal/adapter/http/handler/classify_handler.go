package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akramsystems/llm-n-class-classifier/internal/usecase"
)

// ClassifyResponse is the body returned by POST /classify
type ClassifyResponse struct {
	ModelResponse string `json:"model_response"`
}

// ClassifyHandler handles classification requests
type ClassifyHandler struct {
	classifyUC usecase.ClassificationUsecase
}

// NewClassifyHandler creates a new classify handler
func NewClassifyHandler(classifyUC usecase.ClassificationUsecase) *ClassifyHandler {
	return &ClassifyHandler{classifyUC: classifyUC}
}

// Classify handles POST /classify
func (h *ClassifyHandler) Classify(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleValidationError(c, err)
		return
	}

	output, err := h.classifyUC.Classify(c.Request.Context(), req.toInput())
	if err != nil {
		HandleUsecaseError(c, err)
		return
	}

	c.JSON(http.StatusOK, ClassifyResponse{ModelResponse: output.ModelResponse()})
}
