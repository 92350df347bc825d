package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/willemhelmet/prompt-pugilists/internal/service"
	"github.com/willemhelmet/prompt-pugilists/pkg/logger"
)

type SuggestionHandler struct {
	suggestionService *service.SuggestionService
}

func NewSuggestionHandler(suggestionService *service.SuggestionService) *SuggestionHandler {
	return &SuggestionHandler{
		suggestionService: suggestionService,
	}
}

// SuggestCharacter 캐릭터 아이디어 생성
func (h *SuggestionHandler) SuggestCharacter(c *gin.Context) {
	suggestion, err := h.suggestionService.SuggestCharacter(c.Request.Context())
	if err != nil {
		logger.Error("Failed to generate character suggestion", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate suggestion",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"name":   suggestion.Name,
		"prompt": suggestion.Prompt,
	})
}

// SuggestEnvironment 환경 아이디어 생성
func (h *SuggestionHandler) SuggestEnvironment(c *gin.Context) {
	suggestion, err := h.suggestionService.SuggestEnvironment(c.Request.Context())
	if err != nil {
		logger.Error("Failed to generate environment suggestion", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate suggestion",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"environment": suggestion,
	})
}
