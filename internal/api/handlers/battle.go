package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/willemhelmet/prompt-pugilists/internal/repository"
)

// BattleHandler 보존된 전투 기록 조회
type BattleHandler struct {
	battleRepo *repository.BattleRepository
}

func NewBattleHandler(battleRepo *repository.BattleRepository) *BattleHandler {
	return &BattleHandler{
		battleRepo: battleRepo,
	}
}

// GetBattleByRoom 룸 코드로 종료된 전투 조회
func (h *BattleHandler) GetBattleByRoom(c *gin.Context) {
	roomID := c.Param("roomId")

	battle, err := h.battleRepo.FindByRoomID(roomID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get battle",
		})
		return
	}
	if battle == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Battle not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"battle": battle,
	})
}
