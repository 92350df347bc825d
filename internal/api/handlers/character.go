package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/willemhelmet/prompt-pugilists/internal/models"
	"github.com/willemhelmet/prompt-pugilists/internal/service"
)

type CharacterHandler struct {
	characterService *service.CharacterService
}

func NewCharacterHandler(characterService *service.CharacterService) *CharacterHandler {
	return &CharacterHandler{
		characterService: characterService,
	}
}

// ListCharacters 캐릭터 목록 조회
func (h *CharacterHandler) ListCharacters(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	characters, err := h.characterService.List(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get characters",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"characters": characters,
		"total":      len(characters),
	})
}

// GetCharacter 특정 캐릭터 조회
func (h *CharacterHandler) GetCharacter(c *gin.Context) {
	id := c.Param("id")

	character, err := h.characterService.GetByID(id)
	if err != nil {
		if errors.Is(err, service.ErrCharacterNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Character not found",
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get character",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"character": character,
	})
}

// CreateCharacter 새 캐릭터 생성
func (h *CharacterHandler) CreateCharacter(c *gin.Context) {
	var req models.CreateCharacterRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	userId, exists := c.Get("userId")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	character, err := h.characterService.Create(userId.(string), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid input",
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create character",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Character created successfully",
		"character": character,
	})
}

// UpdateCharacter 캐릭터 수정
func (h *CharacterHandler) UpdateCharacter(c *gin.Context) {
	id := c.Param("id")
	var req models.UpdateCharacterRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	userId, _ := c.Get("userId")

	character, err := h.characterService.Update(id, userId.(string), &req)
	if err != nil {
		if errors.Is(err, service.ErrCharacterNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Character not found",
			})
			return
		}

		if errors.Is(err, service.ErrUnauthorized) {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "You don't have permission to update this character",
			})
			return
		}

		if errors.Is(err, service.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid input",
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to update character",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Character updated successfully",
		"character": character,
	})
}

// DeleteCharacter 캐릭터 삭제
func (h *CharacterHandler) DeleteCharacter(c *gin.Context) {
	id := c.Param("id")
	userId, _ := c.Get("userId")

	err := h.characterService.Delete(id, userId.(string))
	if err != nil {
		if errors.Is(err, service.ErrCharacterNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Character not found",
			})
			return
		}

		if errors.Is(err, service.ErrUnauthorized) {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "You don't have permission to delete this character",
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to delete character",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Character deleted successfully",
	})
}

// UploadCharacterImage 캐릭터 이미지 업로드
func (h *CharacterHandler) UploadCharacterImage(c *gin.Context) {
	id := c.Param("id")
	userId, _ := c.Get("userId")

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Image file is required",
		})
		return
	}

	character, err := h.characterService.UploadImage(id, userId.(string), file)
	if err != nil {
		if errors.Is(err, service.ErrCharacterNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Character not found",
			})
			return
		}

		if errors.Is(err, service.ErrUnauthorized) {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "You don't have permission to update this character",
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to upload image",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Image uploaded successfully",
		"character": character,
	})
}
