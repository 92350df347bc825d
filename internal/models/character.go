package models

import "time"

// 게임 전역 상수
const (
	MaxHP                    = 40
	ActionCharLimit          = 500
	EnvironmentCharLimit     = 300
	CharacterPromptCharLimit = 500
	RoomCodeLength           = 6
)

type Character struct {
	ID                string    `json:"id" db:"id"`
	UserID            string    `json:"userId" db:"user_id"`
	Name              string    `json:"name" db:"name"`
	ImageURL          string    `json:"imageUrl" db:"image_url"`
	TextPrompt        string    `json:"textPrompt" db:"text_prompt"`
	ReferenceImageURL *string   `json:"referenceImageUrl,omitempty" db:"reference_image_url"`
	CreatedAt         time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time `json:"updatedAt" db:"updated_at"`
}

type CreateCharacterRequest struct {
	Name              string `json:"name" binding:"required"`
	ImageURL          string `json:"imageUrl"`
	TextPrompt        string `json:"textPrompt" binding:"required"`
	ReferenceImageURL string `json:"referenceImageUrl"`
}

type UpdateCharacterRequest struct {
	Name              string `json:"name"`
	ImageURL          string `json:"imageUrl"`
	TextPrompt        string `json:"textPrompt"`
	ReferenceImageURL string `json:"referenceImageUrl"`
}
