package service

import (
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/willemhelmet/prompt-pugilists/internal/models"
	"github.com/willemhelmet/prompt-pugilists/internal/repository"
	"github.com/willemhelmet/prompt-pugilists/pkg/storage"
)

type CharacterService struct {
	characterRepo *repository.CharacterRepository
	storage       *storage.Storage
}

func NewCharacterService(characterRepo *repository.CharacterRepository, storage *storage.Storage) *CharacterService {
	return &CharacterService{
		characterRepo: characterRepo,
		storage:       storage,
	}
}

// Create 캐릭터 생성
func (s *CharacterService) Create(userID string, req *models.CreateCharacterRequest) (*models.Character, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.TextPrompt = strings.TrimSpace(req.TextPrompt)

	if req.Name == "" || req.TextPrompt == "" {
		return nil, ErrInvalidInput
	}
	if len(req.TextPrompt) > models.CharacterPromptCharLimit {
		return nil, ErrInvalidInput
	}

	character, err := s.characterRepo.Create(userID, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create character: %w", err)
	}

	return character, nil
}

// GetByID ID로 캐릭터 조회
func (s *CharacterService) GetByID(id string) (*models.Character, error) {
	character, err := s.characterRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get character: %w", err)
	}
	if character == nil {
		return nil, ErrCharacterNotFound
	}

	return character, nil
}

// List 캐릭터 목록 조회
func (s *CharacterService) List(limit, offset int) ([]*models.Character, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	characters, err := s.characterRepo.List(limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}

	return characters, nil
}

// Update 캐릭터 수정. 소유자만 가능
func (s *CharacterService) Update(id, userID string, req *models.UpdateCharacterRequest) (*models.Character, error) {
	character, err := s.characterRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to check character: %w", err)
	}
	if character == nil {
		return nil, ErrCharacterNotFound
	}
	if character.UserID != userID {
		return nil, ErrUnauthorized
	}

	if req.TextPrompt != "" && len(req.TextPrompt) > models.CharacterPromptCharLimit {
		return nil, ErrInvalidInput
	}

	updated, err := s.characterRepo.Update(id, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update character: %w", err)
	}

	return updated, nil
}

// Delete 캐릭터 삭제. 소유자만 가능
func (s *CharacterService) Delete(id, userID string) error {
	character, err := s.characterRepo.FindByID(id)
	if err != nil {
		return fmt.Errorf("failed to check character: %w", err)
	}
	if character == nil {
		return ErrCharacterNotFound
	}
	if character.UserID != userID {
		return ErrUnauthorized
	}

	if _, err := s.characterRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete character: %w", err)
	}

	return nil
}

// UploadImage 캐릭터 이미지 업로드 및 URL 갱신. 소유자만 가능
func (s *CharacterService) UploadImage(id, userID string, file *multipart.FileHeader) (*models.Character, error) {
	character, err := s.characterRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to check character: %w", err)
	}
	if character == nil {
		return nil, ErrCharacterNotFound
	}
	if character.UserID != userID {
		return nil, ErrUnauthorized
	}

	savePath, err := s.storage.SaveImage(file, "characters")
	if err != nil {
		return nil, fmt.Errorf("failed to save image: %w", err)
	}

	imageURL := s.storage.FileURL(savePath)
	if err := s.characterRepo.UpdateImageURL(id, imageURL); err != nil {
		return nil, fmt.Errorf("failed to update image url: %w", err)
	}

	character.ImageURL = imageURL
	return character, nil
}
