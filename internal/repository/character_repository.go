package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/willemhelmet/prompt-pugilists/internal/models"
	"github.com/willemhelmet/prompt-pugilists/pkg/database"
)

type CharacterRepository struct {
	db *database.DB
}

func NewCharacterRepository(db *database.DB) *CharacterRepository {
	return &CharacterRepository{db: db}
}

// Create 새 캐릭터 생성
func (r *CharacterRepository) Create(userID string, req *models.CreateCharacterRequest) (*models.Character, error) {
	query := `
		INSERT INTO characters (id, user_id, name, image_url, text_prompt, reference_image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING id, user_id, name, image_url, text_prompt, reference_image_url, created_at, updated_at
	`

	var ref *string
	if req.ReferenceImageURL != "" {
		ref = &req.ReferenceImageURL
	}

	character := &models.Character{}
	err := r.db.QueryRow(query,
		uuid.New().String(),
		userID,
		req.Name,
		req.ImageURL,
		req.TextPrompt,
		ref,
		time.Now(),
	).Scan(
		&character.ID,
		&character.UserID,
		&character.Name,
		&character.ImageURL,
		&character.TextPrompt,
		&character.ReferenceImageURL,
		&character.CreatedAt,
		&character.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create character: %w", err)
	}

	return character, nil
}

// FindByID ID로 캐릭터 조회. 없으면 (nil, nil)
func (r *CharacterRepository) FindByID(id string) (*models.Character, error) {
	query := `
		SELECT id, user_id, name, image_url, text_prompt, reference_image_url, created_at, updated_at
		FROM characters
		WHERE id = $1
	`

	character := &models.Character{}
	err := r.db.QueryRow(query, id).Scan(
		&character.ID,
		&character.UserID,
		&character.Name,
		&character.ImageURL,
		&character.TextPrompt,
		&character.ReferenceImageURL,
		&character.CreatedAt,
		&character.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find character: %w", err)
	}

	return character, nil
}

// List 전체 캐릭터 목록 (최신순)
func (r *CharacterRepository) List(limit, offset int) ([]*models.Character, error) {
	query := `
		SELECT id, user_id, name, image_url, text_prompt, reference_image_url, created_at, updated_at
		FROM characters
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}
	defer rows.Close()

	var characters []*models.Character
	for rows.Next() {
		character := &models.Character{}
		if err := rows.Scan(
			&character.ID,
			&character.UserID,
			&character.Name,
			&character.ImageURL,
			&character.TextPrompt,
			&character.ReferenceImageURL,
			&character.CreatedAt,
			&character.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan character: %w", err)
		}
		characters = append(characters, character)
	}

	return characters, rows.Err()
}

// Update 캐릭터 수정
func (r *CharacterRepository) Update(id string, req *models.UpdateCharacterRequest) (*models.Character, error) {
	query := `
		UPDATE characters
		SET name = $1, image_url = $2, text_prompt = $3, reference_image_url = $4, updated_at = $5
		WHERE id = $6
		RETURNING id, user_id, name, image_url, text_prompt, reference_image_url, created_at, updated_at
	`

	var ref *string
	if req.ReferenceImageURL != "" {
		ref = &req.ReferenceImageURL
	}

	character := &models.Character{}
	err := r.db.QueryRow(query,
		req.Name,
		req.ImageURL,
		req.TextPrompt,
		ref,
		time.Now(),
		id,
	).Scan(
		&character.ID,
		&character.UserID,
		&character.Name,
		&character.ImageURL,
		&character.TextPrompt,
		&character.ReferenceImageURL,
		&character.CreatedAt,
		&character.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update character: %w", err)
	}

	return character, nil
}

// UpdateImageURL 업로드된 이미지 URL 반영
func (r *CharacterRepository) UpdateImageURL(id, imageURL string) error {
	query := `UPDATE characters SET image_url = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Exec(query, imageURL, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update character image: %w", err)
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete 캐릭터 삭제. 없으면 false
func (r *CharacterRepository) Delete(id string) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM characters WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete character: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check deletion: %w", err)
	}

	return affected > 0, nil
}
