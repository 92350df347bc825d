package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/willemhelmet/prompt-pugilists/internal/models"
	"github.com/willemhelmet/prompt-pugilists/pkg/database"
)

// uniqueViolation PostgreSQL unique 제약 위반 코드
const uniqueViolation = "23505"

type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create 새 사용자 생성. username 중복이면 (nil, nil)
func (r *UserRepository) Create(username, email, passwordHash string) (*models.User, error) {
	query := `
		INSERT INTO users (id, username, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, username, email, password_hash, created_at
	`

	user := &models.User{}
	err := r.db.QueryRow(query,
		uuid.New().String(),
		username,
		email,
		passwordHash,
		time.Now(),
	).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == uniqueViolation {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// FindByID ID로 사용자 조회. 없으면 (nil, nil)
func (r *UserRepository) FindByID(id string) (*models.User, error) {
	return r.findOne(`SELECT id, username, email, password_hash, created_at FROM users WHERE id = $1`, id)
}

// FindByUsername username으로 사용자 조회. 없으면 (nil, nil)
func (r *UserRepository) FindByUsername(username string) (*models.User, error) {
	return r.findOne(`SELECT id, username, email, password_hash, created_at FROM users WHERE username = $1`, username)
}

func (r *UserRepository) findOne(query string, arg interface{}) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRow(query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}
