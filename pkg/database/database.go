package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/willemhelmet/prompt-pugilists/pkg/logger"
)

type DB struct {
	*sql.DB
}

// Connect 데이터베이스 연결 및 스키마 초기화
func Connect(databaseURL string) (*DB, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL is empty")
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// 연결 풀 설정
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	wrapped := &DB{db}
	if err := wrapped.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	logger.Info("Database connected successfully")

	return wrapped, nil
}

// migrate 테이블 생성 (존재하지 않는 경우만)
func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS characters (
		id TEXT PRIMARY KEY,
		user_id TEXT,
		name TEXT NOT NULL,
		image_url TEXT NOT NULL DEFAULT '',
		text_prompt TEXT NOT NULL,
		reference_image_url TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS battles (
		id TEXT PRIMARY KEY,
		room_id TEXT NOT NULL,
		winner_id TEXT,
		win_condition TEXT,
		battle_data JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		completed_at TIMESTAMPTZ
	);

	CREATE INDEX IF NOT EXISTS idx_characters_user_id ON characters(user_id);
	CREATE INDEX IF NOT EXISTS idx_battles_room_id ON battles(room_id);
	`

	_, err := db.Exec(schema)
	return err
}

// Close 데이터베이스 연결 종료
func (db *DB) Close() error {
	return db.DB.Close()
}
