package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/willemhelmet/prompt-pugilists/internal/models"
	"github.com/willemhelmet/prompt-pugilists/pkg/database"
)

type BattleRepository struct {
	db *database.DB
}

func NewBattleRepository(db *database.DB) *BattleRepository {
	return &BattleRepository{db: db}
}

// Archive 완료된 전투를 JSON 문서로 보존
func (r *BattleRepository) Archive(battle *models.Battle) error {
	data, err := json.Marshal(battle)
	if err != nil {
		return fmt.Errorf("failed to marshal battle: %w", err)
	}

	query := `
		INSERT INTO battles (id, room_id, winner_id, win_condition, battle_data, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET winner_id = EXCLUDED.winner_id,
		    win_condition = EXCLUDED.win_condition,
		    battle_data = EXCLUDED.battle_data,
		    completed_at = EXCLUDED.completed_at
	`

	_, err = r.db.Exec(query,
		battle.ID,
		battle.RoomID,
		battle.WinnerID,
		battle.WinCondition,
		data,
		battle.CreatedAt,
		battle.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to archive battle: %w", err)
	}

	return nil
}

// FindByRoomID 룸의 보존된 전투 조회. 없으면 (nil, nil)
func (r *BattleRepository) FindByRoomID(roomID string) (*models.Battle, error) {
	query := `SELECT battle_data FROM battles WHERE room_id = $1 ORDER BY created_at DESC LIMIT 1`

	var data []byte
	err := r.db.QueryRow(query, roomID).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find battle: %w", err)
	}

	battle := &models.Battle{}
	if err := json.Unmarshal(data, battle); err != nil {
		return nil, fmt.Errorf("failed to unmarshal battle: %w", err)
	}

	return battle, nil
}
