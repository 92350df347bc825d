package models

import "time"

type RoomState string

const (
	RoomStateWaiting           RoomState = "waiting"
	RoomStateEnvironmentSelect RoomState = "environment_select"
	RoomStateCharacterSelect   RoomState = "character_select"
	RoomStateBattle            RoomState = "battle"
	RoomStateCompleted         RoomState = "completed"
)

type PlayerSlot string

const (
	SlotPlayer1 PlayerSlot = "player1"
	SlotPlayer2 PlayerSlot = "player2"
)

// Opponent 반대편 슬롯 반환
func (s PlayerSlot) Opponent() PlayerSlot {
	if s == SlotPlayer1 {
		return SlotPlayer2
	}
	return SlotPlayer1
}

// PlayerConnection 룸에 참가한 플레이어 연결 정보
// playerId는 논리적 식별자로 connectionId와 분리 (재접속 대비)
type PlayerConnection struct {
	ConnectionID string  `json:"connectionId"`
	PlayerID     string  `json:"playerId"`
	Username     string  `json:"username"`
	CharacterID  *string `json:"characterId"`
	Ready        bool    `json:"ready"`
}

type RoomPlayers struct {
	Player1 *PlayerConnection `json:"player1"`
	Player2 *PlayerConnection `json:"player2"`
}

// Room 게임 세션 단위. id는 6자리 룸 코드이며 브로드캐스트 채널 이름으로도 사용
type Room struct {
	ID                  string      `json:"id"`
	HostConnectionID    string      `json:"hostConnectionId"`
	Players             RoomPlayers `json:"players"`
	State               RoomState   `json:"state"`
	Environment         string      `json:"environment"`
	EnvironmentImageURL string      `json:"environmentImageUrl"`
	Battle              *Battle     `json:"battle"`
	CreatedAt           time.Time   `json:"createdAt"`
	ExpiresAt           time.Time   `json:"expiresAt"`
}

// Slot 슬롯의 플레이어 반환
func (r *Room) Slot(slot PlayerSlot) *PlayerConnection {
	if slot == SlotPlayer1 {
		return r.Players.Player1
	}
	return r.Players.Player2
}

// IsFull 양쪽 슬롯이 모두 찼는지 확인
func (r *Room) IsFull() bool {
	return r.Players.Player1 != nil && r.Players.Player2 != nil
}

// IsExpired 만료 여부 확인
func (r *Room) IsExpired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
