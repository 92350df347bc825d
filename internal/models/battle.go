package models

import "time"

type WinCondition string

const (
	WinConditionHPDepleted WinCondition = "hp_depleted"
	WinConditionForfeit    WinCondition = "forfeit"
)

type BattlePlayer struct {
	PlayerID  string    `json:"playerId"`
	Character Character `json:"character"`
	CurrentHP int       `json:"currentHp"`
	MaxHP     int       `json:"maxHp"`
}

// BattleState 라운드마다 리졸버에 전달되는 서사 메모리
// 병합이 아니라 리졸루션마다 통째로 교체된다
type BattleState struct {
	EnvironmentDescription string   `json:"environmentDescription"`
	Player1Condition       string   `json:"player1Condition"`
	Player2Condition       string   `json:"player2Condition"`
	PreviousEvents         []string `json:"previousEvents"`
}

type PendingAction struct {
	ActionText  string    `json:"actionText"`
	SubmittedAt time.Time `json:"submittedAt"`
}

type PendingActions struct {
	Player1 *PendingAction `json:"player1"`
	Player2 *PendingAction `json:"player2"`
}

type DiceRoll struct {
	Player   PlayerSlot `json:"player"`
	Purpose  string     `json:"purpose"`
	Formula  string     `json:"formula"`
	Result   int        `json:"result"`
	Modifier int        `json:"modifier"`
}

// BattleResolution 한 라운드 결과의 불변 기록
// HP 변화량은 음수가 데미지. 오케스트레이터는 수치를 검증하지 않고 적용만 한다
type BattleResolution struct {
	Player1Action   string      `json:"player1Action"`
	Player2Action   string      `json:"player2Action"`
	Interpretation  string      `json:"interpretation"`
	AnnouncerText   string      `json:"announcerText"`
	Player1HPChange int         `json:"player1HpChange"`
	Player2HPChange int         `json:"player2HpChange"`
	NewBattleState  BattleState `json:"newBattleState"`
	VideoPrompt     string      `json:"videoPrompt"`
	DiceRolls       []DiceRoll  `json:"diceRolls"`
	Timestamp       time.Time   `json:"timestamp"`
}

// Battle 룸당 정확히 하나 생성되는 전투 상태
type Battle struct {
	ID                string             `json:"id"`
	RoomID            string             `json:"roomId"`
	Player1           BattlePlayer       `json:"player1"`
	Player2           BattlePlayer       `json:"player2"`
	CurrentState      BattleState        `json:"currentState"`
	PendingActions    PendingActions     `json:"pendingActions"`
	ResolutionHistory []BattleResolution `json:"resolutionHistory"`
	WinnerID          *string            `json:"winnerId"`
	WinCondition      *WinCondition      `json:"winCondition"`
	CreatedAt         time.Time          `json:"createdAt"`
	CompletedAt       *time.Time         `json:"completedAt"`

	// 라운드 해석 중 추가 액션 제출을 막는 플래그 (JSON 직렬화 제외)
	Resolving bool `json:"-"`
}

// SlotPlayer 슬롯의 전투 플레이어 반환
func (b *Battle) SlotPlayer(slot PlayerSlot) *BattlePlayer {
	if slot == SlotPlayer1 {
		return &b.Player1
	}
	return &b.Player2
}

// PendingAction 슬롯의 대기 액션 반환
func (b *Battle) PendingAction(slot PlayerSlot) *PendingAction {
	if slot == SlotPlayer1 {
		return b.PendingActions.Player1
	}
	return b.PendingActions.Player2
}

// IsDecided 승부가 결정됐는지 확인
func (b *Battle) IsDecided() bool {
	return b.WinnerID != nil
}

// RoundNumber 현재 라운드 번호 (히스토리 길이 + 1)
func (b *Battle) RoundNumber() int {
	return len(b.ResolutionHistory) + 1
}
