package game

import (
	"github.com/willemhelmet/prompt-pugilists/internal/models"
)

// 클라이언트 → 서버 이벤트
const (
	EventRoomCreate      = "room:create"
	EventRoomJoin        = "room:join"
	EventCharacterSelect = "character:select"
	EventPlayerReady     = "player:ready"
	EventBattleAction    = "battle:action"
	EventGenerateAction  = "battle:generate_action"
	EventBattleForfeit   = "battle:forfeit"
)

// 서버 → 클라이언트 이벤트
const (
	EventRoomCreated       = "room:created"
	EventRoomPlayerJoined  = "room:player_joined"
	EventRoomPlayerLeft    = "room:player_left"
	EventRoomFull          = "room:full"
	EventRoomError         = "room:error"
	EventCharacterSelected = "character:selected"
	EventPlayerReadyState  = "player:ready_state"
	EventBattleStart       = "battle:start"
	EventRequestActions    = "battle:request_actions"
	EventActionReceived    = "battle:action_received"
	EventBattleResolving   = "battle:resolving"
	EventRoundComplete     = "battle:round_complete"
	EventBattleEnd         = "battle:end"
	EventActionGenerated   = "battle:action_generated"
)

type CreateRoomPayload struct {
	Environment         string `json:"environment"`
	EnvironmentImageURL string `json:"environmentImageUrl"`
}

type JoinRoomPayload struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
}

type SelectCharacterPayload struct {
	CharacterID string `json:"characterId"`
}

type ActionPayload struct {
	ActionText string `json:"actionText"`
}

type RoomCreatedPayload struct {
	RoomID string       `json:"roomId"`
	Room   *models.Room `json:"room"`
}

type PlayerJoinedPayload struct {
	Player *models.PlayerConnection `json:"player"`
	Slot   models.PlayerSlot        `json:"slot"`
	Room   *models.Room             `json:"room"`
}

type PlayerLeftPayload struct {
	PlayerID string            `json:"playerId"`
	Slot     models.PlayerSlot `json:"slot"`
}

type RoomFullPayload struct {
	Room *models.Room `json:"room"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type CharacterSelectedPayload struct {
	PlayerID  string            `json:"playerId"`
	Slot      models.PlayerSlot `json:"slot"`
	Character *models.Character `json:"character"`
}

type ReadyStatePayload struct {
	PlayerID string            `json:"playerId"`
	Slot     models.PlayerSlot `json:"slot"`
	Ready    bool              `json:"ready"`
}

type BattleStartPayload struct {
	Battle *models.Battle `json:"battle"`
}

type RequestActionsPayload struct {
	TimeLimit int `json:"timeLimit"` // 초 단위
	Round     int `json:"round"`
}

type ActionReceivedPayload struct {
	PlayerID string `json:"playerId"`
}

type RoundCompletePayload struct {
	Resolution *models.BattleResolution `json:"resolution"`
	Battle     *models.Battle           `json:"battle"`
}

type BattleEndPayload struct {
	WinnerID     string                   `json:"winnerId"`
	WinCondition models.WinCondition      `json:"winCondition"`
	Resolution   *models.BattleResolution `json:"resolution"`
	Battle       *models.Battle           `json:"battle"`
}

type ActionGeneratedPayload struct {
	Suggestion string `json:"suggestion"`
}
