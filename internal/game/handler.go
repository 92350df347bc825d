package game

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/willemhelmet/prompt-pugilists/internal/battle"
	"github.com/willemhelmet/prompt-pugilists/internal/models"
	"github.com/willemhelmet/prompt-pugilists/internal/room"
	"github.com/willemhelmet/prompt-pugilists/internal/service"
	"github.com/willemhelmet/prompt-pugilists/internal/websocket"
	"github.com/willemhelmet/prompt-pugilists/pkg/ratelimit"
)

// defaultEnvironment 환경 설명이 비어 있을 때 사용
const defaultEnvironment = "A classic fighting arena surrounded by a roaring crowd"

// Broadcaster 게임 이벤트 송신 인터페이스 (websocket.Hub가 구현)
type Broadcaster interface {
	JoinRoom(roomID, connectionID string)
	LeaveRoom(roomID, connectionID string)
	SendToConnection(connectionID, msgType string, payload interface{})
	BroadcastToRoom(roomID, msgType string, payload interface{})
}

// CharacterFinder 캐릭터 조회 인터페이스 (repository.CharacterRepository가 구현)
type CharacterFinder interface {
	FindByID(id string) (*models.Character, error)
}

// BattleArchiver 종료된 전투 보존 인터페이스 (repository.BattleRepository가 구현)
type BattleArchiver interface {
	Archive(battle *models.Battle) error
}

// Handler 룸/전투 이벤트 오케스트레이터
// 룸 상태 변경은 전부 Store.WithRoom 잠금 아래에서 수행한다
type Handler struct {
	rooms      *room.Store
	engine     *battle.Engine
	hub        Broadcaster
	characters CharacterFinder
	archive    BattleArchiver

	suggestLimiter  *ratelimit.Limiter
	actionTimeLimit time.Duration
	disconnectGrace time.Duration

	logger *zap.Logger
}

// NewHandler 게임 핸들러 생성
func NewHandler(
	rooms *room.Store,
	engine *battle.Engine,
	hub Broadcaster,
	characters CharacterFinder,
	archive BattleArchiver,
	actionTimeLimit, disconnectGrace time.Duration,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		rooms:           rooms,
		engine:          engine,
		hub:             hub,
		characters:      characters,
		archive:         archive,
		suggestLimiter:  ratelimit.NewLimiter(5, 1),
		actionTimeLimit: actionTimeLimit,
		disconnectGrace: disconnectGrace,
		logger:          logger,
	}
}

// HandleMessage websocket.MessageHandler 구현
func (h *Handler) HandleMessage(client *websocket.Client, msgType string, payload []byte) {
	h.Dispatch(client.ConnectionID(), msgType, payload)
}

// HandleDisconnect websocket.MessageHandler 구현
func (h *Handler) HandleDisconnect(client *websocket.Client) {
	h.OnDisconnect(client.ConnectionID())
}

// Dispatch 이벤트 타입별 분기
func (h *Handler) Dispatch(connID, msgType string, payload []byte) {
	switch msgType {
	case EventRoomCreate:
		h.handleRoomCreate(connID, payload)
	case EventRoomJoin:
		h.handleRoomJoin(connID, payload)
	case EventCharacterSelect:
		h.handleCharacterSelect(connID, payload)
	case EventPlayerReady:
		h.handlePlayerReady(connID)
	case EventBattleAction:
		h.handleBattleAction(connID, payload)
	case EventGenerateAction:
		h.handleGenerateAction(connID)
	case EventBattleForfeit:
		h.handleForfeit(connID)
	default:
		h.sendError(connID, "unknown event type: "+msgType)
	}
}

func (h *Handler) handleRoomCreate(connID string, payload []byte) {
	var req CreateRoomPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			h.sendError(connID, "invalid payload")
			return
		}
	}

	env := strings.TrimSpace(req.Environment)
	if env == "" {
		env = defaultEnvironment
	}
	if len(env) > models.EnvironmentCharLimit {
		h.sendError(connID, "environment description too long")
		return
	}

	rm := h.rooms.CreateRoom(connID, env, req.EnvironmentImageURL)
	h.hub.JoinRoom(rm.ID, connID)

	h.logger.Info("Room created",
		zap.String("roomId", rm.ID),
		zap.String("hostConnectionId", connID))

	h.hub.SendToConnection(connID, EventRoomCreated, RoomCreatedPayload{
		RoomID: rm.ID,
		Room:   h.roomView(rm.ID),
	})
}

func (h *Handler) handleRoomJoin(connID string, payload []byte) {
	var req JoinRoomPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		h.sendError(connID, "invalid payload")
		return
	}

	roomID := strings.ToUpper(strings.TrimSpace(req.RoomID))
	username := strings.TrimSpace(req.Username)
	if username == "" {
		username = "Player"
	}

	player, err := h.rooms.JoinRoom(roomID, connID, username)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRoomNotFound):
			h.sendError(connID, "room not found")
		case errors.Is(err, service.ErrRoomFull):
			h.sendError(connID, "room is full")
		default:
			h.sendError(connID, "failed to join room")
		}
		return
	}

	h.hub.JoinRoom(roomID, connID)
	slot, _ := h.rooms.GetPlayerSlot(roomID, connID)

	h.logger.Info("Player joined room",
		zap.String("roomId", roomID),
		zap.String("playerId", player.PlayerID),
		zap.String("slot", string(slot)))

	h.hub.BroadcastToRoom(roomID, EventRoomPlayerJoined, PlayerJoinedPayload{
		Player: player,
		Slot:   slot,
		Room:   h.roomView(roomID),
	})

	if h.rooms.IsRoomFull(roomID) {
		h.rooms.SetRoomState(roomID, models.RoomStateCharacterSelect)
		h.hub.BroadcastToRoom(roomID, EventRoomFull, RoomFullPayload{
			Room: h.roomView(roomID),
		})
	}
}

func (h *Handler) handleCharacterSelect(connID string, payload []byte) {
	var req SelectCharacterPayload
	if err := json.Unmarshal(payload, &req); err != nil || req.CharacterID == "" {
		h.sendError(connID, "invalid payload")
		return
	}

	rm, ok := h.rooms.FindRoomByConnectionID(connID)
	if !ok {
		h.sendError(connID, "not in a room")
		return
	}
	roomID := rm.ID

	character, err := h.characters.FindByID(req.CharacterID)
	if err != nil {
		h.logger.Error("Failed to load character",
			zap.String("characterId", req.CharacterID),
			zap.Error(err))
		h.sendError(connID, "failed to load character")
		return
	}
	if character == nil {
		h.sendError(connID, "character not found")
		return
	}

	var playerID string
	var slot models.PlayerSlot
	err = h.rooms.WithRoom(roomID, func(r *models.Room) error {
		p, s, ok := playerFor(r, connID)
		if !ok {
			return service.ErrNotFound
		}
		p.CharacterID = &character.ID
		playerID, slot = p.PlayerID, s
		return nil
	})
	if err != nil {
		h.sendError(connID, "you are not seated in this room")
		return
	}

	h.hub.BroadcastToRoom(roomID, EventCharacterSelected, CharacterSelectedPayload{
		PlayerID:  playerID,
		Slot:      slot,
		Character: character,
	})
}

func (h *Handler) handlePlayerReady(connID string) {
	rm, ok := h.rooms.FindRoomByConnectionID(connID)
	if !ok {
		h.sendError(connID, "not in a room")
		return
	}
	roomID := rm.ID

	var playerID string
	var slot models.PlayerSlot
	var startBattle bool
	var char1ID, char2ID, p1ID, p2ID, environment string

	err := h.rooms.WithRoom(roomID, func(r *models.Room) error {
		p, s, ok := playerFor(r, connID)
		if !ok {
			return service.ErrNotFound
		}
		if p.CharacterID == nil {
			return service.ErrInvalidInput
		}
		p.Ready = true
		playerID, slot = p.PlayerID, s

		// 양측 모두 캐릭터 선택 및 준비 완료 시에만 전투 시작
		p1, p2 := r.Players.Player1, r.Players.Player2
		if r.Battle == nil && p1 != nil && p2 != nil &&
			p1.Ready && p2.Ready &&
			p1.CharacterID != nil && p2.CharacterID != nil {
			startBattle = true
			char1ID, char2ID = *p1.CharacterID, *p2.CharacterID
			p1ID, p2ID = p1.PlayerID, p2.PlayerID
			environment = r.Environment
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			h.sendError(connID, "select a character before readying up")
		} else {
			h.sendError(connID, "you are not seated in this room")
		}
		return
	}

	h.hub.BroadcastToRoom(roomID, EventPlayerReadyState, ReadyStatePayload{
		PlayerID: playerID,
		Slot:     slot,
		Ready:    true,
	})

	if startBattle {
		h.startBattle(roomID, char1ID, char2ID, p1ID, p2ID, environment)
	}
}

func (h *Handler) startBattle(roomID, char1ID, char2ID, p1ID, p2ID, environment string) {
	char1, err := h.characters.FindByID(char1ID)
	if err == nil && char1 == nil {
		err = service.ErrCharacterNotFound
	}
	var char2 *models.Character
	if err == nil {
		char2, err = h.characters.FindByID(char2ID)
		if err == nil && char2 == nil {
			err = service.ErrCharacterNotFound
		}
	}
	if err != nil {
		h.logger.Error("Failed to load characters for battle",
			zap.String("roomId", roomID),
			zap.Error(err))
		h.hub.BroadcastToRoom(roomID, EventRoomError, ErrorPayload{
			Message: "failed to start battle",
		})
		return
	}

	b := h.engine.CreateBattle(roomID, *char1, *char2, p1ID, p2ID, environment)

	var started bool
	_ = h.rooms.WithRoom(roomID, func(r *models.Room) error {
		if r.Battle != nil {
			return nil
		}
		r.Battle = b
		r.State = models.RoomStateBattle
		started = true
		return nil
	})
	if !started {
		return
	}

	h.logger.Info("Battle started",
		zap.String("roomId", roomID),
		zap.String("battleId", b.ID))

	h.hub.BroadcastToRoom(roomID, EventBattleStart, BattleStartPayload{
		Battle: battle.Snapshot(b),
	})
	h.requestActions(roomID, 1)
}

func (h *Handler) requestActions(roomID string, round int) {
	h.hub.BroadcastToRoom(roomID, EventRequestActions, RequestActionsPayload{
		TimeLimit: int(h.actionTimeLimit.Seconds()),
		Round:     round,
	})
}

func (h *Handler) handleBattleAction(connID string, payload []byte) {
	var req ActionPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		h.sendError(connID, "invalid payload")
		return
	}

	text := strings.TrimSpace(req.ActionText)
	if text == "" {
		h.sendError(connID, "action text is required")
		return
	}
	if len(text) > models.ActionCharLimit {
		h.sendError(connID, "action text too long")
		return
	}

	rm, ok := h.rooms.FindRoomByConnectionID(connID)
	if !ok {
		h.sendError(connID, "not in a room")
		return
	}
	roomID := rm.ID

	var playerID string
	var resolveNow bool
	var action1, action2 string
	var snap *models.Battle

	err := h.rooms.WithRoom(roomID, func(r *models.Room) error {
		if r.Battle == nil {
			return service.ErrNoActiveBattle
		}
		p, slot, ok := playerFor(r, connID)
		if !ok {
			return service.ErrNotFound
		}

		if err := h.engine.RecordAction(r.Battle, slot, text); err != nil {
			return err
		}
		playerID = p.PlayerID

		if h.engine.BothActionsSubmitted(r.Battle) {
			a1, a2, err := h.engine.BeginResolve(r.Battle)
			if err != nil {
				return err
			}
			resolveNow = true
			action1, action2 = a1, a2
			snap = battle.Snapshot(r.Battle)
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoActiveBattle):
			h.sendError(connID, "no active battle")
		case errors.Is(err, service.ErrBattleDecided):
			h.sendError(connID, "the battle is already over")
		case errors.Is(err, service.ErrRoundResolving):
			h.sendError(connID, "round is being resolved")
		case errors.Is(err, service.ErrNotFound):
			h.sendError(connID, "you are not seated in this room")
		default:
			h.sendError(connID, "failed to record action")
		}
		return
	}

	// 액션 내용은 숨기고 제출 사실만 알린다
	h.hub.BroadcastToRoom(roomID, EventActionReceived, ActionReceivedPayload{
		PlayerID: playerID,
	})

	if resolveNow {
		h.hub.BroadcastToRoom(roomID, EventBattleResolving, nil)
		go h.resolveRound(roomID, snap, action1, action2)
	}
}

// resolveRound 리졸버 호출은 룸 잠금 밖에서, 결과 적용은 잠금 안에서 수행
func (h *Handler) resolveRound(roomID string, snap *models.Battle, action1, action2 string) {
	resolution := h.engine.Resolve(context.Background(), snap, action1, action2)

	var applied bool
	var winnerID *string
	var view *models.Battle
	var round int

	_ = h.rooms.WithRoom(roomID, func(r *models.Room) error {
		if r.Battle == nil {
			return nil
		}

		applied = h.engine.CompleteResolve(r.Battle, resolution)
		if !applied {
			// 해석 중 몰수로 종료됨. battle:end는 몰수 경로에서 이미 송신
			return nil
		}

		winnerID = h.engine.CheckVictory(r.Battle)
		if winnerID != nil {
			h.engine.MarkVictory(r.Battle, *winnerID, models.WinConditionHPDepleted)
			r.State = models.RoomStateCompleted
		} else {
			h.engine.ClearPendingActions(r.Battle)
			round = r.Battle.RoundNumber()
		}
		view = battle.Snapshot(r.Battle)
		return nil
	})
	if !applied {
		return
	}

	if winnerID != nil {
		h.hub.BroadcastToRoom(roomID, EventBattleEnd, BattleEndPayload{
			WinnerID:     *winnerID,
			WinCondition: models.WinConditionHPDepleted,
			Resolution:   resolution,
			Battle:       view,
		})
		h.archiveBattle(view)
		return
	}

	h.hub.BroadcastToRoom(roomID, EventRoundComplete, RoundCompletePayload{
		Resolution: resolution,
		Battle:     view,
	})
	h.requestActions(roomID, round)
}

func (h *Handler) handleGenerateAction(connID string) {
	if !h.suggestLimiter.Allow(connID) {
		h.sendError(connID, "too many suggestion requests")
		return
	}

	rm, ok := h.rooms.FindRoomByConnectionID(connID)
	if !ok {
		h.sendError(connID, "not in a room")
		return
	}
	roomID := rm.ID

	var playerID string
	var snap *models.Battle
	err := h.rooms.WithRoom(roomID, func(r *models.Room) error {
		if r.Battle == nil {
			return service.ErrNoActiveBattle
		}
		p, _, ok := playerFor(r, connID)
		if !ok {
			return service.ErrNotFound
		}
		playerID = p.PlayerID
		snap = battle.Snapshot(r.Battle)
		return nil
	})
	if err != nil {
		if errors.Is(err, service.ErrNoActiveBattle) {
			h.sendError(connID, "no active battle")
		} else {
			h.sendError(connID, "you are not seated in this room")
		}
		return
	}

	// 제안은 요청자에게만 전송
	go func() {
		suggestion := h.engine.SuggestAction(context.Background(), snap, playerID)
		h.hub.SendToConnection(connID, EventActionGenerated, ActionGeneratedPayload{
			Suggestion: suggestion,
		})
	}()
}

func (h *Handler) handleForfeit(connID string) {
	rm, ok := h.rooms.FindRoomByConnectionID(connID)
	if !ok {
		h.sendError(connID, "not in a room")
		return
	}
	h.forfeit(rm.ID, connID, false)
}

// forfeit 몰수 공통 경로. 슬롯은 연결 ID로 찾으므로 유예 중 다른 연결로
// 재입장한 플레이어는 몰수되지 않는다. silent면 에러 응답을 보내지 않는다
func (h *Handler) forfeit(roomID, connID string, silent bool) {
	var resolution *models.BattleResolution
	var winnerID string
	var view *models.Battle

	err := h.rooms.WithRoom(roomID, func(r *models.Room) error {
		if r.Battle == nil {
			return service.ErrNoActiveBattle
		}
		_, slot, ok := playerFor(r, connID)
		if !ok {
			return service.ErrNotFound
		}
		resolution = h.engine.Forfeit(r.Battle, slot)
		if resolution == nil {
			// 이미 승부가 결정됨
			return nil
		}

		r.State = models.RoomStateCompleted
		winnerID = *r.Battle.WinnerID
		view = battle.Snapshot(r.Battle)
		return nil
	})
	if err != nil {
		if !silent {
			if errors.Is(err, service.ErrNoActiveBattle) {
				h.sendError(connID, "no active battle")
			} else if errors.Is(err, service.ErrNotFound) {
				h.sendError(connID, "you are not seated in this room")
			}
		}
		return
	}
	if resolution == nil {
		return
	}

	h.logger.Info("Battle forfeited",
		zap.String("roomId", roomID),
		zap.String("winnerId", winnerID))

	h.hub.BroadcastToRoom(roomID, EventBattleEnd, BattleEndPayload{
		WinnerID:     winnerID,
		WinCondition: models.WinConditionForfeit,
		Resolution:   resolution,
		Battle:       view,
	})
	h.archiveBattle(view)
}

// OnDisconnect 전투 중 이탈은 유예 시간 후 자동 몰수, 대기 중이면 슬롯 반환
func (h *Handler) OnDisconnect(connID string) {
	rm, ok := h.rooms.FindRoomByConnectionID(connID)
	if !ok {
		return
	}
	roomID := rm.ID
	h.hub.LeaveRoom(roomID, connID)

	var inBattle bool
	var leftPlayer *models.PlayerConnection
	var leftSlot models.PlayerSlot
	var removeRoom bool

	_ = h.rooms.WithRoom(roomID, func(r *models.Room) error {
		if r.Battle != nil && !r.Battle.IsDecided() {
			if _, _, seated := playerFor(r, connID); seated {
				inBattle = true
			}
			return nil
		}

		// 전투 전/후에는 슬롯을 비워 다른 플레이어가 들어올 수 있게 한다
		if p, slot, seated := playerFor(r, connID); seated {
			leftPlayer, leftSlot = p, slot
			if slot == models.SlotPlayer1 {
				r.Players.Player1 = nil
			} else {
				r.Players.Player2 = nil
			}
		}
		if r.HostConnectionID == connID && r.Players.Player1 == nil && r.Players.Player2 == nil {
			removeRoom = true
		}
		return nil
	})

	if inBattle {
		h.logger.Info("Player disconnected mid-battle, starting forfeit grace",
			zap.String("roomId", roomID),
			zap.String("connectionId", connID),
			zap.Duration("grace", h.disconnectGrace))
		time.AfterFunc(h.disconnectGrace, func() {
			h.forfeit(roomID, connID, true)
		})
		return
	}

	if leftPlayer != nil {
		h.hub.BroadcastToRoom(roomID, EventRoomPlayerLeft, PlayerLeftPayload{
			PlayerID: leftPlayer.PlayerID,
			Slot:     leftSlot,
		})
	}
	if removeRoom {
		h.rooms.RemoveRoom(roomID)
		h.logger.Info("Removed empty room", zap.String("roomId", roomID))
	}
}

func (h *Handler) archiveBattle(b *models.Battle) {
	if h.archive == nil || b == nil {
		return
	}
	go func() {
		if err := h.archive.Archive(b); err != nil {
			h.logger.Error("Failed to archive battle",
				zap.String("battleId", b.ID),
				zap.Error(err))
		}
	}()
}

func (h *Handler) sendError(connID, message string) {
	h.hub.SendToConnection(connID, EventRoomError, ErrorPayload{Message: message})
}

// roomView 브로드캐스트용 룸 복사본 (마샬링 경합 방지)
func (h *Handler) roomView(roomID string) *models.Room {
	var view *models.Room
	_ = h.rooms.WithRoom(roomID, func(r *models.Room) error {
		cp := *r
		if r.Players.Player1 != nil {
			p := *r.Players.Player1
			cp.Players.Player1 = &p
		}
		if r.Players.Player2 != nil {
			p := *r.Players.Player2
			cp.Players.Player2 = &p
		}
		if r.Battle != nil {
			cp.Battle = battle.Snapshot(r.Battle)
		}
		view = &cp
		return nil
	})
	return view
}

func playerFor(r *models.Room, connID string) (*models.PlayerConnection, models.PlayerSlot, bool) {
	if p := r.Players.Player1; p != nil && p.ConnectionID == connID {
		return p, models.SlotPlayer1, true
	}
	if p := r.Players.Player2; p != nil && p.ConnectionID == connID {
		return p, models.SlotPlayer2, true
	}
	return nil, "", false
}
