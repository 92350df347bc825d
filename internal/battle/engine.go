package battle

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/willemhelmet/prompt-pugilists/internal/models"
	"github.com/willemhelmet/prompt-pugilists/internal/service"
	"github.com/willemhelmet/prompt-pugilists/pkg/dice"
)

// CombatResolver 외부 심판 (LLM API). 실패할 수 있으며 폴백은 엔진이 담당
type CombatResolver interface {
	ResolveCombat(ctx context.Context, battle *models.Battle, action1, action2 string) (*models.BattleResolution, error)
	SuggestAction(ctx context.Context, battle *models.Battle, playerID string) (string, error)
}

// Engine 룸 내 전투 수명주기 관리
type Engine struct {
	resolver        CombatResolver
	roller          *dice.Roller
	resolverTimeout time.Duration
	logger          *zap.Logger
}

// NewEngine 전투 엔진 생성
func NewEngine(resolver CombatResolver, resolverTimeout time.Duration) *Engine {
	logger, _ := zap.NewProduction()
	return &Engine{
		resolver:        resolver,
		roller:          dice.NewRoller(),
		resolverTimeout: resolverTimeout,
		logger:          logger,
	}
}

// CreateBattle 양측 준비 완료 시 룸당 한 번 생성되는 초기 전투 상태
func (e *Engine) CreateBattle(
	roomID string,
	player1Character, player2Character models.Character,
	player1ID, player2ID string,
	environment string,
) *models.Battle {
	initialState := models.BattleState{
		EnvironmentDescription: environment,
		Player1Condition:       fmt.Sprintf("%s stands ready for battle", player1Character.Name),
		Player2Condition:       fmt.Sprintf("%s stands ready for battle", player2Character.Name),
		PreviousEvents:         []string{},
	}

	return &models.Battle{
		ID:     uuid.New().String(),
		RoomID: roomID,
		Player1: models.BattlePlayer{
			PlayerID:  player1ID,
			Character: player1Character,
			CurrentHP: models.MaxHP,
			MaxHP:     models.MaxHP,
		},
		Player2: models.BattlePlayer{
			PlayerID:  player2ID,
			Character: player2Character,
			CurrentHP: models.MaxHP,
			MaxHP:     models.MaxHP,
		},
		CurrentState:      initialState,
		ResolutionHistory: []models.BattleResolution{},
		CreatedAt:         time.Now(),
	}
}

// RecordAction 대기 슬롯에 액션 기록 (재제출 시 덮어쓰기)
// 승부가 결정됐거나 라운드 해석 중이면 거부
func (e *Engine) RecordAction(battle *models.Battle, slot models.PlayerSlot, actionText string) error {
	if battle.IsDecided() {
		return service.ErrBattleDecided
	}
	if battle.Resolving {
		return service.ErrRoundResolving
	}

	action := &models.PendingAction{
		ActionText:  actionText,
		SubmittedAt: time.Now(),
	}
	if slot == models.SlotPlayer1 {
		battle.PendingActions.Player1 = action
	} else {
		battle.PendingActions.Player2 = action
	}
	return nil
}

// BothActionsSubmitted 양쪽 대기 슬롯이 모두 찼는지 확인
func (e *Engine) BothActionsSubmitted(battle *models.Battle) bool {
	return battle.PendingActions.Player1 != nil && battle.PendingActions.Player2 != nil
}

// BeginResolve 해석 시작 표시 후 양측 액션 텍스트 반환
// 룸 잠금을 쥔 채로 호출해야 한다 (§ 동시성: 해석 중 제출 차단)
func (e *Engine) BeginResolve(battle *models.Battle) (action1, action2 string, err error) {
	if battle.IsDecided() {
		return "", "", service.ErrBattleDecided
	}
	if battle.Resolving {
		return "", "", service.ErrRoundResolving
	}
	if !e.BothActionsSubmitted(battle) {
		return "", "", fmt.Errorf("both actions not submitted")
	}

	battle.Resolving = true
	return battle.PendingActions.Player1.ActionText, battle.PendingActions.Player2.ActionText, nil
}

// Resolve 외부 리졸버 호출. 타임아웃 포함 어떤 실패에도 로컬 폴백으로
// 구조적으로 유효한 결과를 반환한다 - 라운드는 반드시 완료된다
// 룸 잠금 없이 호출할 것 (네트워크 I/O). battle은 스냅샷이어야 한다
func (e *Engine) Resolve(ctx context.Context, battle *models.Battle, action1, action2 string) *models.BattleResolution {
	ctx, cancel := context.WithTimeout(ctx, e.resolverTimeout)
	defer cancel()

	resolution, err := e.resolver.ResolveCombat(ctx, battle, action1, action2)
	if err != nil {
		e.logger.Warn("Combat resolver failed, using local fallback",
			zap.String("battleId", battle.ID),
			zap.Error(err))
		return e.fallbackResolve(battle, action1, action2)
	}

	return resolution
}

// CompleteResolve 해석 결과 적용 및 다음 라운드 준비
// 룸 잠금을 쥔 채로 호출. 해석 중 몰수로 승부가 끝났으면 결과를 버린다
func (e *Engine) CompleteResolve(battle *models.Battle, resolution *models.BattleResolution) bool {
	battle.Resolving = false

	if battle.IsDecided() {
		e.logger.Info("Dropping resolution, battle decided mid-resolve",
			zap.String("battleId", battle.ID))
		return false
	}

	e.ApplyResolution(battle, resolution)
	return true
}

// ApplyResolution HP 변화 적용 (0..maxHp 클램프), 서사 상태 통째 교체, 히스토리 추가
func (e *Engine) ApplyResolution(battle *models.Battle, resolution *models.BattleResolution) {
	if battle.IsDecided() {
		return
	}

	battle.Player1.CurrentHP = clampHP(battle.Player1.CurrentHP+resolution.Player1HPChange, battle.Player1.MaxHP)
	battle.Player2.CurrentHP = clampHP(battle.Player2.CurrentHP+resolution.Player2HPChange, battle.Player2.MaxHP)

	battle.CurrentState = resolution.NewBattleState
	battle.ResolutionHistory = append(battle.ResolutionHistory, *resolution)
}

// ClearPendingActions 다음 라운드 액션 요청 직전에 호출
func (e *Engine) ClearPendingActions(battle *models.Battle) {
	battle.PendingActions.Player1 = nil
	battle.PendingActions.Player2 = nil
}

// CheckVictory HP 0 도달 시 상대 playerId 반환, 아니면 nil
// player1을 먼저 검사하므로 동시 0/0이면 player2 승 (의도적으로 보존된 타이브레이크)
func (e *Engine) CheckVictory(battle *models.Battle) *string {
	if battle.Player1.CurrentHP <= 0 {
		return &battle.Player2.PlayerID
	}
	if battle.Player2.CurrentHP <= 0 {
		return &battle.Player1.PlayerID
	}
	return nil
}

// MarkVictory 승자 기록. 터미널 상태이며 한 번만 기록된다
func (e *Engine) MarkVictory(battle *models.Battle, winnerID string, condition models.WinCondition) {
	if battle.IsDecided() {
		return
	}

	now := time.Now()
	battle.WinnerID = &winnerID
	battle.WinCondition = &condition
	battle.CompletedAt = &now
}

// Forfeit 몰수 처리. 몰수자 HP를 0으로 (표시 일관성), 승자 기록,
// 다운스트림이 렌더링할 최종 리졸루션 반환 (히스토리 마지막 또는 합성)
// 이미 승부가 결정됐으면 nil 반환
func (e *Engine) Forfeit(battle *models.Battle, forfeitingSlot models.PlayerSlot) *models.BattleResolution {
	if battle.IsDecided() {
		return nil
	}

	forfeiter := battle.SlotPlayer(forfeitingSlot)
	winner := battle.SlotPlayer(forfeitingSlot.Opponent())

	forfeiter.CurrentHP = 0
	e.MarkVictory(battle, winner.PlayerID, models.WinConditionForfeit)

	if n := len(battle.ResolutionHistory); n > 0 {
		final := battle.ResolutionHistory[n-1]
		return &final
	}

	// 라운드가 하나도 없었으면 템플릿으로 합성
	return &models.BattleResolution{
		Interpretation: fmt.Sprintf("%s has forfeited the battle. %s wins!",
			forfeiter.Character.Name, winner.Character.Name),
		AnnouncerText: fmt.Sprintf("It's OVER! %s throws in the towel! %s wins by FORFEIT!",
			forfeiter.Character.Name, winner.Character.Name),
		NewBattleState: battle.CurrentState,
		VideoPrompt: fmt.Sprintf("%s stands victorious as %s concedes defeat.",
			winner.Character.Name, forfeiter.Character.Name),
		DiceRolls: []models.DiceRoll{},
		Timestamp: time.Now(),
	}
}

// SuggestAction 액션 제안. 리졸버 실패 시 템플릿 폴백
func (e *Engine) SuggestAction(ctx context.Context, battle *models.Battle, playerID string) string {
	ctx, cancel := context.WithTimeout(ctx, e.resolverTimeout)
	defer cancel()

	suggestion, err := e.resolver.SuggestAction(ctx, battle, playerID)
	if err != nil {
		e.logger.Warn("Action suggestion failed, using template fallback",
			zap.String("battleId", battle.ID),
			zap.Error(err))

		player := &battle.Player1
		if battle.Player2.PlayerID == playerID {
			player = &battle.Player2
		}
		return fmt.Sprintf("%s channels their energy and launches a powerful attack!", player.Character.Name)
	}

	return suggestion
}

// Snapshot 리졸버 호출 동안 경합 없이 읽을 수 있는 전투 복사본
func Snapshot(battle *models.Battle) *models.Battle {
	clone := *battle

	clone.CurrentState.PreviousEvents = append([]string(nil), battle.CurrentState.PreviousEvents...)
	clone.ResolutionHistory = append([]models.BattleResolution(nil), battle.ResolutionHistory...)

	if battle.PendingActions.Player1 != nil {
		a := *battle.PendingActions.Player1
		clone.PendingActions.Player1 = &a
	}
	if battle.PendingActions.Player2 != nil {
		a := *battle.PendingActions.Player2
		clone.PendingActions.Player2 = &a
	}
	if battle.WinnerID != nil {
		w := *battle.WinnerID
		clone.WinnerID = &w
	}
	if battle.WinCondition != nil {
		c := *battle.WinCondition
		clone.WinCondition = &c
	}
	if battle.CompletedAt != nil {
		t := *battle.CompletedAt
		clone.CompletedAt = &t
	}

	return &clone
}

func clampHP(hp, maxHP int) int {
	if hp < 0 {
		return 0
	}
	if hp > maxHP {
		return maxHP
	}
	return hp
}
