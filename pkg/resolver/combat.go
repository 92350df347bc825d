package resolver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/willemhelmet/prompt-pugilists/internal/models"
	"github.com/willemhelmet/prompt-pugilists/pkg/logger"
)

// combatSystemPrompt 심판 역할 시스템 프롬프트
const combatSystemPrompt = `You are the Dungeon Master for a high-stakes magical duel. Your role is to:

1. Interpret both players' actions creatively
2. Evaluate how they interact (do they clash? complement? counter?)
3. Determine outcomes using dramatic narrative and dice mechanics
4. Update HP and narrative state
5. Create a cinematic video prompt (2-3 sentences)

Guidelines:
- Both actions happen simultaneously - there is NO turn order
- Roll dice (1d20) to determine success vs failure, success threshold 10+
- Typical damage: 3-8 HP per attack, healing 4-10 HP, critical moments can justify larger swings
- Players can attempt ANYTHING - interpret their intent generously
- Use the battle environment in creative ways
- Track character conditions dynamically (wounded, energized, exhausted, etc.)
- announcerText: ONE short punchy sentence, max 15 words, hyped fight announcer style
- videoPrompt: 2-3 cinematic sentences describing the KEY visual moment of this exchange

Return ONLY valid JSON with this shape:
{
  "interpretation": "...",
  "player1HpChange": -5,
  "player2HpChange": -12,
  "newBattleState": {
    "environmentDescription": "...",
    "player1Condition": "...",
    "player2Condition": "...",
    "previousEvents": ["..."]
  },
  "videoPrompt": "...",
  "announcerText": "...",
  "diceRolls": [
    {"player": "player1", "purpose": "fireball attack", "formula": "1d20+3", "result": 18, "modifier": 3}
  ]
}`

// resolutionPayload 모델 응답의 JSON 스키마
type resolutionPayload struct {
	Interpretation  string             `json:"interpretation"`
	AnnouncerText   string             `json:"announcerText"`
	Player1HPChange int                `json:"player1HpChange"`
	Player2HPChange int                `json:"player2HpChange"`
	NewBattleState  models.BattleState `json:"newBattleState"`
	VideoPrompt     string             `json:"videoPrompt"`
	DiceRolls       []models.DiceRoll  `json:"diceRolls"`
}

// buildCombatPrompt 라운드별 컨텍스트 프롬프트 생성
func buildCombatPrompt(battle *models.Battle, action1, action2 string) string {
	p1 := battle.Player1
	p2 := battle.Player2
	state := battle.CurrentState

	var events strings.Builder
	for i, e := range state.PreviousEvents {
		fmt.Fprintf(&events, "%d. %s\n", i+1, e)
	}

	return fmt.Sprintf(`## Current Battle State

**Environment:** %s

### Player 1: %s
- HP: %d/%d
- Appearance: %s
- Condition: %s

### Player 2: %s
- HP: %d/%d
- Appearance: %s
- Condition: %s

### Previous Events
%s
## This Round's Actions

**%s declares:** "%s"

**%s declares:** "%s"

---

Resolve these actions simultaneously and return your response as JSON.`,
		state.EnvironmentDescription,
		p1.Character.Name, p1.CurrentHP, p1.MaxHP, p1.Character.TextPrompt, state.Player1Condition,
		p2.Character.Name, p2.CurrentHP, p2.MaxHP, p2.Character.TextPrompt, state.Player2Condition,
		events.String(),
		p1.Character.Name, action1,
		p2.Character.Name, action2,
	)
}

// ResolveCombat 두 액션을 심판해 라운드 결과 생성
// 어떤 실패든 에러로 반환하며, 폴백은 호출자(BattleEngine) 소관
func (c *Client) ResolveCombat(ctx context.Context, battle *models.Battle, action1, action2 string) (*models.BattleResolution, error) {
	var payload resolutionPayload
	err := c.jsonComplete(ctx, chatRequest{
		Model: combatModel,
		Messages: []chatMessage{
			{Role: "system", Content: combatSystemPrompt},
			{Role: "user", Content: buildCombatPrompt(battle, action1, action2)},
		},
		Temperature: 0.8,
	}, &payload)
	if err != nil {
		return nil, err
	}

	if payload.Interpretation == "" {
		return nil, fmt.Errorf("resolution missing interpretation")
	}

	announcer := payload.AnnouncerText
	if announcer == "" {
		announcer = payload.Interpretation
	}

	resolution := &models.BattleResolution{
		Player1Action:   action1,
		Player2Action:   action2,
		Interpretation:  payload.Interpretation,
		AnnouncerText:   announcer,
		Player1HPChange: payload.Player1HPChange,
		Player2HPChange: payload.Player2HPChange,
		NewBattleState:  payload.NewBattleState,
		VideoPrompt:     payload.VideoPrompt,
		DiceRolls:       payload.DiceRolls,
		Timestamp:       time.Now(),
	}

	logger.Info("Combat resolved by model",
		"battleId", battle.ID,
		"round", battle.RoundNumber(),
		"p1HpChange", resolution.Player1HPChange,
		"p2HpChange", resolution.Player2HPChange,
	)

	return resolution, nil
}

// SuggestAction 플레이어를 위한 액션 제안 생성
func (c *Client) SuggestAction(ctx context.Context, battle *models.Battle, playerID string) (string, error) {
	player := &battle.Player1
	opponent := &battle.Player2
	playerCondition := battle.CurrentState.Player1Condition
	opponentCondition := battle.CurrentState.Player2Condition
	if battle.Player2.PlayerID == playerID {
		player, opponent = opponent, player
		playerCondition, opponentCondition = opponentCondition, playerCondition
	}

	recent := battle.CurrentState.PreviousEvents
	if len(recent) > 3 {
		recent = recent[len(recent)-3:]
	}

	prompt := fmt.Sprintf(`You are helping a player in a magical battle come up with a creative action.

## Battle Context
Environment: %s
Your Character: %s (%d/%d HP)
Your Condition: %s
Opponent: %s (%d/%d HP)
Opponent Condition: %s

## Previous Events
%s

## Task
Generate ONE creative action (2-3 sentences) that this player could take.
Be specific, dramatic, and use the environment.
Make it interesting and different from what they've done before.

Return ONLY the action text, no preamble.`,
		battle.CurrentState.EnvironmentDescription,
		player.Character.Name, player.CurrentHP, player.MaxHP, playerCondition,
		opponent.Character.Name, opponent.CurrentHP, opponent.MaxHP, opponentCondition,
		strings.Join(recent, "\n"),
	)

	content, err := c.chatComplete(ctx, chatRequest{
		Model: suggestModel,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a creative dungeon master assistant."},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.9,
		MaxTokens:   150,
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(content), nil
}
