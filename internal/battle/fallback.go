package battle

import (
	"fmt"
	"time"

	"github.com/willemhelmet/prompt-pugilists/internal/models"
)

const (
	fallbackAttackFormula = "1d20+3"
	fallbackDamageFormula = "2d6+2"
	fallbackHitThreshold  = 10
	// 프롬프트 크기 제한을 위한 이벤트 히스토리 상한
	previousEventsKeep = 4
)

// fallbackResolve 외부 리졸버 실패 시 로컬 주사위 규칙으로 라운드 완결
// 양측 1d20+3 공격, 10 이상이면 명중, 명중 시 2d6+2 데미지
func (e *Engine) fallbackResolve(battle *models.Battle, action1, action2 string) *models.BattleResolution {
	p1 := battle.Player1
	p2 := battle.Player2

	p1Attack := e.roller.Roll(fallbackAttackFormula)
	p1Damage := e.roller.Roll(fallbackDamageFormula)
	p2Attack := e.roller.Roll(fallbackAttackFormula)
	p2Damage := e.roller.Roll(fallbackDamageFormula)

	p1Hit := p1Attack.Result >= fallbackHitThreshold
	p2Hit := p2Attack.Result >= fallbackHitThreshold

	p1HPChange := 0
	if p2Hit {
		p1HPChange = -p2Damage.Result
	}
	p2HPChange := 0
	if p1Hit {
		p2HPChange = -p1Damage.Result
	}

	var events []string
	if p1Hit {
		events = append(events, fmt.Sprintf("%s's attack landed for %d damage", p1.Character.Name, -p2HPChange))
	} else {
		events = append(events, fmt.Sprintf("%s's attack missed", p1.Character.Name))
	}
	if p2Hit {
		events = append(events, fmt.Sprintf("%s's attack landed for %d damage", p2.Character.Name, -p1HPChange))
	} else {
		events = append(events, fmt.Sprintf("%s's attack missed", p2.Character.Name))
	}

	diceRolls := []models.DiceRoll{
		{Player: models.SlotPlayer1, Purpose: "attack roll", Formula: fallbackAttackFormula, Result: p1Attack.Result, Modifier: p1Attack.Modifier},
	}
	if p1Hit {
		diceRolls = append(diceRolls, models.DiceRoll{
			Player: models.SlotPlayer1, Purpose: "damage", Formula: fallbackDamageFormula, Result: p1Damage.Result, Modifier: p1Damage.Modifier,
		})
	}
	diceRolls = append(diceRolls, models.DiceRoll{
		Player: models.SlotPlayer2, Purpose: "attack roll", Formula: fallbackAttackFormula, Result: p2Attack.Result, Modifier: p2Attack.Modifier,
	})
	if p2Hit {
		diceRolls = append(diceRolls, models.DiceRoll{
			Player: models.SlotPlayer2, Purpose: "damage", Formula: fallbackDamageFormula, Result: p2Damage.Result, Modifier: p2Damage.Modifier,
		})
	}

	return &models.BattleResolution{
		Player1Action: action1,
		Player2Action: action2,
		Interpretation: fmt.Sprintf("%s attempts: %q while %s attempts: %q",
			p1.Character.Name, truncate(action1, 60), p2.Character.Name, truncate(action2, 60)),
		AnnouncerText: fmt.Sprintf("%s and %s clash in an explosive exchange!",
			p1.Character.Name, p2.Character.Name),
		Player1HPChange: p1HPChange,
		Player2HPChange: p2HPChange,
		NewBattleState: models.BattleState{
			EnvironmentDescription: battle.CurrentState.EnvironmentDescription,
			Player1Condition:       conditionText(p1.Character.Name, p1Hit),
			Player2Condition:       conditionText(p2.Character.Name, p2Hit),
			PreviousEvents:         appendEvents(battle.CurrentState.PreviousEvents, events),
		},
		VideoPrompt: fmt.Sprintf("%s and %s clash in %s",
			p1.Character.Name, p2.Character.Name, battle.CurrentState.EnvironmentDescription),
		DiceRolls: diceRolls,
		Timestamp: time.Now(),
	}
}

func conditionText(name string, hit bool) string {
	if hit {
		return fmt.Sprintf("%s strikes true", name)
	}
	return fmt.Sprintf("%s's attack goes wide", name)
}

// appendEvents 기존 이벤트 최근 N개만 유지하고 새 이벤트 추가
func appendEvents(previous, added []string) []string {
	keep := previous
	if len(keep) > previousEventsKeep {
		keep = keep[len(keep)-previousEventsKeep:]
	}

	merged := make([]string, 0, len(keep)+len(added))
	merged = append(merged, keep...)
	merged = append(merged, added...)
	return merged
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
