package battle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/willemhelmet/prompt-pugilists/internal/models"
	"github.com/willemhelmet/prompt-pugilists/internal/service"
)

type stubResolver struct {
	resolution *models.BattleResolution
	suggestion string
	err        error
}

func (s *stubResolver) ResolveCombat(_ context.Context, _ *models.Battle, _, _ string) (*models.BattleResolution, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.resolution, nil
}

func (s *stubResolver) SuggestAction(_ context.Context, _ *models.Battle, _ string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.suggestion, nil
}

func testCharacter(id, name string) models.Character {
	return models.Character{
		ID:         id,
		Name:       name,
		TextPrompt: name + " looks fearsome",
	}
}

func newTestBattle(t *testing.T, e *Engine) *models.Battle {
	t.Helper()
	return e.CreateBattle(
		"ROOM01",
		testCharacter("c1", "Zara"),
		testCharacter("c2", "Mordak"),
		"p1", "p2",
		"Volcano",
	)
}

func newTestEngine(resolver CombatResolver) *Engine {
	return NewEngine(resolver, 5*time.Second)
}

func TestEngine_CreateBattle(t *testing.T) {
	e := newTestEngine(&stubResolver{})
	b := newTestBattle(t, e)

	if b.Player1.CurrentHP != models.MaxHP || b.Player2.CurrentHP != models.MaxHP {
		t.Errorf("both players should start at %d HP, got %d and %d",
			models.MaxHP, b.Player1.CurrentHP, b.Player2.CurrentHP)
	}
	if b.CurrentState.Player1Condition != "Zara stands ready for battle" {
		t.Errorf("unexpected player1 condition: %q", b.CurrentState.Player1Condition)
	}
	if len(b.CurrentState.PreviousEvents) != 0 {
		t.Error("previousEvents should start empty")
	}
	if b.PendingActions.Player1 != nil || b.PendingActions.Player2 != nil {
		t.Error("pendingActions should start empty")
	}
	if b.RoundNumber() != 1 {
		t.Errorf("RoundNumber = %d, want 1", b.RoundNumber())
	}
	if b.IsDecided() {
		t.Error("new battle should not be decided")
	}
}

func TestEngine_RecordAction(t *testing.T) {
	e := newTestEngine(&stubResolver{})
	b := newTestBattle(t, e)

	if err := e.RecordAction(b, models.SlotPlayer1, "fireball"); err != nil {
		t.Fatalf("RecordAction failed: %v", err)
	}
	if e.BothActionsSubmitted(b) {
		t.Error("one action should not count as both")
	}

	// 재제출은 덮어쓰기
	if err := e.RecordAction(b, models.SlotPlayer1, "ice storm"); err != nil {
		t.Fatalf("RecordAction resubmit failed: %v", err)
	}
	if b.PendingActions.Player1.ActionText != "ice storm" {
		t.Errorf("resubmit should overwrite, got %q", b.PendingActions.Player1.ActionText)
	}

	if err := e.RecordAction(b, models.SlotPlayer2, "shield"); err != nil {
		t.Fatalf("RecordAction failed: %v", err)
	}
	if !e.BothActionsSubmitted(b) {
		t.Error("both actions should be submitted")
	}
}

func TestEngine_RecordAction_WhileResolving(t *testing.T) {
	e := newTestEngine(&stubResolver{})
	b := newTestBattle(t, e)

	e.RecordAction(b, models.SlotPlayer1, "fireball")
	e.RecordAction(b, models.SlotPlayer2, "shield")

	if _, _, err := e.BeginResolve(b); err != nil {
		t.Fatalf("BeginResolve failed: %v", err)
	}

	if err := e.RecordAction(b, models.SlotPlayer1, "sneaky extra action"); !errors.Is(err, service.ErrRoundResolving) {
		t.Errorf("RecordAction during resolve = %v, want ErrRoundResolving", err)
	}
}

func TestEngine_ApplyResolution_Clamping(t *testing.T) {
	tests := []struct {
		name     string
		p1Change int
		p2Change int
		wantP1HP int
		wantP2HP int
	}{
		{"normal damage", -5, -12, 35, 28},
		{"overkill clamps to zero", -999, -50, 0, 0},
		{"healing clamps to max", 30, 5, 40, 40},
		{"no change", 0, 0, 40, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(&stubResolver{})
			b := newTestBattle(t, e)

			e.ApplyResolution(b, &models.BattleResolution{
				Player1HPChange: tt.p1Change,
				Player2HPChange: tt.p2Change,
				NewBattleState:  models.BattleState{EnvironmentDescription: "Volcano"},
			})

			if b.Player1.CurrentHP != tt.wantP1HP {
				t.Errorf("player1 HP = %d, want %d", b.Player1.CurrentHP, tt.wantP1HP)
			}
			if b.Player2.CurrentHP != tt.wantP2HP {
				t.Errorf("player2 HP = %d, want %d", b.Player2.CurrentHP, tt.wantP2HP)
			}
		})
	}
}

func TestEngine_ApplyResolution_ReplacesStateAndCountsRounds(t *testing.T) {
	e := newTestEngine(&stubResolver{})
	b := newTestBattle(t, e)

	for round := 1; round <= 3; round++ {
		if b.RoundNumber() != round {
			t.Fatalf("RoundNumber = %d, want %d", b.RoundNumber(), round)
		}

		newState := models.BattleState{
			EnvironmentDescription: "Volcano",
			Player1Condition:       "scorched",
			Player2Condition:       "winded",
			PreviousEvents:         []string{"a clash"},
		}
		e.ApplyResolution(b, &models.BattleResolution{
			Player1HPChange: -1,
			NewBattleState:  newState,
		})

		// 상태는 병합이 아닌 교체
		if b.CurrentState.Player1Condition != "scorched" {
			t.Errorf("round %d: state not replaced", round)
		}
	}

	if len(b.ResolutionHistory) != 3 {
		t.Errorf("history length = %d, want 3", len(b.ResolutionHistory))
	}
}

func TestEngine_CheckVictory(t *testing.T) {
	tests := []struct {
		name       string
		p1HP, p2HP int
		wantWinner string // "" = no winner
	}{
		{"both alive", 10, 10, ""},
		{"player1 depleted", 0, 5, "p2"},
		{"player2 depleted", 5, 0, "p1"},
		{"both depleted favors player2", 0, 0, "p2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(&stubResolver{})
			b := newTestBattle(t, e)
			b.Player1.CurrentHP = tt.p1HP
			b.Player2.CurrentHP = tt.p2HP

			winner := e.CheckVictory(b)
			if tt.wantWinner == "" {
				if winner != nil {
					t.Errorf("CheckVictory = %v, want nil", *winner)
				}
				return
			}
			if winner == nil || *winner != tt.wantWinner {
				t.Errorf("CheckVictory = %v, want %q", winner, tt.wantWinner)
			}
		})
	}
}

func TestEngine_TerminalStateIsIdempotent(t *testing.T) {
	e := newTestEngine(&stubResolver{})
	b := newTestBattle(t, e)

	e.MarkVictory(b, "p1", models.WinConditionHPDepleted)
	completedAt := *b.CompletedAt

	// 결정 후 액션 거부
	if err := e.RecordAction(b, models.SlotPlayer2, "too late"); !errors.Is(err, service.ErrBattleDecided) {
		t.Errorf("RecordAction after decided = %v, want ErrBattleDecided", err)
	}

	// 결정 후 리졸루션 적용은 no-op
	e.ApplyResolution(b, &models.BattleResolution{Player1HPChange: -99})
	if b.Player1.CurrentHP != models.MaxHP {
		t.Error("ApplyResolution after decided should not mutate HP")
	}
	if len(b.ResolutionHistory) != 0 {
		t.Error("ApplyResolution after decided should not append history")
	}

	// 재몰수/재승리 기록은 no-op
	if res := e.Forfeit(b, models.SlotPlayer1); res != nil {
		t.Error("Forfeit after decided should return nil")
	}
	e.MarkVictory(b, "p2", models.WinConditionForfeit)
	if *b.WinnerID != "p1" {
		t.Errorf("winner overwritten to %q", *b.WinnerID)
	}
	if !b.CompletedAt.Equal(completedAt) {
		t.Error("completedAt overwritten")
	}
}

func TestEngine_Forfeit_SynthesizesResolution(t *testing.T) {
	e := newTestEngine(&stubResolver{})
	b := newTestBattle(t, e)

	res := e.Forfeit(b, models.SlotPlayer1)
	if res == nil {
		t.Fatal("Forfeit should return a resolution even with empty history")
	}

	if b.Player1.CurrentHP != 0 {
		t.Errorf("forfeiter HP = %d, want 0", b.Player1.CurrentHP)
	}
	if b.WinnerID == nil || *b.WinnerID != "p2" {
		t.Errorf("winner = %v, want p2", b.WinnerID)
	}
	if b.WinCondition == nil || *b.WinCondition != models.WinConditionForfeit {
		t.Errorf("winCondition = %v, want forfeit", b.WinCondition)
	}
	if res.AnnouncerText == "" || res.Interpretation == "" || res.VideoPrompt == "" {
		t.Error("synthesized resolution missing narrative fields")
	}
	// 몰수는 라운드를 소모하지 않는다
	if len(b.ResolutionHistory) != 0 {
		t.Errorf("history length = %d, want 0", len(b.ResolutionHistory))
	}
}

func TestEngine_Forfeit_ReturnsLastResolution(t *testing.T) {
	e := newTestEngine(&stubResolver{})
	b := newTestBattle(t, e)

	e.ApplyResolution(b, &models.BattleResolution{
		Interpretation: "a furious first round",
		NewBattleState: b.CurrentState,
	})

	res := e.Forfeit(b, models.SlotPlayer2)
	if res == nil || res.Interpretation != "a furious first round" {
		t.Errorf("Forfeit should return last history entry, got %+v", res)
	}
	if b.WinnerID == nil || *b.WinnerID != "p1" {
		t.Errorf("winner = %v, want p1", b.WinnerID)
	}
}

func TestEngine_Resolve_FallbackOnResolverFailure(t *testing.T) {
	e := newTestEngine(&stubResolver{err: errors.New("upstream exploded")})
	b := newTestBattle(t, e)

	res := e.Resolve(context.Background(), b, "punch", "kick")
	if res == nil {
		t.Fatal("Resolve must always return a resolution")
	}

	if res.Player1Action != "punch" || res.Player2Action != "kick" {
		t.Error("fallback resolution should carry both actions")
	}
	if res.Interpretation == "" || res.AnnouncerText == "" || res.VideoPrompt == "" {
		t.Error("fallback resolution missing narrative fields")
	}
	if len(res.DiceRolls) < 2 {
		t.Errorf("fallback should include at least both attack rolls, got %d", len(res.DiceRolls))
	}
	if len(res.NewBattleState.PreviousEvents) != 2 {
		t.Errorf("fallback on fresh battle should add 2 events, got %d",
			len(res.NewBattleState.PreviousEvents))
	}
	// HP 변화는 음수(데미지) 또는 0(빗나감)
	if res.Player1HPChange > 0 || res.Player2HPChange > 0 {
		t.Error("fallback never heals")
	}
}

func TestEngine_Resolve_UsesResolverResult(t *testing.T) {
	want := &models.BattleResolution{
		Player1Action:   "punch",
		Player2Action:   "kick",
		Interpretation:  "model interpretation",
		AnnouncerText:   "WHAT A HIT!",
		Player1HPChange: -7,
		Player2HPChange: -3,
		NewBattleState:  models.BattleState{EnvironmentDescription: "Volcano"},
	}
	e := newTestEngine(&stubResolver{resolution: want})
	b := newTestBattle(t, e)

	got := e.Resolve(context.Background(), b, "punch", "kick")
	if got != want {
		t.Error("Resolve should return the resolver's resolution untouched")
	}
}

func TestEngine_FallbackEventHistoryCapped(t *testing.T) {
	e := newTestEngine(&stubResolver{err: errors.New("down")})
	b := newTestBattle(t, e)

	b.CurrentState.PreviousEvents = []string{"e1", "e2", "e3", "e4", "e5", "e6", "e7"}

	res := e.Resolve(context.Background(), b, "a", "b")
	// 최근 4개 + 새 이벤트 2개
	if len(res.NewBattleState.PreviousEvents) != 6 {
		t.Errorf("events = %d, want 6 (last 4 + 2 new)", len(res.NewBattleState.PreviousEvents))
	}
	if res.NewBattleState.PreviousEvents[0] != "e4" {
		t.Errorf("oldest kept event = %q, want e4", res.NewBattleState.PreviousEvents[0])
	}
}

func TestEngine_CompleteResolve_DropsWhenDecidedMidResolve(t *testing.T) {
	e := newTestEngine(&stubResolver{})
	b := newTestBattle(t, e)

	e.RecordAction(b, models.SlotPlayer1, "a")
	e.RecordAction(b, models.SlotPlayer2, "b")
	if _, _, err := e.BeginResolve(b); err != nil {
		t.Fatalf("BeginResolve failed: %v", err)
	}

	// 해석 대기 중 몰수 발생
	e.Forfeit(b, models.SlotPlayer1)

	applied := e.CompleteResolve(b, &models.BattleResolution{Player1HPChange: -5})
	if applied {
		t.Error("resolution should be dropped when battle was decided mid-resolve")
	}
	if b.Resolving {
		t.Error("resolving flag should be cleared")
	}
	if len(b.ResolutionHistory) != 0 {
		t.Error("dropped resolution must not reach history")
	}
}

func TestEngine_SuggestAction_Fallback(t *testing.T) {
	e := newTestEngine(&stubResolver{err: errors.New("down")})
	b := newTestBattle(t, e)

	got := e.SuggestAction(context.Background(), b, "p2")
	want := "Mordak channels their energy and launches a powerful attack!"
	if got != want {
		t.Errorf("SuggestAction fallback = %q, want %q", got, want)
	}
}

func TestSnapshot_Isolated(t *testing.T) {
	e := newTestEngine(&stubResolver{})
	b := newTestBattle(t, e)
	e.RecordAction(b, models.SlotPlayer1, "a")
	b.CurrentState.PreviousEvents = []string{"e1"}

	snap := Snapshot(b)
	snap.Player1.CurrentHP = 1
	snap.CurrentState.PreviousEvents[0] = "mutated"
	snap.PendingActions.Player1.ActionText = "mutated"

	if b.Player1.CurrentHP != models.MaxHP {
		t.Error("snapshot mutation leaked into HP")
	}
	if b.CurrentState.PreviousEvents[0] != "e1" {
		t.Error("snapshot mutation leaked into events")
	}
	if b.PendingActions.Player1.ActionText != "a" {
		t.Error("snapshot mutation leaked into pending action")
	}
}
