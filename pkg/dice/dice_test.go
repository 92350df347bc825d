package dice

import "testing"

func TestRoller_Roll(t *testing.T) {
	roller := NewSeededRoller(42)

	tests := []struct {
		name     string
		formula  string
		minTotal int
		maxTotal int
		modifier int
	}{
		{
			name:     "attack roll 1d20+3",
			formula:  "1d20+3",
			minTotal: 4,
			maxTotal: 23,
			modifier: 3,
		},
		{
			name:     "damage roll 2d6+2",
			formula:  "2d6+2",
			minTotal: 4,
			maxTotal: 14,
			modifier: 2,
		},
		{
			name:     "no modifier 1d6",
			formula:  "1d6",
			minTotal: 1,
			maxTotal: 6,
			modifier: 0,
		},
		{
			name:     "many dice 10d10+5",
			formula:  "10d10+5",
			minTotal: 15,
			maxTotal: 105,
			modifier: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// 범위 검증이므로 여러 번 굴린다
			for i := 0; i < 100; i++ {
				roll := roller.Roll(tt.formula)
				if roll.Result < tt.minTotal || roll.Result > tt.maxTotal {
					t.Errorf("Roll(%q) = %d, want in [%d, %d]",
						tt.formula, roll.Result, tt.minTotal, tt.maxTotal)
				}
				if roll.Modifier != tt.modifier {
					t.Errorf("Roll(%q).Modifier = %d, want %d",
						tt.formula, roll.Modifier, tt.modifier)
				}
			}
		})
	}
}

func TestRoller_Roll_InvalidFormula(t *testing.T) {
	roller := NewSeededRoller(1)

	invalid := []string{"", "d20", "1d", "abc", "1d20-3", "0d6", "2x6+1"}
	for _, formula := range invalid {
		roll := roller.Roll(formula)
		if roll.Result != 10 || roll.Modifier != 0 {
			t.Errorf("Roll(%q) = %+v, want default {10 0}", formula, roll)
		}
	}
}

func TestRoller_Deterministic(t *testing.T) {
	a := NewSeededRoller(7)
	b := NewSeededRoller(7)

	for i := 0; i < 20; i++ {
		ra := a.Roll("3d8+1")
		rb := b.Roll("3d8+1")
		if ra != rb {
			t.Fatalf("same seed diverged at roll %d: %+v vs %+v", i, ra, rb)
		}
	}
}
