package balance

import (
	"math"
	"testing"

	"github.com/panverse/rules-agent/internal/rules"
)

func testTables() *rules.BalanceTables {
	xpBudget := map[int]int{
		1: 25, 2: 50, 3: 75, 4: 125, 5: 250, 6: 300, 7: 350, 8: 450, 9: 550, 10: 600,
		11: 800, 12: 1000, 13: 1100, 14: 1250, 15: 1400, 16: 1600, 17: 2000, 18: 2100, 19: 2400, 20: 2800,
	}
	crXP := map[string]int{
		"0": 10, "1/8": 25, "1/4": 50, "1/2": 100,
		"1": 200, "2": 450, "3": 700, "4": 1100, "5": 1800, "6": 2300, "7": 2900, "8": 3900,
		"9": 5000, "10": 5900, "11": 7200, "12": 8400, "13": 10000, "14": 11500, "15": 13000,
		"16": 15000, "17": 18000, "18": 20000, "19": 22000, "20": 25000,
	}
	return &rules.BalanceTables{
		XPBudget: xpBudget,
		CRXP:     crXP,
		SizeMultipliers: map[int]float64{
			1: 1.0, 2: 1.5, 3: 2.0, 4: 2.0, 5: 3.0, 6: 3.0, 7: 4.0, 8: 4.0,
		},
		BalanceTolerance: 0.5,
		Tiers: []rules.DifficultyTier{
			{Name: "easy", MaxRatio: 0.5},
			{Name: "medium", MaxRatio: 1.5},
			{Name: "hard", MaxRatio: 2.0},
			{Name: "deadly", MaxRatio: 100.0},
		},
	}
}

func TestCalculate_DeadlyOverbudget(t *testing.T) {
	// Level 3 party of 4: budget 75 * 2.0 = 150. Four CR 1 monsters: 800 XP.
	got, err := Calculate(testTables(), 3, 4, []MonsterGroup{{ChallengeRating: "1", Count: 4}})
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	if got.XPBudget != 150 {
		t.Errorf("XPBudget = %d, want 150", got.XPBudget)
	}
	if got.EncounterXP != 800 {
		t.Errorf("EncounterXP = %d, want 800", got.EncounterXP)
	}
	if got.Difficulty != "deadly" {
		t.Errorf("Difficulty = %s, want deadly", got.Difficulty)
	}
	if got.Balanced {
		t.Error("an encounter at over five times the budget must not be balanced")
	}
	if got.Score != 0.0 {
		t.Errorf("Score = %v, want 0.0", got.Score)
	}
	if len(got.Recommendations) == 0 {
		t.Error("deadly encounter should carry recommendations")
	}
}

func TestCalculate_BalancedMedium(t *testing.T) {
	// Level 5 party of 4: budget 250 * 2.0 = 500. One CR 2: 450 XP, ratio 0.9.
	got, err := Calculate(testTables(), 5, 4, []MonsterGroup{{ChallengeRating: "2", Count: 1}})
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	if got.Difficulty != "medium" {
		t.Errorf("Difficulty = %s, want medium", got.Difficulty)
	}
	if !got.Balanced {
		t.Errorf("ratio %.2f within tolerance should be balanced", got.Ratio)
	}
	if math.Abs(got.Score-0.9) > 1e-9 {
		t.Errorf("Score = %v, want 0.9", got.Score)
	}
}

func TestCalculate_FractionalCRs(t *testing.T) {
	// Level 1 party of 2: budget 25 * 1.5 = 37. Three CR 1/8: 75 XP.
	got, err := Calculate(testTables(), 1, 2, []MonsterGroup{{ChallengeRating: "1/8", Count: 3}})
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if got.EncounterXP != 75 {
		t.Errorf("EncounterXP = %d, want 75", got.EncounterXP)
	}
}

func TestCalculate_OversizedPartyClamps(t *testing.T) {
	// A party of 10 uses the eight-player multiplier.
	ten, err := Calculate(testTables(), 5, 10, []MonsterGroup{{ChallengeRating: "5", Count: 1}})
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	eight, _ := Calculate(testTables(), 5, 8, []MonsterGroup{{ChallengeRating: "5", Count: 1}})
	if ten.XPBudget != eight.XPBudget {
		t.Errorf("party of 10 budget %d should equal party of 8 budget %d", ten.XPBudget, eight.XPBudget)
	}
}

func TestCalculate_ScoreRamp(t *testing.T) {
	tables := testTables()
	tests := []struct {
		name     string
		monsters []MonsterGroup
		want     float64
	}{
		// Level 10 party of 1: budget 600.
		{"exact budget ratio 1.0", []MonsterGroup{{ChallengeRating: "1/4", Count: 12}}, 1.0},   // 600 XP
		{"half budget ratio 0.5", []MonsterGroup{{ChallengeRating: "1/4", Count: 6}}, 0.5},     // 300 XP
		{"past double budget", []MonsterGroup{{ChallengeRating: "10", Count: 1}}, 0.0},         // 5900 XP
		{"between one and two", []MonsterGroup{{ChallengeRating: "1/4", Count: 18}}, 0.5},      // 900 XP, ratio 1.5
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Calculate(tables, 10, 1, tt.monsters)
			if err != nil {
				t.Fatalf("Calculate failed: %v", err)
			}
			if math.Abs(got.Score-tt.want) > 1e-9 {
				t.Errorf("Score = %v, want %v", got.Score, tt.want)
			}
		})
	}
}

func TestCalculate_InputErrors(t *testing.T) {
	tables := testTables()
	tests := []struct {
		name     string
		level    int
		size     int
		monsters []MonsterGroup
	}{
		{"level zero", 0, 4, []MonsterGroup{{ChallengeRating: "1", Count: 1}}},
		{"level above cap", 21, 4, []MonsterGroup{{ChallengeRating: "1", Count: 1}}},
		{"size zero", 5, 0, []MonsterGroup{{ChallengeRating: "1", Count: 1}}},
		{"no monsters", 5, 4, nil},
		{"unknown challenge rating", 5, 4, []MonsterGroup{{ChallengeRating: "1/16", Count: 1}}},
		{"zero count", 5, 4, []MonsterGroup{{ChallengeRating: "1", Count: 0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Calculate(tables, tt.level, tt.size, tt.monsters); err == nil {
				t.Error("expected input error, got none")
			}
		})
	}
}

func TestCalculate_Deterministic(t *testing.T) {
	monsters := []MonsterGroup{{ChallengeRating: "3", Count: 2}, {ChallengeRating: "1/2", Count: 4}}
	first, err := Calculate(testTables(), 8, 5, monsters)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	second, _ := Calculate(testTables(), 8, 5, monsters)
	if first.Ratio != second.Ratio || first.Score != second.Score || first.Difficulty != second.Difficulty {
		t.Error("identical inputs must produce identical assessments")
	}
}
