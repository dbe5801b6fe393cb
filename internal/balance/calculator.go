package balance

import (
	"fmt"

	"github.com/panverse/rules-agent/internal/rules"
)

// MonsterGroup is one opposing monster entry: a challenge rating and how
// many creatures share it.
type MonsterGroup struct {
	ChallengeRating string `json:"challenge_rating"`
	Count           int    `json:"count"`
}

// Assessment is the calculator's verdict on one encounter.
type Assessment struct {
	Difficulty      string   `json:"difficulty"`
	XPBudget        int      `json:"xp_budget"`
	EncounterXP     int      `json:"encounter_xp"`
	Ratio           float64  `json:"ratio"`
	Balanced        bool     `json:"balanced"`
	Score           float64  `json:"score"`
	Recommendations []string `json:"recommendations,omitempty"`
}

const (
	minPartyLevel = 1
	maxPartyLevel = 20
	maxPartySize  = 8
)

// Calculate estimates encounter difficulty against the party's XP budget
// using the lookup tables from the encounter rule definition. It is a pure
// function: identical inputs always produce the identical assessment.
//
// Party sizes above eight use the eight-player multiplier. A party level
// outside 1-20, a non-positive size or count, or a challenge rating missing
// from the XP table is an input error, not a balance problem.
func Calculate(tables *rules.BalanceTables, partyLevel, partySize int, monsters []MonsterGroup) (Assessment, error) {
	if partyLevel < minPartyLevel || partyLevel > maxPartyLevel {
		return Assessment{}, fmt.Errorf("party level %d outside %d-%d", partyLevel, minPartyLevel, maxPartyLevel)
	}
	if partySize < 1 {
		return Assessment{}, fmt.Errorf("party size %d must be at least 1", partySize)
	}
	if len(monsters) == 0 {
		return Assessment{}, fmt.Errorf("encounter has no monsters")
	}

	size := partySize
	if size > maxPartySize {
		size = maxPartySize
	}
	budget := int(float64(tables.XPBudget[partyLevel]) * tables.SizeMultipliers[size])

	encounterXP := 0
	for _, group := range monsters {
		xp, ok := tables.CRXP[group.ChallengeRating]
		if !ok {
			return Assessment{}, fmt.Errorf("unknown challenge rating %q", group.ChallengeRating)
		}
		if group.Count < 1 {
			return Assessment{}, fmt.Errorf("monster count %d for challenge rating %q must be at least 1", group.Count, group.ChallengeRating)
		}
		encounterXP += xp * group.Count
	}

	ratio := float64(encounterXP) / float64(budget)
	deviation := ratio - 1.0
	if deviation < 0 {
		deviation = -deviation
	}

	difficulty := classify(tables.Tiers, ratio)
	assessment := Assessment{
		Difficulty:  difficulty,
		XPBudget:    budget,
		EncounterXP: encounterXP,
		Ratio:       ratio,
		Balanced:    deviation <= tables.BalanceTolerance,
		Score:       score(ratio),
	}
	assessment.Recommendations = recommend(difficulty, assessment.Score)
	return assessment, nil
}

// classify walks the configured tiers in order; a ratio above every ceiling
// lands in the last (deadliest) tier.
func classify(tiers []rules.DifficultyTier, ratio float64) string {
	for _, tier := range tiers {
		if ratio <= tier.MaxRatio {
			return tier.Name
		}
	}
	return tiers[len(tiers)-1].Name
}

// score peaks at 1.0 when the encounter exactly meets the budget and ramps
// down to 0.0 at twice the budget or an empty encounter.
func score(ratio float64) float64 {
	switch {
	case ratio <= 0:
		return 0.0
	case ratio <= 1.0:
		return ratio
	case ratio >= 2.0:
		return 0.0
	default:
		return 2.0 - ratio
	}
}

func recommend(difficulty string, score float64) []string {
	var recs []string
	switch difficulty {
	case "easy":
		recs = append(recs,
			"This encounter may be too easy for the party",
			"Consider adding more monsters or higher CR creatures")
	case "medium":
		recs = append(recs, "Good balance for a standard encounter")
	case "hard":
		recs = append(recs, "Challenging encounter - ensure party has resources")
	case "deadly":
		recs = append(recs,
			"Very dangerous encounter - party may need preparation",
			"Consider adding easier encounters before this one")
	}
	if score < 0.5 {
		recs = append(recs, "Major balance issues detected - consider redesigning the encounter")
	}
	return recs
}
