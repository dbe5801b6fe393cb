package validator

import (
	"fmt"
	"strings"

	"github.com/panverse/rules-agent/internal/balance"
	"github.com/panverse/rules-agent/internal/models"
	"github.com/panverse/rules-agent/internal/rules"
	"github.com/rs/zerolog"
)

// encounterValidator layers the XP-budget balance assessment on top of the
// shared declarative checks. The balance component is measured, not
// penalty-derived: it is the calculator's score directly.
type encounterValidator struct {
	scorer Scorer
	logger *zerolog.Logger
}

func newEncounterValidator(scorer Scorer, logger *zerolog.Logger) *encounterValidator {
	return &encounterValidator{scorer: scorer, logger: logger}
}

func (v *encounterValidator) Validate(content models.Content, def *rules.Definition, repo *rules.Repository) Outcome {
	c := newCollector(ComponentCompleteness, ComponentAccuracy, ComponentConsistency)
	checkRequired(c, def, content, ComponentCompleteness)
	checkFields(c, def, content, ComponentAccuracy)
	checkCross(c, def, content, ComponentConsistency)

	measured := map[string]float64{ComponentBalance: 0.0}
	level, size, monsters, ok := encounterParty(c, def.Category, content)
	if ok && def.Balance != nil {
		assessment, err := balance.Calculate(def.Balance, level, size, monsters)
		if err != nil {
			c.add(models.Issue{
				Category:   def.Category,
				Field:      "monsters",
				Severity:   models.SeverityError,
				Message:    "Balance could not be assessed: " + err.Error(),
				Suggestion: "Fix the party and monster data so the XP budget can be computed",
			}, ComponentAccuracy)
		} else {
			measured[ComponentBalance] = assessment.Score
			v.logger.Debug().
				Str("difficulty", assessment.Difficulty).
				Int("xp_budget", assessment.XPBudget).
				Int("encounter_xp", assessment.EncounterXP).
				Float64("ratio", assessment.Ratio).
				Msg("encounter balance assessed")
			if !assessment.Balanced {
				c.add(models.Issue{
					Category: def.Category,
					Field:    "monsters",
					Severity: models.SeverityWarning,
					Message: fmt.Sprintf("Encounter XP %d is out of balance with the party budget %d (ratio %.2f)",
						assessment.EncounterXP, assessment.XPBudget, assessment.Ratio),
					Suggestion: strings.Join(assessment.Recommendations, "; "),
				})
			}
			c.add(models.Issue{
				Category: def.Category,
				Field:    "difficulty",
				Severity: models.SeverityInfo,
				Message:  fmt.Sprintf("Assessed difficulty is %s", assessment.Difficulty),
			})
		}
	}
	return c.outcome(v.scorer, measured)
}

// encounterParty extracts the party level, party size, and monster groups,
// reporting an accuracy issue for every field it cannot parse. The boolean
// is false when any of the three is unusable.
func encounterParty(c *collector, category models.RuleCategory, content models.Content) (int, int, []balance.MonsterGroup, bool) {
	ok := true

	level, has := asInt(content["party_level"])
	if !has {
		ok = reportUnusable(c, category, "party_level", "Provide the party level as a whole number from 1 to 20")
	}
	size, has := asInt(content["party_size"])
	if !has {
		ok = reportUnusable(c, category, "party_size", "Provide the party size as a whole number of players")
	}

	var monsters []balance.MonsterGroup
	raw, present := content["monsters"]
	entries, isList := raw.([]any)
	if !present || !isList {
		ok = reportUnusable(c, category, "monsters", "List the monsters as entries with challenge_rating and count")
	} else {
		for i, entry := range entries {
			group, isMap := entry.(map[string]any)
			if !isMap {
				ok = reportUnusable(c, category, indexPath("monsters", i), "Write each monster entry as a mapping with challenge_rating and count")
				continue
			}
			count, hasCount := asInt(group["count"])
			cr := group["challenge_rating"]
			if !hasCount || cr == nil {
				ok = reportUnusable(c, category, indexPath("monsters", i), "Give each monster entry a challenge_rating and a positive count")
				continue
			}
			monsters = append(monsters, balance.MonsterGroup{
				ChallengeRating: normalizeCR(cr),
				Count:           count,
			})
		}
	}
	return level, size, monsters, ok
}

func reportUnusable(c *collector, category models.RuleCategory, field, suggestion string) bool {
	c.add(models.Issue{
		Category:   category,
		Field:      field,
		Severity:   models.SeverityError,
		Message:    fmt.Sprintf("Field %s is missing or not usable for balance assessment", field),
		Suggestion: suggestion,
	}, ComponentAccuracy)
	return false
}
