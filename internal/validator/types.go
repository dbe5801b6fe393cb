package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/panverse/rules-agent/internal/models"
	"github.com/panverse/rules-agent/internal/rules"
)

// typeHook adds the checks a content family needs beyond the declarative
// rules: nested structures, cross-definition lookups, format checks.
type typeHook func(c *collector, content models.Content, def *rules.Definition, repo *rules.Repository)

// typeValidator is the shared validator for simple content types. It runs
// required-field, per-field, and cross-field checks from the rule definition
// and then the family-specific hook, charging completeness, accuracy, and
// consistency respectively.
type typeValidator struct {
	scorer Scorer
	hook   typeHook
}

func newTypeValidator(scorer Scorer, hook typeHook) *typeValidator {
	return &typeValidator{scorer: scorer, hook: hook}
}

func (v *typeValidator) Validate(content models.Content, def *rules.Definition, repo *rules.Repository) Outcome {
	c := newCollector(ComponentCompleteness, ComponentAccuracy, ComponentConsistency)
	checkRequired(c, def, content, ComponentCompleteness)
	checkFields(c, def, content, ComponentAccuracy)
	checkCross(c, def, content, ComponentConsistency)
	if v.hook != nil {
		v.hook(c, content, def, repo)
	}
	return c.outcome(v.scorer, nil)
}

// monsterChecks validates the nested ability score block and confirms the
// declared challenge rating exists in the shared CR tables.
func monsterChecks(c *collector, content models.Content, def *rules.Definition, repo *rules.Repository) {
	if raw, ok := content["abilities"]; ok {
		abilities, isMap := raw.(map[string]any)
		if !isMap {
			c.add(models.Issue{
				Category:   def.Category,
				Field:      "abilities",
				Severity:   models.SeverityError,
				Message:    "Field abilities must be a mapping of ability name to score",
				Suggestion: "Provide abilities as str/dex/con/int/wis/cha scores",
			}, ComponentAccuracy)
		} else {
			names := make([]string, 0, len(abilities))
			for name := range abilities {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				score, ok := asFloat(abilities[name])
				if !ok || score < 1 || score > 30 {
					c.add(models.Issue{
						Category:   def.Category,
						Field:      "abilities." + name,
						Severity:   models.SeverityError,
						Message:    fmt.Sprintf("Ability score %s must be a number between 1 and 30", name),
						Suggestion: fmt.Sprintf("Set abilities.%s to a score between 1 and 30", name),
					}, ComponentAccuracy)
				}
			}
		}
	}

	cr, ok := content["challenge_rating"]
	if !ok || cr == nil {
		return
	}
	encounterDef, err := repo.Get(models.CategoryEncounter)
	if err != nil || encounterDef.Balance == nil {
		return
	}
	if _, known := encounterDef.Balance.CRXP[normalizeCR(cr)]; !known {
		c.add(models.Issue{
			Category:   def.Category,
			Field:      "challenge_rating",
			Severity:   models.SeverityError,
			Message:    fmt.Sprintf("Challenge rating %q has no XP value", stringify(cr)),
			Suggestion: "Use a standard challenge rating such as 1/4, 1/2, or an integer up to 20",
		}, ComponentAccuracy)
	}
}

// normalizeCR renders a challenge rating the way the CR tables key it:
// fractions stay as written, whole numbers lose any decimal point.
func normalizeCR(value any) string {
	if num, ok := asInt(value); ok {
		return fmt.Sprintf("%d", num)
	}
	return strings.TrimSpace(stringify(value))
}

// spellChecks enforces the constraints the declarative rules cannot express
// between spell level and casting properties.
func spellChecks(c *collector, content models.Content, def *rules.Definition, _ *rules.Repository) {
	level, ok := asInt(content["level"])
	if !ok {
		return
	}
	if ritual, isBool := content["ritual"].(bool); isBool && ritual && level == 0 {
		c.add(models.Issue{
			Category:   def.Category,
			Field:      "ritual",
			Severity:   models.SeverityError,
			Message:    "Cantrips cannot be ritual spells",
			Suggestion: "Remove the ritual flag or raise the spell level to 1 or higher",
		}, ComponentConsistency)
	}
}

// equipmentChecks verifies cost strings carry an amount and a coin unit,
// e.g. "15 gp".
func equipmentChecks(c *collector, content models.Content, def *rules.Definition, _ *rules.Repository) {
	raw, ok := content["cost"]
	if !ok || raw == nil {
		return
	}
	cost, isString := raw.(string)
	parts := strings.Fields(cost)
	valid := isString && len(parts) == 2
	if valid {
		if _, err := fmt.Sscanf(parts[0], "%f", new(float64)); err != nil {
			valid = false
		}
		switch strings.ToLower(parts[1]) {
		case "cp", "sp", "ep", "gp", "pp":
		default:
			valid = false
		}
	}
	if !valid {
		c.add(models.Issue{
			Category:   def.Category,
			Field:      "cost",
			Severity:   models.SeverityWarning,
			Message:    fmt.Sprintf("Cost %q is not in amount-and-coin form", stringify(raw)),
			Suggestion: "Write cost as an amount followed by a coin unit, for example \"15 gp\"",
		}, ComponentAccuracy)
	}
}

// locationChecks reviews the optional nested encounter stubs a location may
// embed, checking each declared difficulty against the encounter rules.
func locationChecks(c *collector, content models.Content, def *rules.Definition, repo *rules.Repository) {
	raw, ok := content["encounters"]
	if !ok {
		return
	}
	entries, isList := raw.([]any)
	if !isList {
		return
	}
	encounterDef, err := repo.Get(models.CategoryEncounter)
	if err != nil {
		return
	}
	allowed := encounterDef.Fields["difficulty"].Enum
	for i, entry := range entries {
		stub, isMap := entry.(map[string]any)
		if !isMap {
			continue
		}
		difficulty, has := stub["difficulty"]
		if !has || difficulty == nil {
			continue
		}
		if !enumContains(allowed, difficulty) {
			c.add(models.Issue{
				Category:   def.Category,
				Field:      indexPath("encounters", i) + ".difficulty",
				Severity:   models.SeverityWarning,
				Message:    fmt.Sprintf("Encounter difficulty %q is not a recognized tier", stringify(difficulty)),
				Suggestion: "Use one of: " + strings.Join(allowed, ", "),
			}, ComponentConsistency)
		}
	}
}

// treasureChecks requires every hoard entry to name itself and carry a value.
func treasureChecks(c *collector, content models.Content, def *rules.Definition, _ *rules.Repository) {
	raw, ok := content["contents"]
	if !ok {
		return
	}
	entries, isList := raw.([]any)
	if !isList {
		return
	}
	for i, entry := range entries {
		item, isMap := entry.(map[string]any)
		if !isMap {
			c.add(models.Issue{
				Category:   def.Category,
				Field:      indexPath("contents", i),
				Severity:   models.SeverityWarning,
				Message:    "Treasure entry must be a mapping with name and value",
				Suggestion: "Describe each treasure entry with at least a name and a value",
			}, ComponentAccuracy)
			continue
		}
		for _, field := range []string{"name", "value"} {
			if !present(item[field]) {
				c.add(models.Issue{
					Category:   def.Category,
					Field:      indexPath("contents", i) + "." + field,
					Severity:   models.SeverityWarning,
					Message:    fmt.Sprintf("Treasure entry %d is missing %s", i, field),
					Suggestion: fmt.Sprintf("Add a %s to treasure entry %d", field, i),
				}, ComponentAccuracy)
			}
		}
	}
}
