package validator

import (
	"fmt"
	"strings"

	"github.com/panverse/rules-agent/internal/models"
	"github.com/panverse/rules-agent/internal/rules"
	"github.com/rs/zerolog"
)

// campaignValidator checks the composite campaign document: structural
// minimums, narrative quality, and every nested entity through the same
// validators the entity types get standalone. Nested issues come back with
// their field paths prefixed, so "key_npcs[1].race" points at the exact
// offending element.
type campaignValidator struct {
	scorer   Scorer
	registry Registry
	logger   *zerolog.Logger
}

func newCampaignValidator(scorer Scorer, registry Registry, logger *zerolog.Logger) *campaignValidator {
	return &campaignValidator{scorer: scorer, registry: registry, logger: logger}
}

// nested collections a campaign may embed, each validated with the named
// entity validator and charged against its own diagnostic component.
var campaignCollections = []struct {
	field     string
	category  models.RuleCategory
	component string
}{
	{"key_locations", models.CategoryLocation, ComponentLocations},
	{"key_items", models.CategoryItem, ComponentItems},
	{"key_monsters", models.CategoryMonster, ComponentMonsters},
	{"encounters", models.CategoryEncounter, ComponentEncounters},
}

func (v *campaignValidator) Validate(content models.Content, def *rules.Definition, repo *rules.Repository) Outcome {
	c := newCollector(
		ComponentCompleteness, ComponentEngagement,
		ComponentNPCs, ComponentLocations, ComponentItems, ComponentEncounters, ComponentMonsters,
	)
	checkRequired(c, def, content, ComponentCompleteness)
	checkFields(c, def, content, ComponentEngagement)
	checkCross(c, def, content, ComponentEngagement)
	v.checkStructure(c, def, content)
	v.checkStoryArcs(c, def, content)
	v.checkNPCs(c, def, content, repo)

	balanceScores := v.checkCollections(c, content, def, repo)
	measuredBalance := 1.0
	if len(balanceScores) > 0 {
		sum := 0.0
		for _, score := range balanceScores {
			sum += score
		}
		measuredBalance = sum / float64(len(balanceScores))
	}
	return c.outcome(v.scorer, map[string]float64{ComponentBalance: measuredBalance})
}

// checkStructure enforces the configured minimum counts for story arcs,
// NPCs, and locations. Each shortfall is its own error issue.
func (v *campaignValidator) checkStructure(c *collector, def *rules.Definition, content models.Content) {
	if def.Structure == nil {
		return
	}
	arcs := listLen(content["story_arcs"])
	if arcs < def.Structure.MinStoryArcs {
		c.add(models.Issue{
			Category:   def.Category,
			Field:      "story_arcs",
			Severity:   models.SeverityError,
			Message:    fmt.Sprintf("Campaign has %d story arcs, needs at least %d", arcs, def.Structure.MinStoryArcs),
			Suggestion: "Add a story arc with acts, a climax, and a resolution",
		}, ComponentCompleteness)
	}
	npcs := listLen(content["key_npcs"])
	if npcs < def.Structure.MinKeyNPCs {
		c.add(models.Issue{
			Category:   def.Category,
			Field:      "key_npcs",
			Severity:   models.SeverityError,
			Message:    fmt.Sprintf("Campaign has %d key NPCs, needs at least %d", npcs, def.Structure.MinKeyNPCs),
			Suggestion: "Introduce more named characters central to the plot",
		}, ComponentCompleteness, ComponentNPCs)
	}
	locations := listLen(content["key_locations"])
	if locations < def.Structure.MinKeyLocations {
		c.add(models.Issue{
			Category:   def.Category,
			Field:      "key_locations",
			Severity:   models.SeverityError,
			Message:    fmt.Sprintf("Campaign has %d key locations, needs at least %d", locations, def.Structure.MinKeyLocations),
			Suggestion: "Add more locations the party will visit",
		}, ComponentCompleteness, ComponentLocations)
	}
}

// checkStoryArcs reviews narrative depth: a usable title, at least two acts,
// a climax, and a resolution per arc. Thin arcs degrade engagement but never
// block the campaign outright.
func (v *campaignValidator) checkStoryArcs(c *collector, def *rules.Definition, content models.Content) {
	arcs, ok := content["story_arcs"].([]any)
	if !ok {
		return
	}
	for i, raw := range arcs {
		arc, isMap := raw.(map[string]any)
		prefix := indexPath("story_arcs", i)
		if !isMap {
			c.add(models.Issue{
				Category:   def.Category,
				Field:      prefix,
				Severity:   models.SeverityWarning,
				Message:    "Story arc must be a mapping with title, acts, climax, and resolution",
				Suggestion: "Describe the arc with a title, acts, a climax, and a resolution",
			}, ComponentEngagement)
			continue
		}
		title, _ := arc["title"].(string)
		if len(strings.TrimSpace(title)) < 5 {
			c.add(models.Issue{
				Category:   def.Category,
				Field:      prefix + ".title",
				Severity:   models.SeverityWarning,
				Message:    "Story arc title is missing or too short",
				Suggestion: "Give the arc a descriptive title",
			}, ComponentEngagement)
		}
		if listLen(arc["acts"]) < 2 {
			c.add(models.Issue{
				Category:   def.Category,
				Field:      prefix + ".acts",
				Severity:   models.SeverityWarning,
				Message:    "Story arc has fewer than two acts",
				Suggestion: "Structure the arc into at least two acts",
			}, ComponentEngagement)
		}
		for _, beat := range []string{"climax", "resolution"} {
			if !present(arc[beat]) {
				c.add(models.Issue{
					Category:   def.Category,
					Field:      prefix + "." + beat,
					Severity:   models.SeverityWarning,
					Message:    fmt.Sprintf("Story arc has no %s", beat),
					Suggestion: fmt.Sprintf("Describe the arc's %s", beat),
				}, ComponentEngagement)
			}
		}
	}
}

// personality facets every fleshed-out NPC should carry.
var npcPersonalityKeys = []string{"traits", "ideals", "bonds", "flaws"}

// checkNPCs validates every key NPC: race and class against the standalone
// race and class rule sets, background against the campaign's own enum, and
// a personality block with all four facets.
func (v *campaignValidator) checkNPCs(c *collector, def *rules.Definition, content models.Content, repo *rules.Repository) {
	npcs, ok := content["key_npcs"].([]any)
	if !ok {
		return
	}
	races := enumFrom(repo, models.CategoryRace, "name")
	classes := enumFrom(repo, models.CategoryClass, "name")
	backgrounds := def.Fields["key_npcs.background"].Enum

	for i, raw := range npcs {
		npc, isMap := raw.(map[string]any)
		prefix := indexPath("key_npcs", i)
		if !isMap {
			c.add(models.Issue{
				Category:   def.Category,
				Field:      prefix,
				Severity:   models.SeverityError,
				Message:    "Key NPC must be a mapping with name, race, class, and background",
				Suggestion: "Describe the NPC with name, race, class, background, and personality",
			}, ComponentNPCs)
			continue
		}
		if !present(npc["name"]) {
			c.add(models.Issue{
				Category:   def.Category,
				Field:      prefix + ".name",
				Severity:   models.SeverityError,
				Message:    "Key NPC has no name",
				Suggestion: "Name the NPC",
			}, ComponentNPCs)
		}
		checkNPCEnum(c, def.Category, prefix, "race", npc["race"], races, ComponentNPCs)
		checkNPCEnum(c, def.Category, prefix, "class", npc["class"], classes, ComponentNPCs)
		checkNPCEnum(c, def.Category, prefix, "background", npc["background"], backgrounds, ComponentNPCs)

		personality, has := npc["personality"].(map[string]any)
		if !has {
			c.add(models.Issue{
				Category:   def.Category,
				Field:      prefix + ".personality",
				Severity:   models.SeverityWarning,
				Message:    "Key NPC has no personality block",
				Suggestion: "Add personality with traits, ideals, bonds, and flaws",
			}, ComponentNPCs)
			continue
		}
		for _, key := range npcPersonalityKeys {
			if !present(personality[key]) {
				c.add(models.Issue{
					Category:   def.Category,
					Field:      prefix + ".personality." + key,
					Severity:   models.SeverityWarning,
					Message:    fmt.Sprintf("NPC personality is missing %s", key),
					Suggestion: fmt.Sprintf("Add %s to the NPC's personality", key),
				}, ComponentNPCs)
			}
		}
	}
}

// checkCollections validates every nested entity collection with the same
// validator its content type gets standalone. Nested issues keep their
// severity and are charged against the collection's diagnostic component;
// each nested encounter also contributes its balance score.
func (v *campaignValidator) checkCollections(c *collector, content models.Content, def *rules.Definition, repo *rules.Repository) []float64 {
	var balanceScores []float64
	for _, col := range campaignCollections {
		entries, ok := content[col.field].([]any)
		if !ok {
			continue
		}
		nestedDef, err := repo.Get(col.category)
		if err != nil {
			v.logger.Warn().Str("category", string(col.category)).Msg("nested rule definition unavailable")
			continue
		}
		nested := v.registry[col.category]
		for i, raw := range entries {
			entry, isMap := raw.(map[string]any)
			prefix := indexPath(col.field, i)
			if !isMap {
				c.add(models.Issue{
					Category:   def.Category,
					Field:      prefix,
					Severity:   models.SeverityError,
					Message:    fmt.Sprintf("Entry %d of %s is not a %s document", i, col.field, col.category),
					Suggestion: fmt.Sprintf("Write each %s entry as a full %s mapping", col.field, col.category),
				}, col.component)
				continue
			}
			outcome := nested.Validate(entry, nestedDef, repo)
			for _, issue := range prefixIssues(prefix, outcome.Issues) {
				c.add(issue, col.component)
			}
			if col.category == models.CategoryEncounter {
				balanceScores = append(balanceScores, outcome.Components[ComponentBalance])
			}
		}
	}
	return balanceScores
}

func checkNPCEnum(c *collector, category models.RuleCategory, prefix, field string, value any, allowed []string, component string) {
	if !present(value) {
		c.add(models.Issue{
			Category:   category,
			Field:      prefix + "." + field,
			Severity:   models.SeverityError,
			Message:    fmt.Sprintf("Key NPC is missing %s", field),
			Suggestion: fmt.Sprintf("Set the NPC's %s", field),
		}, component)
		return
	}
	if len(allowed) == 0 || enumContains(allowed, value) {
		return
	}
	c.add(models.Issue{
		Category:   category,
		Field:      prefix + "." + field,
		Severity:   models.SeverityError,
		Message:    fmt.Sprintf("NPC %s %q is not recognized", field, stringify(value)),
		Suggestion: "Use one of: " + strings.Join(allowed, ", "),
	}, component)
}

// enumFrom reads the allowed value set a sibling rule definition declares
// for one of its fields.
func enumFrom(repo *rules.Repository, category models.RuleCategory, field string) []string {
	def, err := repo.Get(category)
	if err != nil {
		return nil
	}
	return def.Fields[field].Enum
}

func listLen(value any) int {
	list, ok := value.([]any)
	if !ok {
		return 0
	}
	return len(list)
}
