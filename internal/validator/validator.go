package validator

//go:generate mockgen -source=validator.go -destination=mocks/mock_validator.go -package=mocks

import (
	"github.com/panverse/rules-agent/internal/models"
	"github.com/panverse/rules-agent/internal/rules"
	"github.com/rs/zerolog"
)

// Component names shared across validators. Scoring profiles reference these
// by name; diagnostic components (nested collection aggregates) are reported
// but only weighted when a profile asks for them.
const (
	ComponentCompleteness = "completeness"
	ComponentAccuracy     = "accuracy"
	ComponentConsistency  = "consistency"
	ComponentBalance      = "balance"
	ComponentEngagement   = "engagement"
	ComponentNPCs         = "npcs"
	ComponentLocations    = "locations"
	ComponentItems        = "items"
	ComponentEncounters   = "encounters"
	ComponentMonsters     = "monsters"
)

// Scorer turns an issue list into a component score. The scoring engine
// implements it; validators never embed penalty constants themselves.
type Scorer interface {
	ComponentScore(issues []models.Issue) float64
}

// Outcome is what one validator produces: issues in detection order plus a
// named component score per concern it measured.
type Outcome struct {
	Issues     []models.Issue
	Components map[string]float64
}

// Validator checks one content-type family against its rule definition.
// Implementations never abort on bad content and never substitute defaults:
// every gap is reported as an issue so the caller can see exactly what
// failed.
type Validator interface {
	Validate(content models.Content, def *rules.Definition, repo *rules.Repository) Outcome
}

// Registry maps every registered content type to its validator. Adding a
// content type means registering an implementation here, not growing a
// branch chain.
type Registry map[models.RuleCategory]Validator

// NewRegistry wires one validator per content-type family.
func NewRegistry(scorer Scorer, logger *zerolog.Logger) Registry {
	reg := Registry{
		models.CategoryMonster:   newTypeValidator(scorer, monsterChecks),
		models.CategorySpell:     newTypeValidator(scorer, spellChecks),
		models.CategoryItem:      newTypeValidator(scorer, nil),
		models.CategoryClass:     newTypeValidator(scorer, nil),
		models.CategoryRace:      newTypeValidator(scorer, nil),
		models.CategoryEquipment: newTypeValidator(scorer, equipmentChecks),
		models.CategoryMechanics: newTypeValidator(scorer, nil),
		models.CategoryLocation:  newTypeValidator(scorer, locationChecks),
		models.CategoryTreasure:  newTypeValidator(scorer, treasureChecks),
		models.CategoryEncounter: newEncounterValidator(scorer, logger),
	}
	reg[models.CategoryCampaign] = newCampaignValidator(scorer, reg, logger)
	return reg
}

// collector accumulates issues in detection order while also charging each
// issue against the components it degrades.
type collector struct {
	issues  []models.Issue
	buckets map[string][]models.Issue
	order   []string
}

// newCollector fixes the component set up front so every outcome carries the
// same component names regardless of how clean the content is.
func newCollector(components ...string) *collector {
	c := &collector{buckets: make(map[string][]models.Issue, len(components)), order: components}
	for _, name := range components {
		c.buckets[name] = nil
	}
	return c
}

// add records an issue and charges it against zero or more components.
func (c *collector) add(issue models.Issue, components ...string) {
	c.issues = append(c.issues, issue)
	for _, name := range components {
		c.buckets[name] = append(c.buckets[name], issue)
	}
}

// outcome closes the collector: penalty-scored buckets first, then directly
// measured scores (which win over bucket scores of the same name).
func (c *collector) outcome(scorer Scorer, measured map[string]float64) Outcome {
	components := make(map[string]float64, len(c.order))
	for _, name := range c.order {
		components[name] = scorer.ComponentScore(c.buckets[name])
	}
	for name, score := range measured {
		components[name] = score
	}
	return Outcome{Issues: c.issues, Components: components}
}
