package rules

import (
	"fmt"

	"github.com/panverse/rules-agent/internal/models"
)

func configErrorf(format string, args ...any) error {
	return models.ConfigErrorf(format, args...)
}

// FieldRule constrains one field of a content type. A rule may declare an
// allowed value set, a numeric range, or a minimum text length. Severity
// defaults to error; soft advisory rules (description length and the like)
// declare warning explicitly.
type FieldRule struct {
	Enum       []string        `yaml:"enum,omitempty"`
	Min        *float64        `yaml:"min,omitempty"`
	Max        *float64        `yaml:"max,omitempty"`
	MinLength  int             `yaml:"min_length,omitempty"`
	Severity   models.Severity `yaml:"severity,omitempty"`
	Suggestion string          `yaml:"suggestion,omitempty"`
}

// CrossRule is a rule-defined implication between two fields: when
// when_field equals the given value, require_field must be present or carry
// require_equals. Severity defaults to warning.
type CrossRule struct {
	Name          string          `yaml:"name"`
	WhenField     string          `yaml:"when_field"`
	Equals        string          `yaml:"equals"`
	RequireField  string          `yaml:"require_field"`
	RequireEquals *string         `yaml:"require_equals,omitempty"`
	Severity      models.Severity `yaml:"severity,omitempty"`
	Message       string          `yaml:"message,omitempty"`
	Suggestion    string          `yaml:"suggestion,omitempty"`
}

// DifficultyTier maps an encounter XP ratio ceiling to a difficulty name.
// Tiers are checked in order; a ratio above every ceiling falls into the
// final tier.
type DifficultyTier struct {
	Name     string  `yaml:"name"`
	MaxRatio float64 `yaml:"max_ratio"`
}

// BalanceTables carries the fixed lookup tables the balance calculator
// consumes: per-level XP budgets, challenge-rating XP values (fractional
// ratings written as "1/8", "1/4", "1/2"), and party-size multipliers.
type BalanceTables struct {
	XPBudget         map[int]int     `yaml:"xp_budget"`
	CRXP             map[string]int  `yaml:"cr_xp"`
	SizeMultipliers  map[int]float64 `yaml:"size_multipliers"`
	BalanceTolerance float64         `yaml:"balance_tolerance"`
	Tiers            []DifficultyTier `yaml:"difficulty_tiers"`
}

// StructureRules holds the structural minimums for composite content.
type StructureRules struct {
	MinStoryArcs    int `yaml:"min_story_arcs"`
	MinKeyNPCs      int `yaml:"min_key_npcs"`
	MinKeyLocations int `yaml:"min_key_locations"`
}

// Definition is the declarative rule set for one content type, parsed once
// at load time and immutable afterwards.
type Definition struct {
	Category       models.RuleCategory  `yaml:"category"`
	Version        string               `yaml:"version"`
	RequiredFields []string             `yaml:"required_fields"`
	Fields         map[string]FieldRule `yaml:"fields,omitempty"`
	CrossRules     []CrossRule          `yaml:"cross_rules,omitempty"`
	Balance        *BalanceTables       `yaml:"balance,omitempty"`
	Structure      *StructureRules      `yaml:"structure,omitempty"`
}

const (
	minPartyLevel = 1
	maxPartyLevel = 20
	maxPartySize  = 8
)

// fractional challenge ratings every CR table must carry.
var fractionalCRs = []string{"0", "1/8", "1/4", "1/2"}

// validate rejects malformed definitions eagerly so a later validation call
// can never fail partway through on bad rule data.
func (d *Definition) validate() error {
	if d.Category == "" {
		return configErrorf("definition missing category")
	}
	for name, rule := range d.Fields {
		if rule.Min != nil && rule.Max != nil && *rule.Min > *rule.Max {
			return configErrorf("%s: field %q range min %v > max %v", d.Category, name, *rule.Min, *rule.Max)
		}
		if rule.Enum != nil && len(rule.Enum) == 0 {
			return configErrorf("%s: field %q declares an empty enum", d.Category, name)
		}
		if err := checkSeverity(rule.Severity); err != nil {
			return configErrorf("%s: field %q: %v", d.Category, name, err)
		}
	}
	for _, cr := range d.CrossRules {
		if cr.WhenField == "" || cr.RequireField == "" {
			return configErrorf("%s: cross rule %q must name when_field and require_field", d.Category, cr.Name)
		}
		if err := checkSeverity(cr.Severity); err != nil {
			return configErrorf("%s: cross rule %q: %v", d.Category, cr.Name, err)
		}
	}
	if d.Balance != nil {
		if err := d.Balance.validate(); err != nil {
			return configErrorf("%s: %v", d.Category, err)
		}
	}
	return nil
}

func checkSeverity(s models.Severity) error {
	switch s {
	case "", models.SeverityInfo, models.SeverityWarning, models.SeverityError, models.SeverityCritical:
		return nil
	}
	return fmt.Errorf("unknown severity %q", s)
}

// validate checks the balance tables for values the calculator cannot
// tolerate: every party level needs a positive budget that does not shrink
// as levels rise, every party size a positive multiplier, and the CR table
// must be contiguous through the level cap with positive XP values. A zero
// budget or multiplier would turn the budget ratio into Inf or NaN, so all
// of these are rejected at load time.
func (b *BalanceTables) validate() error {
	for level := minPartyLevel; level <= maxPartyLevel; level++ {
		budget, ok := b.XPBudget[level]
		if !ok {
			return fmt.Errorf("xp_budget table has no entry for level %d", level)
		}
		if budget <= 0 {
			return fmt.Errorf("xp_budget for level %d must be positive, got %d", level, budget)
		}
		if level > minPartyLevel && budget < b.XPBudget[level-1] {
			return fmt.Errorf("xp_budget must not decrease with level, got %d for level %d after %d", budget, level, b.XPBudget[level-1])
		}
	}
	for size := 1; size <= maxPartySize; size++ {
		mult, ok := b.SizeMultipliers[size]
		if !ok {
			return fmt.Errorf("size_multipliers table has no entry for party size %d", size)
		}
		if mult <= 0 {
			return fmt.Errorf("size_multiplier for party size %d must be positive, got %v", size, mult)
		}
	}
	for _, cr := range fractionalCRs {
		xp, ok := b.CRXP[cr]
		if !ok {
			return fmt.Errorf("cr_xp table has no entry for challenge rating %q", cr)
		}
		if xp <= 0 {
			return fmt.Errorf("cr_xp for challenge rating %q must be positive, got %d", cr, xp)
		}
	}
	for cr := 1; cr <= maxPartyLevel; cr++ {
		xp, ok := b.CRXP[fmt.Sprintf("%d", cr)]
		if !ok {
			return fmt.Errorf("cr_xp table has no entry for challenge rating %d", cr)
		}
		if xp <= 0 {
			return fmt.Errorf("cr_xp for challenge rating %d must be positive, got %d", cr, xp)
		}
	}
	if b.BalanceTolerance <= 0 {
		return fmt.Errorf("balance_tolerance must be positive, got %v", b.BalanceTolerance)
	}
	if len(b.Tiers) == 0 {
		return fmt.Errorf("difficulty_tiers must not be empty")
	}
	prev := 0.0
	for _, tier := range b.Tiers {
		if tier.Name == "" {
			return fmt.Errorf("difficulty tier missing name")
		}
		if tier.MaxRatio <= prev {
			return fmt.Errorf("difficulty tiers must have strictly increasing max_ratio, got %v after %v", tier.MaxRatio, prev)
		}
		prev = tier.MaxRatio
	}
	return nil
}
