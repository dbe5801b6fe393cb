package models

// RuleCategory identifies one content-type family in the rule corpus. The set
// is closed: every category must have a rule definition on disk, and the
// dispatcher refuses anything outside it.
type RuleCategory string

const (
	CategoryMonster   RuleCategory = "monster"
	CategorySpell     RuleCategory = "spell"
	CategoryItem      RuleCategory = "item"
	CategoryClass     RuleCategory = "class"
	CategoryRace      RuleCategory = "race"
	CategoryEquipment RuleCategory = "equipment"
	CategoryMechanics RuleCategory = "mechanics"
	CategoryEncounter RuleCategory = "encounter"
	CategoryLocation  RuleCategory = "location"
	CategoryTreasure  RuleCategory = "treasure"
	CategoryCampaign  RuleCategory = "campaign"
)

// Categories lists every registered category in a fixed order.
func Categories() []RuleCategory {
	return []RuleCategory{
		CategoryMonster, CategorySpell, CategoryItem, CategoryClass,
		CategoryRace, CategoryEquipment, CategoryMechanics,
		CategoryEncounter, CategoryLocation, CategoryTreasure,
		CategoryCampaign,
	}
}

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// rank orders severities so status derivation can compare them.
func (s Severity) rank() int {
	switch s {
	case SeverityInfo:
		return 0
	case SeverityWarning:
		return 1
	case SeverityError:
		return 2
	case SeverityCritical:
		return 3
	}
	return -1
}

// Blocking reports whether an issue of this severity makes content invalid.
func (s Severity) Blocking() bool {
	return s.rank() >= SeverityError.rank()
}

type Status string

const (
	StatusPending Status = "pending"
	StatusValid   Status = "valid"
	StatusWarning Status = "warning"
	StatusInvalid Status = "invalid"
)

// Issue is a single problem found in the content itself. Issues are evidence,
// not errors: they are collected into the result and never abort validation.
type Issue struct {
	Category   RuleCategory `json:"category"`
	Field      string       `json:"field"`
	Severity   Severity     `json:"severity"`
	Message    string       `json:"message"`
	Suggestion string       `json:"suggestion,omitempty"`
}

// Content is generated content as the pipeline holds it in memory: field
// names mapped to scalars, nested mappings, or ordered sequences.
type Content = map[string]any

// Request is the wire shape every surface (API, stream, batch, MCP) accepts.
type Request struct {
	RequestID   string  `json:"request_id"`
	ContentType string  `json:"content_type"`
	Content     Content `json:"content"`
}

// Result is the outcome of validating one piece of content. It is never
// mutated after construction; issues keep detection order.
type Result struct {
	RequestID       string             `json:"request_id,omitempty"`
	ContentType     RuleCategory       `json:"content_type"`
	Status          Status             `json:"status"`
	Score           float64            `json:"score"`
	Issues          []Issue            `json:"issues"`
	ComponentScores map[string]float64 `json:"component_scores"`
}

// DeriveStatus computes the terminal status from the issue set: invalid iff
// any error or critical issue exists, warning iff only warnings remain,
// valid otherwise.
func DeriveStatus(issues []Issue) Status {
	var worst Severity
	for _, issue := range issues {
		if issue.Severity.rank() > worst.rank() {
			worst = issue.Severity
		}
	}
	switch {
	case worst.Blocking():
		return StatusInvalid
	case worst == SeverityWarning:
		return StatusWarning
	default:
		return StatusValid
	}
}

// Acceptable reports whether the result clears the given score threshold
// without blocking issues. The generation pipeline uses this to decide
// between accepting content and regenerating it.
func (r Result) Acceptable(threshold float64) bool {
	return r.Status != StatusInvalid && r.Score >= threshold
}
