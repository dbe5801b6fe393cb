package scoring

import (
	"math"
	"os"
	"sort"

	"github.com/panverse/rules-agent/internal/models"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// weightTolerance is how far a profile's weights may drift from 1.0 before
// the configuration is rejected.
const weightTolerance = 0.001

// Config externalizes all scoring policy: per-severity penalties for
// component scores, named weight profiles per content type, and the
// acceptance threshold the generation pipeline compares against. None of
// these numbers live in validator code.
type Config struct {
	Penalties       map[models.Severity]float64   `yaml:"penalties"`
	AcceptableScore float64                       `yaml:"acceptable_score"`
	Profiles        map[string]map[string]float64 `yaml:"profiles"`
}

// LoadConfig reads and validates the scoring configuration.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, models.ConfigErrorf("scoring config %s: %v", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, models.ConfigErrorf("scoring config %s: %v", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects inconsistent scoring policy eagerly.
func (c Config) Validate() error {
	for _, severity := range []models.Severity{models.SeverityInfo, models.SeverityWarning, models.SeverityError, models.SeverityCritical} {
		penalty, ok := c.Penalties[severity]
		if !ok {
			return models.ConfigErrorf("penalties missing severity %q", severity)
		}
		if penalty < 0 {
			return models.ConfigErrorf("penalty for %q must not be negative, got %v", severity, penalty)
		}
	}
	if c.AcceptableScore < 0 || c.AcceptableScore > 1 {
		return models.ConfigErrorf("acceptable_score %v outside [0,1]", c.AcceptableScore)
	}
	if _, ok := c.Profiles[DefaultProfile]; !ok {
		return models.ConfigErrorf("profiles missing %q", DefaultProfile)
	}
	for name, weights := range c.Profiles {
		if len(weights) == 0 {
			return models.ConfigErrorf("profile %q has no weights", name)
		}
		sum := 0.0
		for component, weight := range weights {
			if weight <= 0 {
				return models.ConfigErrorf("profile %q: weight for %q must be positive, got %v", name, component, weight)
			}
			sum += weight
		}
		if math.Abs(sum-1.0) > weightTolerance {
			return models.ConfigErrorf("profile %q weights sum to %v, want 1.0", name, sum)
		}
	}
	return nil
}

// DefaultProfile is the weight profile applied to content types without a
// profile of their own.
const DefaultProfile = "default"

// Engine combines component scores into one comparable overall score.
type Engine struct {
	cfg    Config
	logger *zerolog.Logger
}

func NewEngine(cfg Config, logger *zerolog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg, logger: logger}, nil
}

// ComponentScore turns an issue list into a sub-score: 1.0 minus the
// configured penalty per issue, floored at 0.0.
func (e *Engine) ComponentScore(issues []models.Issue) float64 {
	score := 1.0
	for _, issue := range issues {
		score -= e.cfg.Penalties[issue.Severity]
	}
	if score < 0 {
		return 0.0
	}
	return score
}

// ProfileName resolves the weight profile for a content type, falling back
// to the default profile.
func (e *Engine) ProfileName(category models.RuleCategory) string {
	if _, ok := e.cfg.Profiles[string(category)]; ok {
		return string(category)
	}
	return DefaultProfile
}

// HasProfile reports whether a named weight profile is configured.
func (e *Engine) HasProfile(name string) bool {
	_, ok := e.cfg.Profiles[name]
	return ok
}

// Aggregate computes the weighted sum of component scores under the named
// profile. A component the profile weights but the validator did not produce
// is a configuration failure, never a silent zero. Components outside the
// profile are diagnostic and ignored here.
func (e *Engine) Aggregate(components map[string]float64, profile string) (float64, error) {
	weights, ok := e.cfg.Profiles[profile]
	if !ok {
		return 0, models.ConfigErrorf("unknown scoring profile %q", profile)
	}

	names := make([]string, 0, len(weights))
	for name := range weights {
		names = append(names, name)
	}
	sort.Strings(names)

	total := 0.0
	for _, name := range names {
		score, ok := components[name]
		if !ok {
			return 0, models.ConfigErrorf("profile %q requires component %q which was not produced", profile, name)
		}
		total += score * weights[name]
	}
	if total < 0 {
		total = 0
	}
	if total > 1 {
		total = 1
	}
	e.logger.Debug().Str("profile", profile).Float64("score", total).Msg("aggregated component scores")
	return total, nil
}

// AcceptableScore returns the configured acceptance threshold.
func (e *Engine) AcceptableScore() float64 {
	return e.cfg.AcceptableScore
}
