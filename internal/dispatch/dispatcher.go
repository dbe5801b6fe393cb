package dispatch

import (
	"fmt"

	"github.com/panverse/rules-agent/internal/integrity"
	"github.com/panverse/rules-agent/internal/models"
	"github.com/panverse/rules-agent/internal/rules"
	"github.com/panverse/rules-agent/internal/scoring"
	"github.com/panverse/rules-agent/internal/validator"
	"github.com/rs/zerolog"
)

// contentQualityProfile is the diagnostic weighting over a campaign's nested
// collections. It is reported as its own component score next to the overall
// score, never folded into it.
const contentQualityProfile = "content_quality"

// Dispatcher routes content to the validator registered for its type, runs
// the integrity watchdog over it, and aggregates component scores into the
// final result. It is the single entry point every surface (HTTP, stream,
// batch, MCP) calls.
type Dispatcher struct {
	store    *rules.Store
	registry validator.Registry
	engine   *scoring.Engine
	watchdog *integrity.Watchdog
	logger   *zerolog.Logger
}

func New(store *rules.Store, registry validator.Registry, engine *scoring.Engine, watchdog *integrity.Watchdog, logger *zerolog.Logger) *Dispatcher {
	return &Dispatcher{store: store, registry: registry, engine: engine, watchdog: watchdog, logger: logger}
}

// Validate checks one piece of content against the active rule snapshot.
//
// Content problems come back inside the result as issues; the returned error
// is reserved for caller and configuration faults: an unsupported content
// type (rules.ErrUnsupportedContentType) or a scoring profile that cannot be
// aggregated. Validate never mutates the content and never fills in missing
// fields.
func (d *Dispatcher) Validate(req models.Request) (models.Result, error) {
	category := models.RuleCategory(req.ContentType)
	repo := d.store.Current()

	def, err := repo.Get(category)
	if err != nil {
		return models.Result{}, err
	}
	v, ok := d.registry[category]
	if !ok {
		return models.Result{}, models.ConfigErrorf("no validator registered for category %q", category)
	}

	outcome := v.Validate(req.Content, def, repo)

	watchdogIssues := d.watchdog.Inspect(category, req.Content)
	issues := append(outcome.Issues, watchdogIssues...)

	components := make(map[string]float64, len(outcome.Components)+2)
	for name, score := range outcome.Components {
		components[name] = score
	}
	components["technical"] = d.engine.ComponentScore(watchdogIssues)

	profile := d.engine.ProfileName(category)
	score, err := d.engine.Aggregate(components, profile)
	if err != nil {
		return models.Result{}, err
	}

	if category == models.CategoryCampaign && d.engine.HasProfile(contentQualityProfile) {
		quality, err := d.engine.Aggregate(components, contentQualityProfile)
		if err != nil {
			return models.Result{}, fmt.Errorf("content quality aggregation: %w", err)
		}
		components[contentQualityProfile] = quality
	}

	result := models.Result{
		RequestID:       req.RequestID,
		ContentType:     category,
		Status:          models.DeriveStatus(issues),
		Score:           score,
		Issues:          issues,
		ComponentScores: components,
	}
	d.logger.Info().
		Str("request_id", req.RequestID).
		Str("content_type", string(category)).
		Str("status", string(result.Status)).
		Float64("score", result.Score).
		Int("issues", len(result.Issues)).
		Msg("content validated")
	return result, nil
}

// Categories lists the content types the active rule snapshot supports.
func (d *Dispatcher) Categories() []models.RuleCategory {
	return d.store.Current().Categories()
}

// AcceptableScore exposes the configured acceptance threshold.
func (d *Dispatcher) AcceptableScore() float64 {
	return d.engine.AcceptableScore()
}
