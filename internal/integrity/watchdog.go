package integrity

import (
	"fmt"
	"sort"
	"strings"

	"github.com/panverse/rules-agent/internal/models"
	"github.com/rs/zerolog"
)

// forbiddenPatterns mark text that is placeholder or mock output rather than
// real generated content. Any hit is critical: placeholder text must never
// reach product output.
var forbiddenPatterns = []string{
	"placeholder",
	"lorem ipsum",
	"sample text",
	"mock content",
	"to be filled",
	"to be determined",
	"to be generated",
	"will be filled",
	"would go here",
	"content goes here",
	"content here",
	"insert content",
	"replace with",
	"coming soon",
	"boilerplate",
	"[content]",
	"tbd",
}

// minLengths holds per-field minimum character counts for narrative text.
// Shorter text is flagged as a warning, never padded.
var minLengths = map[string]int{
	"description":  50,
	"introduction": 200,
	"background":   100,
	"significance": 10,
	"motivation":   10,
	"history":      100,
}

// Watchdog detects content drift: placeholder patterns and hollow narrative
// text in otherwise well-shaped content. It reports issues and never
// substitutes or trims anything.
type Watchdog struct {
	active bool
	logger *zerolog.Logger
}

func NewWatchdog(active bool, logger *zerolog.Logger) *Watchdog {
	return &Watchdog{active: active, logger: logger}
}

// Inspect walks every string field of the content in deterministic order
// and returns integrity issues. An inactive watchdog reports nothing.
func (w *Watchdog) Inspect(category models.RuleCategory, content models.Content) []models.Issue {
	if !w.active {
		return nil
	}
	var issues []models.Issue
	w.walk(category, "", content, &issues)
	if len(issues) > 0 {
		w.logger.Warn().
			Str("category", string(category)).
			Int("issues", len(issues)).
			Msg("integrity violations found")
	}
	return issues
}

func (w *Watchdog) walk(category models.RuleCategory, prefix string, value any, issues *[]models.Issue) {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			w.walk(category, joinPath(prefix, key), v[key], issues)
		}
	case []any:
		for i, elem := range v {
			w.walk(category, fmt.Sprintf("%s[%d]", prefix, i), elem, issues)
		}
	case string:
		w.checkText(category, prefix, v, issues)
	}
}

func (w *Watchdog) checkText(category models.RuleCategory, path, text string, issues *[]models.Issue) {
	lower := strings.ToLower(text)
	for _, pattern := range forbiddenPatterns {
		if strings.Contains(lower, pattern) {
			*issues = append(*issues, models.Issue{
				Category:   category,
				Field:      path,
				Severity:   models.SeverityCritical,
				Message:    fmt.Sprintf("Text contains forbidden pattern %q indicating placeholder content", pattern),
				Suggestion: "Regenerate this section with real content",
			})
			break
		}
	}

	// Minimum lengths apply by field name, wherever the field is nested.
	name := path
	if i := strings.LastIndex(path, "."); i >= 0 {
		name = path[i+1:]
	}
	if min, ok := minLengths[name]; ok && len(strings.TrimSpace(text)) < min {
		*issues = append(*issues, models.Issue{
			Category:   category,
			Field:      path,
			Severity:   models.SeverityWarning,
			Message:    fmt.Sprintf("Field %s has %d characters, minimum is %d", path, len(strings.TrimSpace(text)), min),
			Suggestion: fmt.Sprintf("Expand %s to at least %d characters", name, min),
		})
	}
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
