package validator

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/panverse/rules-agent/internal/models"
	"github.com/panverse/rules-agent/internal/rules"
)

// checkRequired reports an error-severity issue naming every required field
// absent from the content. Missing fields are never filled in.
func checkRequired(c *collector, def *rules.Definition, content models.Content, component string) {
	for _, field := range def.RequiredFields {
		if present(content[field]) {
			continue
		}
		c.add(models.Issue{
			Category:   def.Category,
			Field:      field,
			Severity:   models.SeverityError,
			Message:    fmt.Sprintf("Required field %q is missing", field),
			Suggestion: fmt.Sprintf("Add %s to the %s data", field, def.Category),
		}, component)
	}
}

// checkFields applies the declared enum, range, and length constraints to
// every present field, in sorted field order for deterministic results.
func checkFields(c *collector, def *rules.Definition, content models.Content, component string) {
	names := make([]string, 0, len(def.Fields))
	for name := range def.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value, ok := content[name]
		if !ok || value == nil {
			continue
		}
		checkFieldRule(c, def.Category, name, value, def.Fields[name], component)
	}
}

func checkFieldRule(c *collector, category models.RuleCategory, path string, value any, rule rules.FieldRule, component string) {
	if len(rule.Enum) > 0 && !enumContains(rule.Enum, value) {
		c.add(models.Issue{
			Category:   category,
			Field:      path,
			Severity:   severityOr(rule.Severity, models.SeverityError),
			Message:    fmt.Sprintf("Value %q for %s is not allowed", stringify(value), path),
			Suggestion: suggestionOr(rule.Suggestion, "Use one of: "+strings.Join(rule.Enum, ", ")),
		}, component)
	}
	if rule.Min != nil || rule.Max != nil {
		num, ok := asFloat(value)
		switch {
		case !ok:
			c.add(models.Issue{
				Category:   category,
				Field:      path,
				Severity:   severityOr(rule.Severity, models.SeverityError),
				Message:    fmt.Sprintf("Value %q for %s is not numeric", stringify(value), path),
				Suggestion: suggestionOr(rule.Suggestion, fmt.Sprintf("Set %s to a number", path)),
			}, component)
		case rule.Min != nil && num < *rule.Min, rule.Max != nil && num > *rule.Max:
			c.add(models.Issue{
				Category:   category,
				Field:      path,
				Severity:   severityOr(rule.Severity, models.SeverityError),
				Message:    fmt.Sprintf("Value %v for %s is outside %s", num, path, rangeText(rule)),
				Suggestion: suggestionOr(rule.Suggestion, fmt.Sprintf("Set %s to a value %s", path, rangeText(rule))),
			}, component)
		}
	}
	if rule.MinLength > 0 {
		text, _ := value.(string)
		if len(strings.TrimSpace(text)) < rule.MinLength {
			c.add(models.Issue{
				Category:   category,
				Field:      path,
				Severity:   severityOr(rule.Severity, models.SeverityWarning),
				Message:    fmt.Sprintf("Field %s is shorter than the recommended %d characters", path, rule.MinLength),
				Suggestion: suggestionOr(rule.Suggestion, fmt.Sprintf("Expand %s to at least %d characters", path, rule.MinLength)),
			}, component)
		}
	}
}

// checkCross evaluates the rule-defined implications between fields.
// Violations default to warning severity unless the rule says otherwise.
func checkCross(c *collector, def *rules.Definition, content models.Content, component string) {
	for _, cross := range def.CrossRules {
		value, ok := content[cross.WhenField]
		if !ok || !strings.EqualFold(stringify(value), cross.Equals) {
			continue
		}
		target := content[cross.RequireField]
		violated := !present(target)
		if !violated && cross.RequireEquals != nil {
			violated = !strings.EqualFold(stringify(target), *cross.RequireEquals)
		}
		if !violated {
			continue
		}
		message := cross.Message
		if message == "" {
			message = fmt.Sprintf("%s is %q but %s does not satisfy rule %q", cross.WhenField, cross.Equals, cross.RequireField, cross.Name)
		}
		c.add(models.Issue{
			Category:   def.Category,
			Field:      cross.RequireField,
			Severity:   severityOr(cross.Severity, models.SeverityWarning),
			Message:    message,
			Suggestion: cross.Suggestion,
		}, component)
	}
}

// present reports whether a value counts as supplied: non-nil, and not an
// empty string, mapping, or sequence.
func present(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(v) != ""
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return true
	}
}

// asFloat coerces the numeric shapes JSON and YAML decoding produce,
// including json.Number from decoders running with UseNumber (go-restful's
// entity reader does).
func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// asInt accepts whole numbers only.
func asInt(value any) (int, bool) {
	num, ok := asFloat(value)
	if !ok || num != float64(int(num)) {
		return 0, false
	}
	return int(num), true
}

func stringify(value any) string {
	return fmt.Sprintf("%v", value)
}

func enumContains(enum []string, value any) bool {
	text := stringify(value)
	for _, allowed := range enum {
		if strings.EqualFold(allowed, text) {
			return true
		}
	}
	return false
}

func severityOr(s, fallback models.Severity) models.Severity {
	if s == "" {
		return fallback
	}
	return s
}

func suggestionOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func rangeText(rule rules.FieldRule) string {
	switch {
	case rule.Min != nil && rule.Max != nil:
		return fmt.Sprintf("between %v and %v", *rule.Min, *rule.Max)
	case rule.Min != nil:
		return fmt.Sprintf("at least %v", *rule.Min)
	default:
		return fmt.Sprintf("at most %v", *rule.Max)
	}
}

// indexPath builds a nested entity prefix like "key_npcs[1]".
func indexPath(collection string, i int) string {
	return fmt.Sprintf("%s[%d]", collection, i)
}

// prefixIssues rewrites nested issue field paths under a parent path.
func prefixIssues(prefix string, issues []models.Issue) []models.Issue {
	out := make([]models.Issue, len(issues))
	for i, issue := range issues {
		out[i] = issue
		if issue.Field == "" {
			out[i].Field = prefix
		} else {
			out[i].Field = prefix + "." + issue.Field
		}
	}
	return out
}
