package models

import "fmt"

// ConfigurationError marks a malformed or internally inconsistent rule
// source or scoring configuration. It is fatal: raised at load or aggregate
// time and never recovered from automatically.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration: " + e.Reason
}

// ConfigErrorf builds a ConfigurationError from a format string.
func ConfigErrorf(format string, args ...any) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}
