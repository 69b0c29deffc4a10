package config

import (
	"fmt"
	"strings"
)

// NotConfiguredError is returned when no config file exists yet.
type NotConfiguredError struct {
	Path string
}

func (e NotConfiguredError) Error() string {
	return fmt.Sprintf("config file not found at %s; run `%s configure` first", e.Path, AppName)
}

// CorruptedError is returned when the config file is not valid JSON.
type CorruptedError struct {
	Path string
	Err  error
}

func (e CorruptedError) Error() string {
	return fmt.Sprintf("config file is corrupted: %s: %v", e.Path, e.Err)
}

func (e CorruptedError) Unwrap() error { return e.Err }

// MissingFieldsError is returned when required keys are absent from the config file.
type MissingFieldsError struct {
	Path   string
	Fields []string
}

func (e MissingFieldsError) Error() string {
	return fmt.Sprintf("config file %s is missing required fields (%s); run `%s configure` again",
		e.Path, strings.Join(e.Fields, ", "), AppName)
}

// ValidationError captures bad input given during configure.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}
