package config

import (
	"errors"
	"fmt"
)

// Checker collects semantic configuration errors through a fluent
// interface. Unlike struct tags it can consult other packages, such as the
// list of validation modes.
type Checker struct {
	errors []error
	name   string // config section name for error messages
}

// NewChecker creates a checker for the named section.
func NewChecker(section string) *Checker {
	return &Checker{
		name:   section,
		errors: make([]error, 0),
	}
}

// Required validates that a string field is not empty.
func (c *Checker) Required(field, value string) *Checker {
	if value == "" {
		c.errors = append(c.errors, fmt.Errorf("%s.%s: required field is empty", c.name, field))
	}
	return c
}

// RangeInt validates that an int field is within [min, max].
func (c *Checker) RangeInt(field string, value, min, max int) *Checker {
	if value < min || value > max {
		c.errors = append(c.errors, fmt.Errorf("%s.%s: value %d is outside range [%d, %d]", c.name, field, value, min, max))
	}
	return c
}

// OneOf validates that a string field is one of the allowed values.
func (c *Checker) OneOf(field, value string, allowed []string) *Checker {
	for _, a := range allowed {
		if value == a {
			return c
		}
	}
	c.errors = append(c.errors, fmt.Errorf("%s.%s: value %q must be one of %v", c.name, field, value, allowed))
	return c
}

// Custom applies a custom check.
func (c *Checker) Custom(field string, fn func() error) *Checker {
	if err := fn(); err != nil {
		c.errors = append(c.errors, fmt.Errorf("%s.%s: %w", c.name, field, err))
	}
	return c
}

// When applies checks only if condition holds.
func (c *Checker) When(condition bool, checks func(*Checker)) *Checker {
	if condition {
		checks(c)
	}
	return c
}

// HasErrors returns true if any check failed.
func (c *Checker) HasErrors() bool {
	return len(c.errors) > 0
}

// Errors returns all failures.
func (c *Checker) Errors() []error {
	return c.errors
}

// Err joins every failure, or returns nil.
func (c *Checker) Err() error {
	return errors.Join(c.errors...)
}

// DefaultOr returns value if it is non-zero, otherwise def.
func DefaultOr[T comparable](value, def T) T {
	var zero T
	if value == zero {
		return def
	}
	return value
}
