package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecker_Required(t *testing.T) {
	assert.True(t, NewChecker("c").Required("Name", "").HasErrors())
	assert.False(t, NewChecker("c").Required("Name", "x").HasErrors())
}

func TestChecker_RangeInt(t *testing.T) {
	assert.True(t, NewChecker("c").RangeInt("Buffer", 0, 1, 10).HasErrors())
	assert.True(t, NewChecker("c").RangeInt("Buffer", 11, 1, 10).HasErrors())
	assert.False(t, NewChecker("c").RangeInt("Buffer", 10, 1, 10).HasErrors())
}

func TestChecker_OneOf(t *testing.T) {
	c := NewChecker("config").OneOf("Mode", "loose", []string{"strict", "permissive"})
	require.Len(t, c.Errors(), 1)
	assert.Contains(t, c.Errors()[0].Error(), `config.Mode: value "loose"`)
	assert.False(t, NewChecker("c").OneOf("Mode", "strict", []string{"strict"}).HasErrors())
}

func TestChecker_CustomWrapsCause(t *testing.T) {
	boom := errors.New("boom")
	err := NewChecker("c").Custom("Field", func() error { return boom }).Err()
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, NewChecker("c").Custom("Field", func() error { return nil }).Err())
}

func TestChecker_When(t *testing.T) {
	called := false
	NewChecker("c").When(false, func(*Checker) { called = true })
	assert.False(t, called)

	c := NewChecker("c").When(true, func(ch *Checker) { ch.Required("A", "") })
	assert.True(t, c.HasErrors())
}

func TestChecker_CollectsEverything(t *testing.T) {
	c := NewChecker("c").
		Required("A", "").
		Required("B", "").
		RangeInt("C", 5, 0, 1)
	assert.Len(t, c.Errors(), 3)
	assert.Error(t, c.Err())
}

func TestDefaultOr(t *testing.T) {
	assert.Equal(t, "strict", DefaultOr("", "strict"))
	assert.Equal(t, "permissive", DefaultOr("permissive", "strict"))
	assert.Equal(t, 7, DefaultOr(0, 7))
}
