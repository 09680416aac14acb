package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "bogus", ""} {
		logger := New(level)
		assert.NotNil(t, logger, "level %q", level)
		assert.NotNil(t, logger.Logger, "level %q", level)
	}
}

func TestDefault(t *testing.T) {
	assert.NotNil(t, Default())
}

func TestComponent(t *testing.T) {
	logger := New("info").Component("dispatcher")
	assert.NotNil(t, logger)

	var nilLogger *Logger
	assert.NotNil(t, nilLogger.Component("dispatcher"))
}
