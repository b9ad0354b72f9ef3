package mapper_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"mtb-mapper/mapper"
	"mtb-mapper/options"
)

// Not parallel: the engine logger is global.
func TestLoggers(t *testing.T) {
	engineCore, engineLogs := observer.New(zapcore.DebugLevel)
	mapper.SetLogger(zap.New(engineCore))
	t.Cleanup(func() { mapper.SetLogger(nil) })

	core, logs := observer.New(zapcore.DebugLevel)
	r := mapper.New(options.WithLogger(zap.New(core)), options.WithTrace(true))

	require.NoError(t, mapper.Configure(r, func(c *mapper.Config[Reading, Measurement]) {
		c.MapPropertyByName("Raw", "Raw", func(string) int { panic("bad reading") })
		c.IgnoreByName("Parsed")
		c.IgnoreByName("Level")
	}))

	assert.NotEmpty(t, logs.FilterMessage("routine compiled").All())
	assert.Equal(t, 1, logs.FilterMessage("build session finished").Len())
	assert.NotEmpty(t, engineLogs.FilterMessage("program compiled").All())

	_, err := mapper.Map[Reading, Measurement](r, Reading{})
	require.Error(t, err)
	assert.NotEmpty(t, engineLogs.FilterMessage("routine panicked").All())

	mapper.SetLogger(nil)
	assert.False(t, mapper.Logger().Core().Enabled(zapcore.DebugLevel), "nil restores the no-op logger")
}
