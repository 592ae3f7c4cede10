package coordinator

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewLogrusHook_LevelsRespectMinLevel(t *testing.T) {
	hook := NewLogrusHook(New(DefaultConfig()), logrus.WarnLevel)

	levels := hook.Levels()
	assert.Contains(t, levels, logrus.ErrorLevel)
	assert.Contains(t, levels, logrus.WarnLevel)
	assert.NotContains(t, levels, logrus.InfoLevel)
	assert.NotContains(t, levels, logrus.DebugLevel)
}

func TestLogrusHook_FireIsNoOpWhenDisconnected(t *testing.T) {
	hook := NewLogrusHook(New(DefaultConfig()), logrus.InfoLevel)
	entry := &logrus.Entry{Message: "pipeline step started", Data: logrus.Fields{"run_id": "amsync-tei-1"}}

	assert.NoError(t, hook.Fire(entry))
}

func TestLogrusLevelToString(t *testing.T) {
	assert.Equal(t, "debug", logrusLevelToString(logrus.DebugLevel))
	assert.Equal(t, "info", logrusLevelToString(logrus.InfoLevel))
	assert.Equal(t, "warn", logrusLevelToString(logrus.WarnLevel))
	assert.Equal(t, "error", logrusLevelToString(logrus.ErrorLevel))
	assert.Equal(t, "fatal", logrusLevelToString(logrus.FatalLevel))
}
