package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLogLevelMapping(t *testing.T) {
	tests := []struct {
		in   LogLevel
		want zapcore.Level
	}{
		{DebugLevel, zapcore.DebugLevel},
		{InfoLevel, zapcore.InfoLevel},
		{WarnLevel, zapcore.WarnLevel},
		{ErrorLevel, zapcore.ErrorLevel},
		{"WARN", zapcore.WarnLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.zapLevel())
		})
	}
}

func TestNewWritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "cast.log")

	l, err := New(Config{Level: InfoLevel, OutputPath: path, MaxSize: 1})
	require.NoError(t, err)

	l.Info("serving audio", String("path", "/music/a.mp3"))
	l.Debug("dropped below level")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"serving audio"`)
	assert.Contains(t, string(data), `"path":"/music/a.mp3"`)
	assert.NotContains(t, string(data), "dropped below level")
}

func TestLBeforeInitIsUsable(t *testing.T) {
	l := L()
	require.NotNil(t, l)
	l.Info("no-op")
}
