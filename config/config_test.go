package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CAST_HOST", "127.0.0.1")
	t.Setenv("CAST_PORT", "5000")
	t.Setenv("CAST_MIME_TYPES", "")

	cfg := Load()
	require.NotNil(t, cfg)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "127.0.0.1:5000", cfg.Cast.Addr())
	assert.Equal(t, "audio/mpeg", cfg.Cast.MimeTypes["mp3"])
	assert.Equal(t, "image/png", cfg.Cast.MimeTypes["png"])
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CAST_PORT", "5123")
	t.Setenv("CAST_READ_HEADER_TIMEOUT", "3s")
	t.Setenv("CAST_MIME_TYPES", "flac=audio/flac, .M4A = audio/mp4 ,broken,=x/y")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg := Load()

	assert.Equal(t, 5123, cfg.Cast.Port)
	assert.Equal(t, 3*time.Second, cfg.Cast.ReadHeaderTimeout)
	assert.Equal(t, "audio/flac", cfg.Cast.MimeTypes["flac"])
	assert.Equal(t, "audio/mp4", cfg.Cast.MimeTypes["m4a"])
	assert.Equal(t, "audio/mpeg", cfg.Cast.MimeTypes["mp3"])
	assert.NotContains(t, cfg.Cast.MimeTypes, "broken")
	assert.True(t, cfg.MinioUseSSL)
	assert.Equal(t, 0, cfg.RedisDB)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cast    CastConfig
		wantErr bool
	}{
		{"default port", CastConfig{Host: "127.0.0.1", Port: 5000}, false},
		{"ephemeral port", CastConfig{Host: "127.0.0.1", Port: 0}, false},
		{"negative port", CastConfig{Host: "127.0.0.1", Port: -1}, true},
		{"port too large", CastConfig{Host: "127.0.0.1", Port: 70000}, true},
		{"empty host", CastConfig{Port: 5000}, true},
		{"localhost", CastConfig{Host: "localhost", Port: 5000}, false},
		{"ipv6 loopback", CastConfig{Host: "::1", Port: 5000}, false},
		{"other loopback", CastConfig{Host: "127.0.0.2", Port: 5000}, false},
		{"all interfaces", CastConfig{Host: "0.0.0.0", Port: 5000}, true},
		{"lan address", CastConfig{Host: "192.168.1.20", Port: 5000}, true},
		{"hostname", CastConfig{Host: "media.example.com", Port: 5000}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Cast: tt.cast}
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCastAddr(t *testing.T) {
	assert.Equal(t, "127.0.0.1:0", CastConfig{Host: "127.0.0.1"}.Addr())
	assert.Equal(t, "[::1]:5000", CastConfig{Host: "::1", Port: 5000}.Addr())
	assert.Equal(t, "[::1]:5000", CastConfig{Host: "[::1]", Port: 5000}.Addr())
}
