package db

import (
	"testing"

	"shuttlecast/config"

	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	cfg := &config.Config{DBUser: "cast", DBPassword: "secret", DBHost: "10.0.0.2", DBPort: "3307", DBName: "library"}
	assert.Equal(t, "cast:secret@tcp(10.0.0.2:3307)/library?charset=utf8mb4&parseTime=True&loc=Local", DSN(cfg))
}
