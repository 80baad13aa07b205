package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ASSISTANT_API_URL", "https://api.example.test/v1/chat")
	t.Setenv("ASSISTANT_API_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "gpt-4o-mini", cfg.Assistant.Model)
	assert.Equal(t, 1024, cfg.Assistant.MaxTokens)
	assert.True(t, cfg.Observability.MetricsEnabled)
}

func TestLoad_MissingAPIURL(t *testing.T) {
	t.Setenv("ASSISTANT_API_URL", "")
	_, err := Load()
	assert.ErrorContains(t, err, "ASSISTANT_API_URL")
}

func TestLoad_DevProxySkipsKeyCheck(t *testing.T) {
	t.Setenv("ASSISTANT_API_URL", "http://localhost:3000/api/llm")
	t.Setenv("ASSISTANT_API_KEY", "")
	t.Setenv("ASSISTANT_DEV_PROXY", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Assistant.DevProxy)
}

func TestDatabaseDSN(t *testing.T) {
	db := DatabaseConfig{
		Host: "db", Port: 5432, User: "app", Password: "secret",
		Database: "expenses", SSLMode: "disable",
	}
	assert.Equal(t,
		"host=db port=5432 user=app password=secret dbname=expenses sslmode=disable",
		db.DSN())
}
