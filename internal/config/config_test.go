package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var requiredEnv = []string{"BOT_TOKEN", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME"}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range requiredEnv {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadNamesEveryMissingValue(t *testing.T) {
	clearEnv(t)
	_, err := Load("")
	require.Error(t, err)
	for _, k := range requiredEnv {
		assert.Contains(t, err.Error(), k)
	}
}

func TestLoadFromYAMLAndEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
telegram:
  token: from-yaml
  admin_id: 7
database:
  host: db
  port: "5432"
  user: shop
  password: secret
  name: shop
news:
  timeout: 3s
content:
  help: "<b>About</b>"
seed:
  catalog_file: catalog.yaml
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("DB_HOST", "db-from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-yaml", cfg.Telegram.Token)
	assert.Equal(t, int64(7), cfg.Telegram.AdminID)
	assert.Equal(t, "db-from-env", cfg.Database.Host)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 3*time.Second, cfg.News.Timeout)
	assert.Equal(t, "<b>About</b>", cfg.Content.Help)
	assert.Equal(t, "catalog.yaml", cfg.Seed.CatalogFile)
	assert.Equal(t, "longpoll", cfg.CoreConfig().Telegram.RunMode)
}
