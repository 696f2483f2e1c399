package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const minimalYAML = `
telegram:
  token: "test-token"
  admin_id: 42
cdek:
  client_id: "cid"
  client_secret: "secret"
`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "test-token", cfg.Core.Telegram.Token)
	assert.Equal(t, int64(42), cfg.Core.Telegram.AdminID)

	assert.Equal(t, "https://api.cdek.ru/v2", cfg.CDEK.BaseURL)
	assert.Equal(t, 1000, cfg.CDEK.PageSize)
	assert.Equal(t, 10*time.Second, cfg.CDEK.Timeout())

	assert.Equal(t, 3, cfg.Shop.ReviewsPerPage)
	assert.Equal(t, 5, cfg.Shop.PickupPointsPerPage)
	assert.Equal(t, "censor_words.json", cfg.Shop.CensorFile)
	assert.Contains(t, cfg.Shop.ContactSkipValues, "пропустить")
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Setenv("SHOP_STORE_URL", "https://env.example.com/")
	t.Setenv("CDEK_PAGE_SIZE", "200")

	cfg, err := Load(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.com/", cfg.Shop.StoreURL)
	assert.Equal(t, 200, cfg.CDEK.PageSize)
}

func TestLoadRequiresCDEKCredentials(t *testing.T) {
	_, err := Load(writeConfig(t, `
telegram:
  token: "test-token"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cdek")
}

func TestLoadRequiresTelegramToken(t *testing.T) {
	_, err := Load(writeConfig(t, `
cdek:
  client_id: "cid"
  client_secret: "secret"
`))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
