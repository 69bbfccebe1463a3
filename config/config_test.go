package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alejandrodnm/surebet/config"
	"github.com/alejandrodnm/surebet/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ShippedFile(t *testing.T) {
	cfg, err := config.Load("config.yaml")
	require.NoError(t, err)

	assert.Equal(t, 60*time.Second, cfg.ScanInterval())
	assert.Equal(t, domain.MarketH2H, cfg.Scanner.Market)
	assert.Contains(t, cfg.Scanner.Sports, "soccer_epl")
	assert.Equal(t, 15*time.Second, cfg.FetchTimeout())
	assert.Equal(t, []string{"us", "uk", "eu"}, cfg.Sources.Regions)
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := config.Parse([]byte("{}"))
	require.NoError(t, err)

	assert.Equal(t, 60, cfg.Scanner.IntervalSeconds)
	assert.Equal(t, domain.DefaultTotalStake, cfg.Scanner.TotalStake)
	assert.Equal(t, domain.DefaultKellyFraction, cfg.Scanner.KellyFraction)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout())
	assert.Equal(t, 30*time.Second, cfg.ServerTimeout())
	assert.Equal(t, "https://api.the-odds-api.com", cfg.API.OddsBase)
	assert.Equal(t, "text", cfg.Log.Format)

	// un store vacío se siembra igual que DefaultSettings
	assert.Equal(t, domain.DefaultSettings(), cfg.InitialSettings())
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("ODDS_API_KEY", "secret")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("SUREBET_DSN", ":memory:")
	t.Setenv("SUREBET_ADDR", ":9999")

	cfg, err := config.Parse([]byte("storage:\n  dsn: other.db\n"))
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.API.OddsAPIKey)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, ":memory:", cfg.Storage.DSN)
	assert.Equal(t, ":9999", cfg.Server.Addr)
}

func TestParse_APIKeyNotFromYAML(t *testing.T) {
	t.Setenv("ODDS_API_KEY", "")
	cfg, err := config.Parse([]byte("api:\n  odds_api_key: leaked\n"))
	require.NoError(t, err)
	assert.Empty(t, cfg.API.OddsAPIKey)
}

func TestParse_SourcesCanBeDisabled(t *testing.T) {
	cfg, err := config.Parse([]byte("sources:\n  show_mock: false\n  mock_mode: true\n"))
	require.NoError(t, err)

	st := cfg.InitialSettings()
	assert.False(t, st.ShowMockData)
	assert.True(t, st.ShowLiveData)
	assert.True(t, st.MockMode)
}

func TestParse_InvalidMarket(t *testing.T) {
	_, err := config.Parse([]byte("scanner:\n  market: player_points\n"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedMarket)
}

func TestParse_InvalidFraction(t *testing.T) {
	_, err := config.Parse([]byte("scanner:\n  kelly_fraction: 1.5\n"))
	assert.ErrorIs(t, err, domain.ErrInvalidFraction)
}

func TestParse_BadYAML(t *testing.T) {
	_, err := config.Parse([]byte("scanner: [unclosed"))
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
