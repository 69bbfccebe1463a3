package config

import (
	"fmt"
	"os"
	"time"

	"github.com/alejandrodnm/surebet/internal/domain"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del servicio.
type Config struct {
	Scanner ScannerConfig `yaml:"scanner"`
	Sources SourcesConfig `yaml:"sources"`
	API     APIConfig     `yaml:"api"`
	Cache   CacheConfig   `yaml:"cache"`
	Storage StorageConfig `yaml:"storage"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
}

// ScannerConfig controla qué se busca y cómo se reparte el stake.
type ScannerConfig struct {
	IntervalSeconds int      `yaml:"interval_seconds"`
	Sports          []string `yaml:"sports"`
	Market          string   `yaml:"market"` // h2h | h2h_lay | spreads | totals
	TotalStake      float64  `yaml:"total_stake"`
	KellyFraction   float64  `yaml:"kelly_fraction"`
	MinProfitPct    float64  `yaml:"min_profit_pct"`
	Bookmakers      []string `yaml:"bookmakers"` // whitelist; vacía = todas
	MinHoursToStart float64  `yaml:"min_hours_to_start"`
	MaxHoursToStart float64  `yaml:"max_hours_to_start"`
}

// SourcesConfig controla las fuentes de cuotas. Los flags show_* y mock_mode
// solo siembran los settings la primera vez; después mandan los del store.
type SourcesConfig struct {
	ShowMock            bool     `yaml:"show_mock"`
	ShowLive            bool     `yaml:"show_live"`
	MockMode            bool     `yaml:"mock_mode"`
	Regions             []string `yaml:"regions"`
	FetchTimeoutSeconds int      `yaml:"fetch_timeout_seconds"`
}

// APIConfig contiene el acceso a The Odds API.
type APIConfig struct {
	OddsBase              string `yaml:"odds_base"`
	OddsAPIKey            string `yaml:"-"` // solo desde ODDS_API_KEY
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
}

// CacheConfig controla la TTL cache de la fuente live.
type CacheConfig struct {
	TTLSeconds int `yaml:"ttl_seconds"` // valor inicial de cache_timeout_seconds
}

// StorageConfig controla dónde se persisten los datos.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// ServerConfig controla la API HTTP.
type ServerConfig struct {
	Addr                  string   `yaml:"addr"`
	AllowedOrigins        []string `yaml:"allowed_origins"`
	RequestTimeoutSeconds int      `yaml:"request_timeout_seconds"`
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Las variables de entorno sobreescriben los valores del YAML.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}
	return Parse(data)
}

// Parse interpreta un YAML ya leído y aplica overrides y defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Config{Sources: SourcesConfig{ShowMock: true, ShowLive: true}}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Parse: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := domain.ValidateMarketKey(cfg.Scanner.Market); err != nil {
		return nil, fmt.Errorf("config.Parse: scanner.market: %w", err)
	}
	if cfg.Scanner.KellyFraction > 1 {
		return nil, fmt.Errorf("config.Parse: scanner.kelly_fraction: %w", domain.ErrInvalidFraction)
	}
	return &cfg, nil
}

// ScanInterval devuelve el intervalo de escaneo como time.Duration.
func (c *Config) ScanInterval() time.Duration {
	return time.Duration(c.Scanner.IntervalSeconds) * time.Second
}

// FetchTimeout es el tope de tiempo de cada fuente en un merge.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Sources.FetchTimeoutSeconds) * time.Second
}

// RequestTimeout es el timeout HTTP de cada request a The Odds API.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.API.RequestTimeoutSeconds) * time.Second
}

// ServerTimeout es el timeout por request de la API HTTP propia.
func (c *Config) ServerTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSeconds) * time.Second
}

// InitialSettings son los settings con los que se siembra un store vacío.
func (c *Config) InitialSettings() domain.Settings {
	return domain.Settings{
		ShowMockData:        c.Sources.ShowMock,
		ShowLiveData:        c.Sources.ShowLive,
		MockMode:            c.Sources.MockMode,
		CacheTimeoutSeconds: c.Cache.TTLSeconds,
	}
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ODDS_API_KEY"); v != "" {
		cfg.API.OddsAPIKey = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("SUREBET_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("SUREBET_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Scanner.IntervalSeconds <= 0 {
		cfg.Scanner.IntervalSeconds = 60
	}
	if len(cfg.Scanner.Sports) == 0 {
		cfg.Scanner.Sports = []string{"basketball_nba", "soccer_epl", "americanfootball_nfl"}
	}
	if cfg.Scanner.Market == "" {
		cfg.Scanner.Market = domain.MarketH2H
	}
	if cfg.Scanner.TotalStake <= 0 {
		cfg.Scanner.TotalStake = domain.DefaultTotalStake
	}
	if cfg.Scanner.KellyFraction <= 0 {
		cfg.Scanner.KellyFraction = domain.DefaultKellyFraction
	}
	if len(cfg.Sources.Regions) == 0 {
		cfg.Sources.Regions = []string{"us", "uk", "eu"}
	}
	if cfg.Sources.FetchTimeoutSeconds <= 0 {
		cfg.Sources.FetchTimeoutSeconds = 15
	}
	if cfg.API.OddsBase == "" {
		cfg.API.OddsBase = "https://api.the-odds-api.com"
	}
	if cfg.API.RequestTimeoutSeconds <= 0 {
		cfg.API.RequestTimeoutSeconds = 10
	}
	if cfg.Cache.TTLSeconds <= 0 {
		cfg.Cache.TTLSeconds = 300
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "surebet.db"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"http://localhost:3000"}
	}
	if cfg.Server.RequestTimeoutSeconds <= 0 {
		cfg.Server.RequestTimeoutSeconds = 30
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
