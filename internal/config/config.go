package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"prediction-dashboard/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Logging   logging.Config  `mapstructure:"logging"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Server    ServerConfig    `mapstructure:"server"`
	PriceFeed PriceFeedConfig `mapstructure:"pricefeed"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Status    StatusConfig    `mapstructure:"status"`
	Alerting  AlertingConfig  `mapstructure:"alerting"`
	Export    ExportConfig    `mapstructure:"export"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// DatabaseConfig encapsulates PostgreSQL connectivity.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsPath  string        `mapstructure:"migrations_path"`
}

// SchedulerConfig governs the refresh cadence.
type SchedulerConfig struct {
	Interval       time.Duration `mapstructure:"interval"`
	StartupDelay   time.Duration `mapstructure:"startup_delay"`
	RunImmediately bool          `mapstructure:"run_immediately"`
}

// ServerConfig covers the HTTP query surface.
type ServerConfig struct {
	ListenAddr      string        `mapstructure:"listen_addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// PriceFeedConfig captures spot price API connectivity.
type PriceFeedConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	Pair           string        `mapstructure:"pair"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// DashboardConfig bounds the snapshot contents.
type DashboardConfig struct {
	WindowDays     int `mapstructure:"window_days"`
	RecentLimit    int `mapstructure:"recent_limit"`
	PendingLimit   int `mapstructure:"pending_limit"`
	ValidatedLimit int `mapstructure:"validated_limit"`
}

// StatusConfig holds the shared delayed/offline cutoffs. One source of
// truth for every status derivation.
type StatusConfig struct {
	DelayedAfter time.Duration `mapstructure:"delayed_after"`
	OfflineAfter time.Duration `mapstructure:"offline_after"`
}

// AlertingConfig defines status alert routing.
type AlertingConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Cooldown time.Duration  `mapstructure:"cooldown"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig 描述 Telegram 告警参数。
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	APIBase  string `mapstructure:"api_base"`
}

// ExportConfig sets CLI export behaviour.
type ExportConfig struct {
	MaxDataPoints int `mapstructure:"max_data_points"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PREDBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "predboard")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("scheduler.interval", "30s")
	v.SetDefault("scheduler.startup_delay", "0s")
	v.SetDefault("scheduler.run_immediately", true)

	v.SetDefault("server.listen_addr", ":8080")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("pricefeed.base_url", "https://api.coinbase.com")
	v.SetDefault("pricefeed.pair", "BTC-USD")
	v.SetDefault("pricefeed.request_timeout", "10s")
	v.SetDefault("pricefeed.user_agent", "predboard/1.0")

	v.SetDefault("dashboard.window_days", 7)
	v.SetDefault("dashboard.recent_limit", 30)
	v.SetDefault("dashboard.pending_limit", 100)
	v.SetDefault("dashboard.validated_limit", 500)

	v.SetDefault("status.delayed_after", "2m")
	v.SetDefault("status.offline_after", "10m")

	v.SetDefault("alerting.enabled", false)
	v.SetDefault("alerting.cooldown", "30m")
	v.SetDefault("alerting.telegram.enabled", false)
	v.SetDefault("alerting.telegram.api_base", "https://api.telegram.org")

	v.SetDefault("export.max_data_points", 100000)

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.migrations_path", "migrations")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler.interval must be greater than zero")
	}
	if c.Dashboard.WindowDays <= 0 {
		return fmt.Errorf("dashboard.window_days must be greater than zero")
	}
	if c.Dashboard.RecentLimit <= 0 {
		return fmt.Errorf("dashboard.recent_limit must be greater than zero")
	}
	if c.Dashboard.PendingLimit <= 0 {
		return fmt.Errorf("dashboard.pending_limit must be greater than zero")
	}
	if c.Dashboard.ValidatedLimit <= 0 {
		return fmt.Errorf("dashboard.validated_limit must be greater than zero")
	}
	if c.Status.DelayedAfter <= 0 || c.Status.OfflineAfter <= c.Status.DelayedAfter {
		return fmt.Errorf("status.offline_after must exceed status.delayed_after, both positive")
	}
	if c.Export.MaxDataPoints <= 0 {
		return fmt.Errorf("export.max_data_points must be greater than zero")
	}
	if c.Alerting.Telegram.Enabled {
		if c.Alerting.Telegram.BotToken == "" {
			return fmt.Errorf("alerting.telegram.bot_token 必须配置")
		}
		if c.Alerting.Telegram.ChatID == "" {
			return fmt.Errorf("alerting.telegram.chat_id 必须配置")
		}
	}
	return nil
}

// ResolveMaxPoints returns either the CLI override or config default.
func (c *Config) ResolveMaxPoints(override int) int {
	if override > 0 {
		return override
	}
	return c.Export.MaxDataPoints
}
