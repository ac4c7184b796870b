// Package config loads the server configuration from YAML, .env files and
// IDLERPG_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. IDLERPG_SERVER_PORT.
const EnvPrefix = "IDLERPG"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Game     GameConfig     `mapstructure:"game"`
	Security SecurityConfig `mapstructure:"security"`
}

type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	Debug    bool   `mapstructure:"debug"`
	AdminKey string `mapstructure:"admin_key"`
}

type DatabaseConfig struct {
	Mode         string        `mapstructure:"mode"` // memory | sqlite | mysql
	SQLitePath   string        `mapstructure:"sqlite_path"`
	MySQLDSN     string        `mapstructure:"mysql_dsn"`
	MySQLMaxOpen int           `mapstructure:"mysql_max_open"`
	MySQLMaxIdle int           `mapstructure:"mysql_max_idle"`
	MySQLMaxLife time.Duration `mapstructure:"mysql_max_life"`
}

type CacheConfig struct {
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	LocalGCInterval time.Duration `mapstructure:"local_gc_interval"`
	LocalPubSubBuf  int           `mapstructure:"local_pubsub_buf"`
}

type GameConfig struct {
	TickMs            int    `mapstructure:"tick_ms"`
	RespawnMs         int    `mapstructure:"respawn_ms"`
	SaveKey           string `mapstructure:"save_key"`
	SaveStore         string `mapstructure:"save_store"` // cache | db
	AutosaveIntervalS int    `mapstructure:"autosave_interval_s"`
	CatalogDir        string `mapstructure:"catalog_dir"` // empty = embedded catalog
	Seed              int64  `mapstructure:"seed"`        // 0 = time based
	GuaranteedDrops   bool   `mapstructure:"guaranteed_drops"`
	LogCapacity       int    `mapstructure:"log_capacity"`
}

// Tick returns the simulation step as a duration.
func (g GameConfig) Tick() time.Duration { return time.Duration(g.TickMs) * time.Millisecond }

type SecurityConfig struct {
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
	// AdminIPs restricts the admin routes to these client IPs. Empty allows all.
	AdminIPs []string `mapstructure:"admin_ips"`
	// AllowedOrigins lists the Origin headers accepted on /ws. Empty allows all.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Defaults registers every default on v. Every key has one so that
// AutomaticEnv can override it during Unmarshal.
func Defaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.debug", false)
	v.SetDefault("server.admin_key", "")
	v.SetDefault("database.mode", "sqlite")
	v.SetDefault("database.sqlite_path", "./data/idlerpg.db")
	v.SetDefault("database.mysql_dsn", "")
	v.SetDefault("database.mysql_max_open", 20)
	v.SetDefault("database.mysql_max_idle", 5)
	v.SetDefault("database.mysql_max_life", "1h")
	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.local_gc_interval", "30s")
	v.SetDefault("cache.local_pubsub_buf", 256)
	v.SetDefault("game.tick_ms", 50)
	v.SetDefault("game.respawn_ms", 3000)
	v.SetDefault("game.save_key", "idleRPG_save")
	v.SetDefault("game.save_store", "cache")
	v.SetDefault("game.autosave_interval_s", 60)
	v.SetDefault("game.catalog_dir", "")
	v.SetDefault("game.seed", 0)
	v.SetDefault("game.guaranteed_drops", false)
	v.SetDefault("game.log_capacity", 100)
	v.SetDefault("security.rate_limit_rps", 20)
	v.SetDefault("security.rate_limit_burst", 40)
	v.SetDefault("security.admin_ips", []string{})
	v.SetDefault("security.allowed_origins", []string{})
}

// Load reads config from the given YAML file path. A missing file is not an
// error: defaults and environment variables still apply. Variables from a
// .env file in the working directory are loaded first and never override
// the real environment.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	Defaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config: read %s: %w", path, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}
