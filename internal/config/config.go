package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const devJWTSecret = "dev_secret_change_me"

// Configはアプリ全体の設定
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Order    OrderConfig    `mapstructure:"order"`
	IDGen    IDGenConfig    `mapstructure:"idgen"`
}

type AppConfig struct {
	Port     string `mapstructure:"port"`      // サーバーポート（8080）
	Env      string `mapstructure:"env"`       // dev/prod
	LogLevel string `mapstructure:"log_level"` // debug/info/warn/error
	LogFile  string `mapstructure:"log_file"`  // 空ならstdoutのみ
}

type PostgresConfig struct {
	DSN      string `mapstructure:"dsn"` // あれば最優先
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DB       string `mapstructure:"db"`
	SSLMode  string `mapstructure:"sslmode"`
}

type JWTConfig struct {
	Secret    string        `mapstructure:"secret"`
	AccessTTL time.Duration `mapstructure:"access_ttl"`
}

// Addrが空ならイベントは捨てる
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Channel  string `mapstructure:"channel"`
}

type OrderConfig struct {
	//0なら未払い注文の自動取消はしない
	UnpaidTimeout time.Duration `mapstructure:"unpaid_timeout"`
	ScanInterval  time.Duration `mapstructure:"scan_interval"`
	ScanBatch     int           `mapstructure:"scan_batch"`
}

type IDGenConfig struct {
	Node int64 `mapstructure:"node"` // 0-1023
}

// Loadは .env → 設定ファイル(CONFIG_FILE) → 環境変数 の順で読む
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env failed: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	if err := bindEnvs(v); err != nil {
		return Config{}, err
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config failed: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config failed: %w", err)
	}

	//devだけはシークレット未設定でも起動させる
	if cfg.JWT.Secret == "" && cfg.App.Env == "dev" {
		cfg.JWT.Secret = devJWTSecret
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_file", "")

	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "postgres")
	v.SetDefault("postgres.db", "app")
	v.SetDefault("postgres.sslmode", "disable")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.access_ttl", 15*time.Minute)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.channel", "order_events")

	v.SetDefault("order.unpaid_timeout", time.Duration(0))
	v.SetDefault("order.scan_interval", time.Minute)
	v.SetDefault("order.scan_batch", 100)

	v.SetDefault("idgen.node", 1)
}

// 既存の環境変数名（PORT, DATABASE_URL, POSTGRES_* など）もそのまま使える
func bindEnvs(v *viper.Viper) error {
	binds := map[string][]string{
		"app.port":             {"APP_PORT", "PORT"},
		"app.env":              {"APP_ENV", "GO_ENV"},
		"app.log_level":        {"LOG_LEVEL"},
		"app.log_file":         {"LOG_FILE"},
		"postgres.dsn":         {"DATABASE_URL"},
		"postgres.host":        {"POSTGRES_HOST"},
		"postgres.port":        {"POSTGRES_PORT"},
		"postgres.user":        {"POSTGRES_USER"},
		"postgres.password":    {"POSTGRES_PASSWORD"},
		"postgres.db":          {"POSTGRES_DB"},
		"postgres.sslmode":     {"POSTGRES_SSLMODE"},
		"jwt.secret":           {"JWT_SECRET"},
		"jwt.access_ttl":       {"JWT_ACCESS_TTL"},
		"redis.addr":           {"REDIS_ADDR"},
		"redis.password":       {"REDIS_PASSWORD"},
		"redis.db":             {"REDIS_DB"},
		"redis.channel":        {"REDIS_CHANNEL"},
		"order.unpaid_timeout": {"ORDER_UNPAID_TIMEOUT"},
		"order.scan_interval":  {"ORDER_SCAN_INTERVAL"},
		"order.scan_batch":     {"ORDER_SCAN_BATCH"},
		"idgen.node":           {"IDGEN_NODE"},
	}
	for key, envs := range binds {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("bind env %s: %w", key, err)
		}
	}
	return nil
}

// Validateは必須・範囲チェック
func (c Config) Validate() error {
	if strings.TrimSpace(c.App.Port) == "" {
		return fmt.Errorf("app.port is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required")
	}
	if c.JWT.AccessTTL <= 0 {
		return fmt.Errorf("jwt.access_ttl must be positive")
	}
	if c.Postgres.DSN == "" && c.Postgres.Host == "" {
		return fmt.Errorf("postgres.dsn or postgres.host is required")
	}
	if c.Order.UnpaidTimeout < 0 {
		return fmt.Errorf("order.unpaid_timeout must not be negative")
	}
	if c.Order.UnpaidTimeout > 0 {
		if c.Order.ScanInterval <= 0 {
			return fmt.Errorf("order.scan_interval must be positive")
		}
		if c.Order.ScanBatch <= 0 {
			return fmt.Errorf("order.scan_batch must be positive")
		}
	}
	if c.IDGen.Node < 0 || c.IDGen.Node > 1023 {
		return fmt.Errorf("idgen.node must be between 0 and 1023")
	}
	return nil
}

// Addrは ":8080" 形式
func (c Config) Addr() string {
	if strings.HasPrefix(c.App.Port, ":") {
		return c.App.Port
	}
	return ":" + c.App.Port
}

func (p PostgresConfig) DSNString() string {
	if p.DSN != "" {
		return p.DSN
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DB, p.SSLMode,
	)
}
