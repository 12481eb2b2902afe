// Package config は環境変数 (と任意の .env ファイル) から設定を読み込みます。
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// DB_DRIVER に指定できるドライバ名です。sql.Open のドライバ名と同じです。
const (
	DriverMySQL  = "mysql"  // 本番用
	DriverSQLite = "sqlite" // ローカル開発・テスト用
)

// Config はアプリケーション全体の設定です。
type Config struct {
	HTTP     HTTPConfig
	Database DatabaseConfig
	Log      LogConfig
	CORS     CORSConfig
}

// HTTPConfig は HTTP サーバーと gin の設定です。
type HTTPConfig struct {
	Port            string        `env:"HTTP_PORT" env-default:"8080"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"10s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`
	GinMode         string        `env:"GIN_MODE" env-default:"release"`
}

// DatabaseConfig の DB_* の名前は既存の docker-compose / .env に合わせています。
type DatabaseConfig struct {
	Driver          string        `env:"DB_DRIVER" env-default:"mysql"`
	User            string        `env:"DB_USER"`
	Pass            string        `env:"DB_PASS"`
	Host            string        `env:"DB_HOST" env-default:"127.0.0.1"`
	Port            string        `env:"DB_PORT" env-default:"3306"`
	Name            string        `env:"DB_NAME"`
	SQLitePath      string        `env:"SQLITE_PATH" env-default:"todo.db"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" env-default:"25"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"5m"`
}

// LogConfig はログの出力レベルと形式の設定です。
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" env-default:"info"`
	Format string `env:"LOG_FORMAT" env-default:"text"`
}

// CORSConfig は CORS で許可するオリジンの設定です。
type CORSConfig struct {
	AllowOrigins []string `env:"CORS_ALLOW_ORIGINS" env-separator:"," env-default:"http://localhost:3000"`
}

// Load は .env を読み込んだ後、環境変数から Config を構築します。
// .env が無いのはエラーではありません (本番ではコンテナの環境変数を使う)。
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil {
			slog.Debug("env file not loaded", "file", f, "error", err)
		}
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	switch c.Database.Driver {
	case DriverMySQL:
		if c.Database.Name == "" {
			return fmt.Errorf("DB_NAME is required when DB_DRIVER=%s", DriverMySQL)
		}
	case DriverSQLite:
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when DB_DRIVER=%s", DriverSQLite)
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want %s or %s)", c.Database.Driver, DriverMySQL, DriverSQLite)
	}
	return nil
}

// SlogLevel は LOG_LEVEL を slog.Level に変換します。不明な値は info 扱いです。
func (l LogConfig) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
