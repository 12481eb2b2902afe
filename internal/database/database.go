// Package database はストアへの接続とスキーマの初期化を扱います。
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"todo-api/internal/config"
)

// GetDSN は設定からドライバ用の接続文字列 (DSN) を構築します。
func GetDSN(cfg config.DatabaseConfig) string {
	if cfg.Driver == config.DriverSQLite {
		// _pragma は接続ごとに適用される
		return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", cfg.SQLitePath)
	}

	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Pass
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, cfg.Port)
	mc.DBName = cfg.Name
	mc.ParseTime = true
	mc.Loc = time.UTC
	// UPDATE の RowsAffected を「一致した行数」にする
	mc.ClientFoundRows = true
	return mc.FormatDSN()
}

// InitDB はデータベース接続を初期化し、疎通を確認します。
// 返された *sql.DB はプロセス全体で共有し、終了時に Close してください。
func InitDB(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open(cfg.Driver, GetDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.Driver == config.DriverSQLite {
		// SQLite は書き込みが1本なので接続も1本に絞る
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing db", "error", closeErr)
		}
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	slog.Info("connected to database", "driver", cfg.Driver)
	return db, nil
}
