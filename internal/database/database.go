package database

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"chats/internal/config"
)

// DSN returns the database/sql driver name and data source name for cfg.
func DSN(cfg config.DatabaseConfig) (driver, dsn string, err error) {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	switch cfg.Engine {
	case config.EngineMySQL:
		mc := mysql.NewConfig()
		mc.User = cfg.Username
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = addr
		mc.DBName = cfg.Name
		mc.ParseTime = true
		mc.MultiStatements = true
		mc.ClientFoundRows = true
		mc.Loc = time.UTC
		mc.Params = map[string]string{"charset": "utf8mb4"}
		return "mysql", mc.FormatDSN(), nil
	case config.EnginePostgres:
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(cfg.Username, cfg.Password),
			Host:     addr,
			Path:     "/" + cfg.Name,
			RawQuery: "sslmode=disable",
		}
		return "postgres", u.String(), nil
	default:
		return "", "", fmt.Errorf("engine %q has no SQL driver", cfg.Engine)
	}
}

// Open connects and pings, retrying while the database container is still starting.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	driver, dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	for attempt := 1; ; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = db.PingContext(pingCtx)
		cancel()
		if err == nil {
			log.Info().Str("engine", cfg.Engine).Str("host", cfg.Host).Int("attempt", attempt).Msg("database connected")
			return db, nil
		}
		if attempt >= cfg.ConnectRetries {
			break
		}
		log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", cfg.ConnectInterval).Msg("database not reachable yet")
		select {
		case <-ctx.Done():
			_ = db.Close()
			return nil, ctx.Err()
		case <-time.After(cfg.ConnectInterval):
		}
	}
	_ = db.Close()
	return nil, fmt.Errorf("ping %s after %d attempts: %w", driver, cfg.ConnectRetries, err)
}
