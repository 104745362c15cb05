package database

import (
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chats/internal/config"
)

func dbConfig(engine string) config.DatabaseConfig {
	return config.DatabaseConfig{
		Engine:   engine,
		Host:     "mysql",
		Port:     3306,
		Username: "chat",
		Password: "p@ss:word",
		Name:     "chats",
	}
}

func TestDSNMySQL(t *testing.T) {
	driver, dsn, err := DSN(dbConfig(config.EngineMySQL))
	require.NoError(t, err)
	assert.Equal(t, "mysql", driver)

	parsed, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "chat", parsed.User)
	assert.Equal(t, "p@ss:word", parsed.Passwd)
	assert.Equal(t, "mysql:3306", parsed.Addr)
	assert.Equal(t, "chats", parsed.DBName)
	assert.True(t, parsed.ParseTime)
	assert.True(t, parsed.MultiStatements)
}

func TestDSNPostgres(t *testing.T) {
	cfg := dbConfig(config.EnginePostgres)
	cfg.Port = 5432
	driver, dsn, err := DSN(cfg)
	require.NoError(t, err)
	assert.Equal(t, "postgres", driver)
	assert.True(t, strings.HasPrefix(dsn, "postgres://chat:"))
	assert.Contains(t, dsn, "@mysql:5432/chats?sslmode=disable")
}

func TestDSNMemoryHasNoDriver(t *testing.T) {
	_, _, err := DSN(dbConfig(config.EngineMemory))
	assert.Error(t, err)
}

func versions(t *testing.T, engine string) []uint {
	t.Helper()
	src, err := MigrationSource(engine)
	require.NoError(t, err)
	defer src.Close()

	v, err := src.First()
	require.NoError(t, err)
	out := []uint{v}
	for {
		next, err := src.Next(v)
		if errors.Is(err, fs.ErrNotExist) {
			return out
		}
		require.NoError(t, err)
		out = append(out, next)
		v = next
	}
}

func TestMigrationSourcesAreOrderedAndMatch(t *testing.T) {
	mysqlVersions := versions(t, config.EngineMySQL)
	pgVersions := versions(t, config.EnginePostgres)

	assert.Equal(t, []uint{1, 2, 3, 4, 5}, mysqlVersions)
	assert.Equal(t, mysqlVersions, pgVersions)
}

func TestEveryMigrationHasDown(t *testing.T) {
	for _, engine := range []string{config.EngineMySQL, config.EnginePostgres} {
		src, err := MigrationSource(engine)
		require.NoError(t, err)
		for _, v := range versions(t, engine) {
			r, _, err := src.ReadDown(v)
			require.NoError(t, err, "%s down %d", engine, v)
			_ = r.Close()
		}
		_ = src.Close()
	}
}

func TestMigrationSourceUnknownEngine(t *testing.T) {
	_, err := MigrationSource(config.EngineMemory)
	assert.Error(t, err)
}
