package persistence

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRunMigrations_NilPool(t *testing.T) {
	require.NoError(t, RunMigrations(context.Background(), nil, zap.NewNop()))
}

func TestEmbeddedMigrations(t *testing.T) {
	content, err := fs.ReadFile(migrationFiles, migrationsDir+"/001_init.sql")
	require.NoError(t, err)

	sql := string(content)
	require.True(t, strings.Contains(sql, "CREATE TABLE IF NOT EXISTS users"))
	require.True(t, strings.Contains(sql, "email         TEXT NOT NULL UNIQUE"))
	require.True(t, strings.Contains(sql, "documents_collection_email_uniq"))
}

func TestPostgres_NilSafe(t *testing.T) {
	var p *Postgres
	require.Nil(t, p.PoolHandle())
	require.Error(t, p.Ping(context.Background()))
	p.Close()
}

func TestMongo_NilSafe(t *testing.T) {
	var m *Mongo
	require.Error(t, m.Ping(context.Background()))
	m.Close(context.Background())
}
