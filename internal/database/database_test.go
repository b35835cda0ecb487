package database

import (
	"path"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_Embedded(t *testing.T) {
	names, err := Migrations()
	require.NoError(t, err)
	require.Equal(t, []string{"00001_statements.sql", "00002_budgets_friends.sql"}, names)

	for _, name := range names {
		data, err := embedMigrations.ReadFile(path.Join(migrationsDir, name))
		require.NoError(t, err)

		sql := string(data)
		assert.True(t, strings.HasPrefix(sql, "-- +goose Up"), name)
		assert.Contains(t, sql, "-- +goose Down", name)
	}
}

func TestMigrations_CollectionsPresent(t *testing.T) {
	var all strings.Builder
	names, err := Migrations()
	require.NoError(t, err)
	for _, name := range names {
		data, err := embedMigrations.ReadFile(path.Join(migrationsDir, name))
		require.NoError(t, err)
		all.Write(data)
	}

	for _, table := range []string{"pdf_files", "transactions", "budgets", "friends"} {
		assert.Contains(t, all.String(), "CREATE TABLE IF NOT EXISTS "+table+" (", table)
	}
}
