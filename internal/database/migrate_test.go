package database

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsArePaired(t *testing.T) {
	ups, err := fs.Glob(Migrations(), "migrations/*.up.sql")
	require.NoError(t, err)
	require.NotEmpty(t, ups)

	for _, up := range ups {
		down := strings.TrimSuffix(up, ".up.sql") + ".down.sql"
		_, err := fs.Stat(Migrations(), down)
		assert.NoError(t, err, "missing %s", down)
	}
}

func TestInitialMigrationCreatesGovernanceTables(t *testing.T) {
	b, err := fs.ReadFile(Migrations(), "migrations/000001_init.up.sql")
	require.NoError(t, err)
	for _, table := range []string{
		"gov_documents", "gov_document_versions", "gov_extension_records", "gov_level_records", "gov_audit_trail",
	} {
		assert.Contains(t, string(b), "CREATE TABLE IF NOT EXISTS "+table+" ")
	}
}
