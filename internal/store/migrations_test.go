package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailedMigrationRollsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.db")
	latest := migrations[len(migrations)-1].version

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	saved := migrations
	t.Cleanup(func() { migrations = saved })
	migrations = append(append([]migration{}, saved...), migration{
		version: latest + 1,
		sql: `
CREATE TABLE partial (id TEXT PRIMARY KEY);
INSERT INTO schema_version (version) VALUES (999);
INSERT INTO missing_table (id) VALUES ('x');
`,
	})

	_, err = NewSQLiteStore(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "applying migration")

	migrations = saved
	s, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	var version int
	require.NoError(t, s.db.Get(&version, "SELECT COALESCE(MAX(version), 0) FROM schema_version"))
	assert.Equal(t, latest, version)

	var tables int
	require.NoError(t, s.db.Get(&tables, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'partial'"))
	assert.Zero(t, tables)
}
