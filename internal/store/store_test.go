package store

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dragsort/internal/engine"
)

var _ engine.AttemptRecorder = (*Store)(nil)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")
}

func TestOpen_OpensExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.WriteSession(t.Context(), testSession("s1")))
	s1.Close()

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	rec, err := s2.ReadSession(t.Context(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", rec.ID)
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "iteration %d", i)
		s.Close()
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "dir", "test.db"))
	assert.Error(t, err)
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)

	for _, p := range pragmas {
		assert.NoError(t, s.verifyPragma(p.name, p.want))
	}
	assert.NoError(t, s.verifyPragma("user_version", fmt.Sprint(schemaVersion)))
}

func TestOpen_CreatesTables(t *testing.T) {
	s := createTestStore(t)

	for _, table := range []string{"sections", "categories", "tasks", "sessions", "attempts"} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table,
		).Scan(&name)
		assert.NoError(t, err, "table %s", table)
	}
}

func TestMigrations_AddUniqueIndex(t *testing.T) {
	s := createTestStore(t)

	var name string
	err := s.DB().QueryRow(
		"SELECT name FROM sqlite_master WHERE type = 'index' AND name = 'idx_attempts_session_seq_unique'",
	).Scan(&name)
	require.NoError(t, err)
}

func TestMigrations_UpgradeOldDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.DB().Exec("DROP INDEX idx_attempts_session_seq_unique")
	require.NoError(t, err)
	_, err = s.DB().Exec("PRAGMA user_version = 0")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	var count int
	require.NoError(t, s.DB().QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name = 'idx_attempts_session_seq_unique'",
	).Scan(&count))
	assert.Equal(t, 1, count)
	assert.NoError(t, s.verifyPragma("user_version", fmt.Sprint(schemaVersion)))
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{}
	assert.NoError(t, s.Close())
}
