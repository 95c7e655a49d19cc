package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dragsort/internal/store"
)

func runImportCmd(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewImportCommand(quietRootOptions(format))
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestImportSampleCatalogue(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "dragsort.db")

	output, err := runImportCmd(t, "text", catalogueDir, "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, output, "✓ Imported 3 section(s), 4 category(ies), 7 task(s) (6 playable) into "+dbPath)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	cat, err := st.ReadCatalogue(context.Background())
	require.NoError(t, err)
	assert.Len(t, cat.Sections, 3)
	assert.Len(t, cat.Tasks, 7)

	task, err := st.ReadTask(context.Background(), "math_compare", "cmp_sort_01")
	require.NoError(t, err)
	require.NotNil(t, task.Puzzle)
	assert.Len(t, task.Puzzle.Items, 4)
}

func TestImportTwiceReplacesCatalogue(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "dragsort.db")

	_, err := runImportCmd(t, "text", catalogueDir, "--db", dbPath)
	require.NoError(t, err)

	dir := writeCatalogue(t, map[string]string{"task.cue": sortingTaskCUE})
	output, err := runImportCmd(t, "text", dir, "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, output, "✓ Imported 1 section(s)")

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	cat, err := st.ReadCatalogue(context.Background())
	require.NoError(t, err)
	require.Len(t, cat.Sections, 1)
	assert.Equal(t, "s", cat.Sections[0].ID)
}

func TestImportJSON(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "dragsort.db")

	output, err := runImportCmd(t, "json", catalogueDir, "--db", dbPath)
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   ImportResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, dbPath, resp.Data.Database)
	assert.Equal(t, 7, resp.Data.Tasks)
	assert.Equal(t, 6, resp.Data.Playable)
	assert.Empty(t, resp.Data.Warnings)
}

func TestImportWarningsKept(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "dragsort.db")
	dir := writeCatalogue(t, map[string]string{"task.cue": homelessTaskCUE})

	output, err := runImportCmd(t, "text", dir, "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, output, "✓ Imported 1 section(s)")
	assert.Contains(t, output, "W120")
}

func TestImportStrictWritesNothing(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "dragsort.db")
	dir := writeCatalogue(t, map[string]string{"task.cue": homelessTaskCUE})

	output, err := runImportCmd(t, "text", dir, "--db", dbPath, "--strict")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, output, "✗ Validation failed")

	_, statErr := os.Stat(dbPath)
	assert.True(t, os.IsNotExist(statErr), "database must not be created when validation fails")
}

func TestImportInvalidCatalogue(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "dragsort.db")

	_, err := runImportCmd(t, "text", "/nonexistent/catalogue", "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "E005")
}

func TestImportMissingDatabaseFlag(t *testing.T) {
	_, err := runImportCmd(t, "text", catalogueDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}
