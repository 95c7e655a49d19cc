package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// homelessTaskCUE has an item no zone accepts: a warning, not an error.
const homelessTaskCUE = `
package test

section: s: {
	title: "Section"
	category: c: {title: "Category"}
}

tasks: c: [{
	id:       "t1"
	template: "sorting"
	content: {
		zones: [{id: "hot", label: "Hot", accept: ["hot"]}]
		items: [
			{type: "hot", content: "☀️"},
			{type: "cold", content: "🧊"},
		]
	}
}]
`

func runValidateCmd(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: format}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestValidateValidCatalogue(t *testing.T) {
	output, err := runValidateCmd(t, "text", catalogueDir)
	require.NoError(t, err)
	assert.Contains(t, output, "✓ Catalogue valid")
	assert.NotContains(t, output, "warning")
}

func TestValidateValidCatalogueJSON(t *testing.T) {
	output, err := runValidateCmd(t, "json", catalogueDir)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Empty(t, resp.Data.Errors)
}

func TestValidateNonExistentDirectory(t *testing.T) {
	output, err := runValidateCmd(t, "text", "/nonexistent/catalogue")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "E005")
	assert.Contains(t, output, "not found")
}

func TestValidateHomelessItemWarns(t *testing.T) {
	dir := writeCatalogue(t, map[string]string{"task.cue": homelessTaskCUE})

	output, err := runValidateCmd(t, "text", dir)
	require.NoError(t, err)
	assert.Contains(t, output, "✓ Catalogue valid")
	assert.Contains(t, output, "warning W120: tasks.c.t1.items")
	assert.Contains(t, output, `type "cold" matches no zone`)
}

func TestValidateStrictFailsOnWarning(t *testing.T) {
	dir := writeCatalogue(t, map[string]string{"task.cue": homelessTaskCUE})

	output, err := runValidateCmd(t, "text", dir, "--strict")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, output, "✗ Validation failed")
	assert.Contains(t, output, "W120")
}

func TestValidateStrictJSON(t *testing.T) {
	dir := writeCatalogue(t, map[string]string{"task.cue": homelessTaskCUE})

	output, err := runValidateCmd(t, "json", dir, "--strict")
	require.Error(t, err)

	var resp struct {
		Status string           `json:"status"`
		Error  *CLIError        `json:"error"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "W120", resp.Error.Code)
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Errors, 1)
	assert.Empty(t, resp.Data.Warnings)
}

func TestValidateConsistencyErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantCode string
	}{
		{
			name: "undeclared category",
			src: `
package test

section: s: {title: "S", category: c: {title: "C"}}

tasks: other: [{id: "t1", template: "memory", content: {}}]
`,
			wantCode: "E105",
		},
		{
			name: "duplicate task id",
			src: `
package test

section: s: {title: "S", category: c: {title: "C"}}

tasks: c: [
	{id: "t1", template: "memory", content: {}},
	{id: "t1", template: "memory", content: {}},
]
`,
			wantCode: "E106",
		},
		{
			name: "zone accepts nothing",
			src: `
package test

section: s: {title: "S", category: c: {title: "C"}}

tasks: c: [{
	id:       "t1"
	template: "sorting"
	content: {
		zones: [{id: "z", accept: []}]
		items: [{type: "a", content: "A"}]
	}
}]
`,
			wantCode: "E113",
		},
		{
			name: "negative total",
			src: `
package test

section: s: {title: "S", category: c: {title: "C", total: -1}}
`,
			wantCode: "E104",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeCatalogue(t, map[string]string{"bad.cue": tt.src})

			output, err := runValidateCmd(t, "text", dir)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.Contains(t, output, "✗ Validation failed")
			assert.Contains(t, output, "error "+tt.wantCode)
		})
	}
}

func TestValidateCompileErrorFails(t *testing.T) {
	dir := writeCatalogue(t, map[string]string{"bad.cue": `
package test

section: s: {icon: "x"}
`})

	output, err := runValidateCmd(t, "text", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, output, "error E101: load: title is required")
}
