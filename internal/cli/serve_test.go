package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dragsort/internal/ir"
	"github.com/roach88/dragsort/internal/testutil"
)

func TestServeCatalogueAPI(t *testing.T) {
	dbPath := importedDB(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	cmd := newServeCommand(&ServeOptions{
		RootOptions: quietRootOptions("text"),
		Listener:    ln,
		SessionIDs:  testutil.NewFixedSessionIDs("served"),
	})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath, "--completion-delay", "10ms"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- cmd.ExecuteContext(ctx)
	}()

	url := "http://" + ln.Addr().String() + "/api/sections"
	var sections []ir.Section
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return false
		}
		return json.NewDecoder(resp.Body).Decode(&sections) == nil
	}, 5*time.Second, 20*time.Millisecond)
	assert.Len(t, sections, 3)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("serve did not stop after cancel")
	}
	assert.Contains(t, buf.String(), "Serving on "+ln.Addr().String())
}

func TestServeInvalidConfig(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewServeCommand(quietRootOptions("text"))
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", filepath.Join(t.TempDir(), "x.db"), "--completion-delay=-1s"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestResolveServeConfigFlagsOverrideEnv(t *testing.T) {
	t.Setenv("DRAGSORT_ADDR", ":9000")
	t.Setenv("DRAGSORT_DB", "env.db")

	opts := &ServeOptions{RootOptions: quietRootOptions("text")}
	cmd := newServeCommand(opts)
	require.NoError(t, cmd.ParseFlags([]string{"--db", "flag.db"}))

	cfg, err := resolveServeConfig(opts, cmd)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, "flag.db", cfg.DBPath)
	assert.Equal(t, 500*time.Millisecond, cfg.CompletionDelay)
}
