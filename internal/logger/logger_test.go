package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewSplitsSinksByLevel(t *testing.T) {
	dir := t.TempDir()

	l, closeFn, err := New(Options{Dir: dir, Level: "info", Production: true})
	require.NoError(t, err)

	l.Info("server running", zap.String("port", "3000"))
	l.Error("token exchange failed", zap.String("error", "boom"))
	closeFn()

	combined, err := os.ReadFile(filepath.Join(dir, CombinedFile))
	require.NoError(t, err)
	errs, err := os.ReadFile(filepath.Join(dir, ErrorFile))
	require.NoError(t, err)

	assert.Contains(t, string(combined), "server running")
	assert.Contains(t, string(combined), "token exchange failed")
	assert.Contains(t, string(combined), `"timestamp"`)

	assert.NotContains(t, string(errs), "server running")
	assert.Contains(t, string(errs), "token exchange failed")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, _, err := New(Options{Dir: t.TempDir(), Level: "chatty"})
	require.Error(t, err)
}

func TestHelpersUseGlobalLogger(t *testing.T) {
	dir := t.TempDir()
	l, closeFn, err := New(Options{Dir: dir, Production: true})
	require.NoError(t, err)

	restore := zap.ReplaceGlobals(l)
	defer restore()

	Info("hello", map[string]any{"port": "3000"})
	Error("bad", nil)
	closeFn()

	combined, err := os.ReadFile(filepath.Join(dir, CombinedFile))
	require.NoError(t, err)
	assert.Contains(t, string(combined), `"port":"3000"`)
	assert.Contains(t, string(combined), "bad")
}
