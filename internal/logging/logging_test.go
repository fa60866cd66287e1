package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid log level "loud"`)
}

func TestNew_ConsoleRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Console: &buf})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("source loaded")
	require.NoError(t, logger.Sync())

	assert.Contains(t, buf.String(), "source loaded")
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNew_DefaultLevelIsWarn(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Console: &buf})
	require.NoError(t, err)

	logger.Info("quiet")
	logger.Warn("loud")

	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "loud")
}

func TestNew_FileCore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "acad.log")
	var buf bytes.Buffer
	logger, err := New(Options{Console: &buf, File: path})
	require.NoError(t, err)

	logger.Info("entry recorded")
	_ = logger.Sync()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"msg":"entry recorded"`)
	assert.NotContains(t, buf.String(), "entry recorded")
}
