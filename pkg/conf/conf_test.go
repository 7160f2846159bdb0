package conf

import (
	"os"
	"path/filepath"
	"testing"

	"bsab/pkg/progress"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"BSAB_CONFIG", "BSAB_LOG_LEVEL", "BSAB_LOG_FORMAT", "BSAB_LOG_FILE", "BSAB_PROGRESS"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Settings{
		LogLevel:  "warn",
		LogFormat: "text",
		Progress:  progress.ModeAuto,
	}, s)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("BSAB_LOG_LEVEL", "DEBUG")
	t.Setenv("BSAB_LOG_FORMAT", "json")
	t.Setenv("BSAB_LOG_FILE", "/tmp/bsab.log")
	t.Setenv("BSAB_PROGRESS", "Line")

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", s.LogLevel)
	assert.Equal(t, "json", s.LogFormat)
	assert.Equal(t, "/tmp/bsab.log", s.LogFile)
	assert.Equal(t, progress.ModeLine, s.Progress)
}

func TestLoadConfigFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "bsab.yaml")
	require.NoError(t, os.WriteFile(file, []byte("log_level: info\nprogress: overwrite\n"), 0644))
	t.Setenv("BSAB_CONFIG", file)
	t.Setenv("BSAB_PROGRESS", "")
	os.Unsetenv("BSAB_PROGRESS")
	t.Setenv("BSAB_LOG_LEVEL", "")
	os.Unsetenv("BSAB_LOG_LEVEL")

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "info", s.LogLevel)
	assert.Equal(t, progress.ModeOverwrite, s.Progress)
}

func TestLoadMissingConfigFile(t *testing.T) {
	t.Setenv("BSAB_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnknownValues(t *testing.T) {
	t.Setenv("BSAB_CONFIG", "")
	t.Setenv("BSAB_PROGRESS", "spinner")
	_, err := Load()
	assert.Equal(t, ErrInvalidSetting, errors.Cause(err))

	t.Setenv("BSAB_PROGRESS", "auto")
	t.Setenv("BSAB_LOG_FORMAT", "xml")
	_, err = Load()
	assert.Equal(t, ErrInvalidSetting, errors.Cause(err))

	t.Setenv("BSAB_LOG_FORMAT", "text")
	t.Setenv("BSAB_LOG_LEVEL", "chatty")
	_, err = Load()
	assert.Equal(t, ErrInvalidSetting, errors.Cause(err))
	assert.Contains(t, err.Error(), "BSAB_LOG_LEVEL")
}
