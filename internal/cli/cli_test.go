package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Zytronium/atlas-airbnb-clone/internal/paths"
	"github.com/Zytronium/atlas-airbnb-clone/internal/registry"
	"github.com/Zytronium/atlas-airbnb-clone/pkg/types"
)

// isolateEnv clears every HBNB_* variable for the duration of the test.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{paths.EnvConfigDir, paths.EnvDataDir, "HBNB_DATA_FILE", "HBNB_LOG_LEVEL", "HBNB_LOG_FORMAT"} {
		t.Setenv(key, "")
	}
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "hbnb v"+Version)
	assert.Contains(t, out, modulePath)
}

func TestInit(t *testing.T) {
	isolateEnv(t)
	configDir := filepath.Join(t.TempDir(), "config")
	dataDir := filepath.Join(t.TempDir(), "data")

	out, _, err := execute(t, "", "init", "--config-dir", configDir, "--data-dir", dataDir)
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dataDir, types.DefaultDataFile))

	info, err := os.Stat(dataDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	data, err := os.ReadFile(paths.ConfigFile(configDir))
	require.NoError(t, err)
	var cfg configFile
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, configFile{
		DataDir:   dataDir,
		DataFile:  types.DefaultDataFile,
		LogLevel:  types.DefaultLogLevel,
		LogFormat: types.DefaultLogFormat,
	}, cfg)

	t.Run("existing config is kept", func(t *testing.T) {
		custom := []byte("data_file: other.json\n")
		require.NoError(t, os.WriteFile(paths.ConfigFile(configDir), custom, 0o644))

		_, _, err := execute(t, "", "init", "--config-dir", configDir)
		require.NoError(t, err)

		data, err := os.ReadFile(paths.ConfigFile(configDir))
		require.NoError(t, err)
		assert.Equal(t, custom, data)
	})
}

func TestConsoleSession(t *testing.T) {
	isolateEnv(t)
	configDir := t.TempDir()
	dataDir := t.TempDir()

	out, _, err := execute(t, "create State\nquit\n", "--config-dir", configDir, "--data-dir", dataDir)
	require.NoError(t, err)
	id := strings.TrimSpace(strings.ReplaceAll(out, "(hbnb) ", ""))
	require.NotEmpty(t, id)

	reg := registry.New(filepath.Join(dataDir, types.DefaultDataFile))
	require.NoError(t, reg.Reload())
	_, ok := reg.Get(types.KindState, id)
	assert.True(t, ok, "record must be saved to the data file")

	out, _, err = execute(t, "show State "+id+"\n", "--config-dir", configDir, "--data-dir", dataDir)
	require.NoError(t, err)
	assert.Contains(t, out, "[State] ("+id+")")
}

func TestConsoleUsesConfigFile(t *testing.T) {
	isolateEnv(t)
	configDir := t.TempDir()
	dataDir := t.TempDir()
	yml := "data_dir: " + dataDir + "\ndata_file: store.json\n"
	require.NoError(t, os.WriteFile(paths.ConfigFile(configDir), []byte(yml), 0o644))

	_, _, err := execute(t, "create City\n", "--config-dir", configDir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dataDir, "store.json"))
}

func TestConsoleDebugLogging(t *testing.T) {
	isolateEnv(t)

	_, stderr, err := execute(t, "create User\n",
		"--config-dir", t.TempDir(), "--data-dir", t.TempDir(), "--log-level", "debug")
	require.NoError(t, err)
	assert.Contains(t, stderr, "registry saved")
}

func TestEnvFile(t *testing.T) {
	isolateEnv(t)
	// godotenv only fills variables that are not already set.
	require.NoError(t, os.Unsetenv("HBNB_DATA_FILE"))

	configDir := t.TempDir()
	dataDir := t.TempDir()
	require.NoError(t, os.WriteFile(paths.EnvFile(configDir), []byte("HBNB_DATA_FILE=from-env.json\n"), 0o644))

	_, _, err := execute(t, "create Amenity\n", "--config-dir", configDir, "--data-dir", dataDir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dataDir, "from-env.json"))
}

func TestConsoleErrors(t *testing.T) {
	t.Run("invalid log level", func(t *testing.T) {
		isolateEnv(t)
		_, _, err := execute(t, "", "--config-dir", t.TempDir(), "--data-dir", t.TempDir(), "--log-level", "loud")
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrLogLevelUnknown)
		assert.Equal(t, exitUserError, exitCode(err))
	})

	t.Run("malformed config file", func(t *testing.T) {
		isolateEnv(t)
		configDir := t.TempDir()
		require.NoError(t, os.WriteFile(paths.ConfigFile(configDir), []byte("data_file: [\n"), 0o644))

		_, _, err := execute(t, "", "--config-dir", configDir, "--data-dir", t.TempDir())
		require.Error(t, err)
		assert.Equal(t, exitUserError, exitCode(err))
	})

	t.Run("malformed data file", func(t *testing.T) {
		isolateEnv(t)
		dataDir := t.TempDir()
		path := filepath.Join(dataDir, types.DefaultDataFile)
		require.NoError(t, os.WriteFile(path, []byte(`{"User.1": {"id": "1"}}`), 0o644))

		_, _, err := execute(t, "", "--config-dir", t.TempDir(), "--data-dir", dataDir)
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrMalformedRecord)
		assert.Equal(t, exitSysError, exitCode(err))
	})

	t.Run("unexpected argument", func(t *testing.T) {
		isolateEnv(t)
		_, _, err := execute(t, "", "--config-dir", t.TempDir(), "extra")
		require.Error(t, err)
	})
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitSuccess, exitCode(nil))
	assert.Equal(t, exitUserError, exitCode(errors.New("plain")))
	assert.Equal(t, exitUserError, exitCode(userError(errors.New("bad input"))))
	assert.Equal(t, exitSysError, exitCode(sysError(errors.New("disk"))))
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level, format string
		debugShown    bool
		warnShown     bool
		jsonOut       bool
	}{
		{"debug", "text", true, true, false},
		{"info", "json", false, true, true},
		{"warn", "text", false, true, false},
		{"error", "text", false, false, false},
		{"", "", false, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(tt.level, tt.format, &buf)
			logger.Debug("debug message")
			logger.Warn("warn message")

			out := buf.String()
			assert.Equal(t, tt.debugShown, strings.Contains(out, "debug message"))
			assert.Equal(t, tt.warnShown, strings.Contains(out, "warn message"))
			if tt.warnShown {
				assert.Equal(t, tt.jsonOut, strings.HasPrefix(out, "{"))
			}
		})
	}
}
