package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Zytronium/atlas-airbnb-clone/internal/paths"
	"github.com/Zytronium/atlas-airbnb-clone/pkg/types"
)

// configFile holds the structure written to config.yaml.
type configFile struct {
	DataDir   string `yaml:"data_dir,omitempty"`
	DataFile  string `yaml:"data_file"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

func newInitCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the configuration file and data directory",
		Long: "Write a default config.yaml to the configuration directory if none exists\n" +
			"and create the directory that will hold the data file.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, f)
		},
	}
}

func runInit(cmd *cobra.Command, f *rootFlags) error {
	configDir, err := paths.ResolveConfigDir(f.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return sysError(fmt.Errorf("create config directory: %w", err))
	}

	// A data dir given on the command line is remembered in config.yaml.
	var dataDir string
	if f.dataDir != "" {
		if dataDir, err = filepath.Abs(f.dataDir); err != nil {
			return sysError(fmt.Errorf("resolve data dir: %w", err))
		}
	}

	configPath := paths.ConfigFile(configDir)
	if err := writeConfigIfMissing(configPath, dataDir); err != nil {
		return sysError(fmt.Errorf("write config: %w", err))
	}

	cfg, err := loadSettings(f)
	if err != nil {
		return userError(err)
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return sysError(fmt.Errorf("create data directory: %w", err))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "config: %s\ndata:   %s\n", configPath, cfg.DataPath())
	return nil
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. If it already exists, the function returns nil (idempotent).
func writeConfigIfMissing(path, dataDir string) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config file: %w", err)
	}

	cfg := configFile{
		DataDir:   dataDir,
		DataFile:  types.DefaultDataFile,
		LogLevel:  types.DefaultLogLevel,
		LogFormat: types.DefaultLogFormat,
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}
