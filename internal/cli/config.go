package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Zytronium/atlas-airbnb-clone/internal/paths"
	"github.com/Zytronium/atlas-airbnb-clone/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	envPrefix      = "HBNB"

	cfgKeyDataDir   = "data_dir"
	cfgKeyDataFile  = "data_file"
	cfgKeyLogLevel  = "log_level"
	cfgKeyLogFormat = "log_format"
)

// loadConfig reads config.yaml from configDir using Viper. A .env file in
// configDir is loaded into the environment first. Neither file is required.
//
// data_file, log_level and log_format can be overridden with HBNB_*
// variables. data_dir is left to paths.ResolveDataDir, where config.yaml
// wins over HBNB_DATA_DIR.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := godotenv.Load(paths.EnvFile(configDir)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", paths.EnvFile(configDir), err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyDataFile, types.DefaultDataFile)
	v.SetDefault(cfgKeyLogLevel, types.DefaultLogLevel)
	v.SetDefault(cfgKeyLogFormat, types.DefaultLogFormat)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	v.SetEnvPrefix(envPrefix)
	for _, key := range []string{cfgKeyDataFile, cfgKeyLogLevel, cfgKeyLogFormat} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// loadSettings resolves the directories, reads the configuration and
// applies flag overrides. The result is validated.
func loadSettings(f *rootFlags) (types.Config, error) {
	configDir, err := paths.ResolveConfigDir(f.configDir)
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve config dir: %w", err)
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return types.Config{}, err
	}

	dataDir, err := paths.ResolveDataDir(f.dataDir, v.GetString(cfgKeyDataDir))
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve data dir: %w", err)
	}

	cfg := types.Config{
		DataDir:   dataDir,
		DataFile:  v.GetString(cfgKeyDataFile),
		LogLevel:  v.GetString(cfgKeyLogLevel),
		LogFormat: v.GetString(cfgKeyLogFormat),
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
