package types

import (
	"errors"
	"path/filepath"
)

// Config holds the resolved settings the CLI hands to the registry and the
// logger.
type Config struct {
	DataDir   string `json:"data_dir" yaml:"data_dir"`
	DataFile  string `json:"data_file" yaml:"data_file"`
	LogLevel  string `json:"log_level" yaml:"log_level"`
	LogFormat string `json:"log_format" yaml:"log_format"`
}

// Defaults applied when a setting is absent.
const (
	DefaultDataFile  = "file.json"
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
)

// Config validation errors.
var (
	ErrDataFileEmpty    = errors.New("data file must not be empty")
	ErrDataFileNested   = errors.New("data file must be a bare file name")
	ErrLogLevelUnknown  = errors.New("unknown log level")
	ErrLogFormatUnknown = errors.New("unknown log format")
)

var knownLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var knownLogFormats = map[string]bool{
	"text": true,
	"json": true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure. An empty DataDir means the working directory;
// empty log settings mean the defaults.
func (c Config) Validate() error {
	if c.DataFile == "" {
		return ErrDataFileEmpty
	}
	if filepath.Base(c.DataFile) != c.DataFile {
		return ErrDataFileNested
	}
	if c.LogLevel != "" && !knownLogLevels[c.LogLevel] {
		return ErrLogLevelUnknown
	}
	if c.LogFormat != "" && !knownLogFormats[c.LogFormat] {
		return ErrLogFormatUnknown
	}
	return nil
}

// DataPath returns the full path of the data file.
func (c Config) DataPath() string {
	dir := c.DataDir
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, c.DataFile)
}
