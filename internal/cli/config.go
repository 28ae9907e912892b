package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/canvass/internal/logging"
	"github.com/mesh-intelligence/canvass/internal/paths"
	"github.com/mesh-intelligence/canvass/pkg/types"
)

// Keys of config.yaml.
const (
	cfgKeyBackend       = "backend"
	cfgKeyDataDir       = "data_dir"
	cfgKeyNodeID        = "node_id"
	cfgKeyTxTimeout     = "tx_timeout"
	cfgKeyIndexDebounce = "index_debounce"
	cfgKeyLogLevel      = "log_level"
)

const defaultLogLevel = "warn"

// configFile is the shape of config.yaml written on first run.
type configFile struct {
	Backend       string `yaml:"backend"`
	DataDir       string `yaml:"data_dir,omitempty"`
	NodeID        int64  `yaml:"node_id"`
	TxTimeout     string `yaml:"tx_timeout"`
	IndexDebounce string `yaml:"index_debounce"`
	LogLevel      string `yaml:"log_level"`
}

func defaultConfigFile() configFile {
	return configFile{
		Backend:       types.BackendSQLite,
		NodeID:        types.DefaultNodeID,
		TxTimeout:     types.DefaultTxTimeout.String(),
		IndexDebounce: types.DefaultIndexDebounce.String(),
		LogLevel:      defaultLogLevel,
	}
}

// setup resolves directories, loads .env and config.yaml, and builds the
// store configuration and logger. The version command needs none of it.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return fmt.Errorf("resolving config dir: %w", err)
	}
	a.configDir = configDir

	if err := loadEnvFile(paths.EnvFile(configDir)); err != nil {
		return err
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return err
	}

	level, err := logging.ParseLevel(v.GetString(cfgKeyLogLevel))
	if err != nil {
		return userErrorf("config %s: %w", cfgKeyLogLevel, err)
	}
	a.log = logging.NewTextLogger(cmd.ErrOrStderr(), level)

	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, v.GetString(cfgKeyDataDir))
	if err != nil {
		return fmt.Errorf("resolving data dir: %w", err)
	}
	a.cfg = types.Config{
		Backend:       v.GetString(cfgKeyBackend),
		DataDir:       dataDir,
		NodeID:        v.GetInt64(cfgKeyNodeID),
		TxTimeout:     v.GetDuration(cfgKeyTxTimeout),
		IndexDebounce: v.GetDuration(cfgKeyIndexDebounce),
	}
	if err := a.cfg.WithDefaults().Validate(); err != nil {
		return userErrorf("config: %w", err)
	}
	return nil
}

// loadEnvFile exports the variables of an optional .env file without
// overriding ones already set.
func loadEnvFile(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("loading %s: %w", path, err)
}

// loadConfig reads config.yaml from configDir, writing the defaults first
// when it does not exist. CANVASS_* variables override file values, except
// data_dir whose precedence paths.ResolveDataDir owns.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := writeConfigIfMissing(paths.ConfigFile(configDir)); err != nil {
		return nil, fmt.Errorf("writing default config: %w", err)
	}

	def := defaultConfigFile()
	v := viper.New()
	v.SetDefault(cfgKeyBackend, def.Backend)
	v.SetDefault(cfgKeyNodeID, def.NodeID)
	v.SetDefault(cfgKeyTxTimeout, types.DefaultTxTimeout)
	v.SetDefault(cfgKeyIndexDebounce, types.DefaultIndexDebounce)
	v.SetDefault(cfgKeyLogLevel, def.LogLevel)
	for _, key := range []string{cfgKeyBackend, cfgKeyNodeID, cfgKeyTxTimeout, cfgKeyIndexDebounce, cfgKeyLogLevel} {
		if err := v.BindEnv(key, envName(key)); err != nil {
			return nil, err
		}
	}

	v.SetConfigFile(paths.ConfigFile(configDir))
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, userErrorf("reading config: %w", err)
		}
	}
	return v, nil
}

func envName(key string) string {
	return "CANVASS_" + strings.ToUpper(key)
}

// writeConfigIfMissing creates config.yaml with default values. An existing
// file is left alone.
func writeConfigIfMissing(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(defaultConfigFile())
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// parseSince reads an RFC 3339 timestamp or a YYYY-MM-DD date.
func parseSince(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, userErrorf("invalid --since %q: want RFC 3339 or YYYY-MM-DD", s)
}
