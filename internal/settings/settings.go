package settings

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jeremywohl/flatten"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// ErrSettingsMissing indicates no settings file has been persisted yet.
// Every database or catalog operation treats it as a fatal precondition.
var ErrSettingsMissing = errors.New("settings not configured, run `biosmgr settings set` first")

const (
	envPrefix       = "BIOSMGR"
	defaultDirName  = ".biosmgr"
	defaultFileName = "settings.yaml"

	// DriverMySQL targets the production database server.
	DriverMySQL = "mysql"
	// DriverSQLite targets a local file (or in-memory) database.
	DriverSQLite = "sqlite"
)

// Settings is the persisted configuration every operation loads before
// touching the database or the package catalog.
type Settings struct {
	DatabaseServer   string `mapstructure:"database_server"`
	Database         string `mapstructure:"database"`
	NetworkLibrary   string `mapstructure:"network_library"`
	DatabaseUser     string `mapstructure:"database_user"`
	DatabasePassword string `mapstructure:"database_password"`
	SCCMServer       string `mapstructure:"sccm_server"`
	SCCMSiteCode     string `mapstructure:"sccm_site_code"`
	Driver           string `mapstructure:"driver"`
	LogLevel         string `mapstructure:"log_level"`
}

// DefaultPath returns the settings file location under the user home directory.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "resolve home directory failed")
	}
	return filepath.Join(home, defaultDirName, defaultFileName), nil
}

// Load reads the settings file at path (DefaultPath when empty) and applies
// environment overrides (BIOSMGR_DATABASE_SERVER and friends). A missing file
// is reported as ErrSettingsMissing.
func Load(path string) (*Settings, error) {
	cfg, err := load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrInit behaves like Load but returns a zero-value Settings when no file
// exists yet, so `settings set` can create the initial one.
func LoadOrInit(path string) (*Settings, error) {
	cfg, err := load(path)
	if errors.Is(err, ErrSettingsMissing) {
		cfg = &Settings{}
		cfg.applyDefaults()
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func load(path string) (*Settings, error) {
	v := viper.New()
	cfg := &Settings{}

	if err := cfg.envBindVars(v); err != nil {
		return nil, err
	}
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolved, err := resolvePath(path)
	if err != nil {
		return nil, err
	}
	fh, err := os.Open(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrSettingsMissing, "no settings file at %s", resolved)
		}
		return nil, errors.Wrap(err, "open settings file failed")
	}
	defer fh.Close()

	if err := v.ReadConfig(fh); err != nil {
		return nil, errors.Wrap(err, "read settings file failed")
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal settings failed")
	}
	return cfg, nil
}

// Save persists the settings as YAML at path (DefaultPath when empty),
// creating the parent directory if needed.
func (cfg *Settings) Save(path string) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return errors.Wrap(err, "create settings directory failed")
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.Set("database_server", cfg.DatabaseServer)
	v.Set("database", cfg.Database)
	v.Set("network_library", cfg.NetworkLibrary)
	v.Set("database_user", cfg.DatabaseUser)
	v.Set("database_password", cfg.DatabasePassword)
	v.Set("sccm_server", cfg.SCCMServer)
	v.Set("sccm_site_code", cfg.SCCMSiteCode)
	v.Set("driver", cfg.Driver)
	v.Set("log_level", cfg.LogLevel)
	if err := v.WriteConfigAs(resolved); err != nil {
		return errors.Wrap(err, "write settings file failed")
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) != "" {
		return path, nil
	}
	return DefaultPath()
}

func (cfg *Settings) applyDefaults() {
	if cfg.Driver == "" {
		cfg.Driver = DriverMySQL
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

func (cfg *Settings) validate() error {
	cfg.applyDefaults()
	switch cfg.Driver {
	case DriverMySQL:
		if cfg.DatabaseServer == "" {
			return errors.Wrap(ErrSettingsMissing, "database_server is empty")
		}
		if cfg.Database == "" {
			return errors.Wrap(ErrSettingsMissing, "database is empty")
		}
	case DriverSQLite:
		if cfg.Database == "" {
			return errors.Wrap(ErrSettingsMissing, "database is empty")
		}
	default:
		return errors.Errorf("unsupported driver %q", cfg.Driver)
	}
	return nil
}

// envBindVars binds environment variables to the struct without a
// configuration file being unmarshalled, a workaround for viper only binding
// env vars for keys it has already seen.
func (cfg *Settings) envBindVars(v *viper.Viper) error {
	envKeysMap := map[string]interface{}{}
	if err := mapstructure.Decode(cfg, &envKeysMap); err != nil {
		return err
	}
	flat, err := flatten.Flatten(envKeysMap, "", flatten.DotStyle)
	if err != nil {
		return errors.Wrap(err, "unable to flatten settings")
	}
	for k := range flat {
		if err := v.BindEnv(k); err != nil {
			return errors.Wrap(err, "env var bind failed")
		}
	}
	return nil
}
