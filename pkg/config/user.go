package config

import (
	"path/filepath"

	"github.com/ghodss/yaml"
	homedir "github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/AtMostafa/bnd/pkg/errors"
	"github.com/AtMostafa/bnd/pkg/naming"
)

const (
	// UserConfigPath is the default path to the bnd user config.
	UserConfigPath = "~/.bnd.yaml"

	// ConfigPathEnv overrides UserConfigPath when set.
	ConfigPathEnv = "BND_CONFIG"

	// LocalPathEnv and RemotePathEnv override the data roots in the config
	// file.
	LocalPathEnv  = "LOCAL_PATH"
	RemotePathEnv = "REMOTE_PATH"

	// InitialUserConfigVersion is the first version of the bnd user config.
	// Config files that do not specify a version will default to this
	// version.
	InitialUserConfigVersion = "v1alpha1"

	// SupportedUserConfigVersion is the supported version of the bnd user
	// config of the current bnd binary.
	SupportedUserConfigVersion = "v1alpha1"
)

// Config holds the process-wide settings. It's loaded once at startup and
// passed to the components that need it.
type Config struct {
	Version string `json:"version,omitempty"`

	// LocalPath is the root of the local data tree, which contains
	// `raw/<subject>/<session>`.
	LocalPath string `json:"localPath" validate:"required"`

	// RemotePath is the root of the remote mirror, e.g. a mounted network
	// share.
	RemotePath string `json:"remotePath" validate:"required"`

	// SessionDateLayout is the Go time layout of session labels.
	SessionDateLayout string `json:"sessionDateLayout,omitempty" validate:"required"`

	// EphysStreams are the SpikeGLX stream files every probe must have.
	EphysStreams []string `json:"ephysStreams,omitempty" validate:"min=1,dive,required"`
}

// Convention returns the naming convention described by the config.
func (c Config) Convention() naming.Convention {
	return naming.Convention{
		DateLayout:   c.SessionDateLayout,
		ProbeStreams: c.EphysStreams,
	}
}

// Load reads the user config, applies environment overrides and defaults,
// and validates the result.
func Load() (Config, error) {
	path, err := GetUserConfigPath()
	if err != nil {
		return Config{}, errors.WithContext(err, "expand config path")
	}

	cfg, err := parseConfig(path)
	if err != nil {
		if _, ok := err.(errors.FileNotFound); !ok {
			return Config{}, errors.WithContext(err, "parse")
		}
		log.WithField("path", path).Debug("No user config file, using the environment only")
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	for _, field := range []*string{&cfg.LocalPath, &cfg.RemotePath} {
		if *field == "" {
			continue
		}

		expanded, err := NormalizePath(*field)
		if err != nil {
			return Config{}, errors.WithContext(err, "expand data root")
		}
		*field = expanded
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ReadFile returns the contents of the user config file without applying
// the environment or defaults. A missing file yields an empty Config.
func ReadFile() (Config, error) {
	path, err := GetUserConfigPath()
	if err != nil {
		return Config{}, errors.WithContext(err, "expand config path")
	}

	cfg, err := parseConfig(path)
	if err != nil {
		if _, ok := err.(errors.FileNotFound); ok {
			return Config{}, nil
		}
		return Config{}, errors.WithContext(err, "parse")
	}
	return cfg, nil
}

// Write writes the given config to the user config path.
func Write(cfg Config) error {
	cfg.Version = SupportedUserConfigVersion
	path, err := GetUserConfigPath()
	if err != nil {
		return errors.WithContext(err, "expand config path")
	}

	yamlBytes, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.WithContext(err, "marshal")
	}

	if err := afero.WriteFile(fs, path, yamlBytes, 0644); err != nil {
		return errors.WithContext(err, "write")
	}
	return nil
}

// GetUserConfigPath returns the path to the user's bnd configuration. This
// path is expanded, so it can be directly passed to file operations.
func GetUserConfigPath() (string, error) {
	if path, ok := lookupEnv(ConfigPathEnv); ok && path != "" {
		return homedirExpand(path)
	}
	return homedirExpand(UserConfigPath)
}

// applyEnv overrides the data roots with the environment. A `.env` file is
// loaded into the environment by the CLI before this runs.
func applyEnv(cfg *Config) {
	if local, ok := lookupEnv(LocalPathEnv); ok && local != "" {
		cfg.LocalPath = local
	}
	if remote, ok := lookupEnv(RemotePathEnv); ok && remote != "" {
		cfg.RemotePath = remote
	}
}

func applyDefaults(cfg *Config) {
	if cfg.SessionDateLayout == "" {
		cfg.SessionDateLayout = naming.DefaultDateLayout
	}
	if len(cfg.EphysStreams) == 0 {
		cfg.EphysStreams = append([]string{}, naming.DefaultProbeStreams...)
	}
}

// NormalizePath expands a leading `~` and makes the path absolute.
func NormalizePath(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", err
	}
	return filepath.Abs(expanded)
}
