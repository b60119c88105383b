package config

import (
	"fmt"
	"os"

	"github.com/ghodss/yaml"
	"github.com/spf13/afero"

	"github.com/AtMostafa/bnd/pkg/errors"
)

// The yaml library drops the position of the offending field, so the
// parser's message is passed through as is.
const parseConfigErrTemplate = "The bnd config file %q could not be parsed.\n" +
	"Fix the file by hand, or remove it and regenerate it with " +
	"`bnd config --local-path <dir> --remote-path <dir>`.\n" +
	"Set " + ConfigPathEnv + " to read a different file.\n\n" +
	"Parser error: %s"

type incompatibleVersionError struct {
	path, actual string
}

func (err incompatibleVersionError) Error() string {
	return err.FriendlyMessage()
}

func (err incompatibleVersionError) FriendlyMessage() string {
	return fmt.Sprintf("The bnd config file %q has version %q, "+
		"but this bnd binary reads version %q.\n"+
		"Remove it and regenerate it with `bnd config`.",
		err.path, err.actual, SupportedUserConfigVersion)
}

// parseConfig reads the user config at path. A file without a version is
// treated as InitialUserConfigVersion. When the file doesn't exist, the
// returned error is errors.FileNotFound and the Config carries only the
// default version.
func parseConfig(path string) (Config, error) {
	cfg := Config{Version: InitialUserConfigVersion}
	configBytes, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, errors.FileNotFound{Path: path}
		}
		return Config{}, errors.WithContext(err, "read file")
	}

	// Check the version with a lenient decode first, so that a file written
	// for another release reports the version mismatch rather than whichever
	// field was added or removed.
	if err := yaml.Unmarshal(configBytes, &cfg); err != nil {
		return Config{}, errors.NewFriendlyError(parseConfigErrTemplate, path, err)
	}
	if cfg.Version != SupportedUserConfigVersion {
		return Config{}, incompatibleVersionError{path, cfg.Version}
	}

	err = yaml.UnmarshalStrict(configBytes, &cfg, yaml.DisallowUnknownFields)
	if err != nil {
		return Config{}, errors.NewFriendlyError(parseConfigErrTemplate, path, err)
	}
	return cfg, nil
}
