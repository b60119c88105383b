package config

import (
	"fmt"
	"io"
	"os"

	"github.com/ghodss/yaml"
	"github.com/spf13/cobra"

	"github.com/AtMostafa/bnd/cmd/util"
	"github.com/AtMostafa/bnd/pkg/config"
	"github.com/AtMostafa/bnd/pkg/errors"
	"github.com/AtMostafa/bnd/pkg/naming"
)

// Mocked for unit testing.
var (
	stdout         io.Writer = os.Stdout
	readConfigFile           = config.ReadFile
	loadConfig               = config.Load
	writeConfig              = config.Write
	getConfigPath            = config.GetUserConfigPath
	lookupEnv                = os.LookupEnv
)

// New creates a new `config` command.
func New() *cobra.Command {
	var cliOpts config.Config
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Setup the bnd user configuration",
		Long: "Write the data roots to the bnd user configuration.\n\n" +
			"Roots that aren't passed as flags keep their current value. If there's\n" +
			"no current value, they're taken from the LOCAL_PATH and REMOTE_PATH\n" +
			"environment variables.",
		Args: cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			if err := SetupConfig(cliOpts); err != nil {
				err = errors.NewFriendlyError("Failed to setup configuration:\n%s",
					errors.GetPrintableMessage(err))
				util.HandleFatalError(err)
			}
		},
	}
	cmd.Flags().StringVar(&cliOpts.LocalPath, "local-path", "",
		"Set the local data root, which contains raw/<subject>/<session>.")
	cmd.Flags().StringVar(&cliOpts.RemotePath, "remote-path", "",
		"Set the remote data root that sessions are uploaded to.")

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: "Print the configuration that commands run with, after the environment\n" +
			"and defaults are applied.",
		Args: cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			if err := show(); err != nil {
				util.HandleFatalError(err)
			}
		},
	})

	// Setup the commands for querying the contents of the user config.
	type getterSpec struct {
		use, short string
		fn         func(config.Config) string
	}

	getters := []getterSpec{
		{
			use:   "get-local-path",
			short: "Get the currently configured local data root",
			fn:    func(cfg config.Config) string { return cfg.LocalPath },
		},
		{
			use:   "get-remote-path",
			short: "Get the currently configured remote data root",
			fn:    func(cfg config.Config) string { return cfg.RemotePath },
		},
	}
	for _, getter := range getters {
		getter := getter
		cmd.AddCommand(&cobra.Command{
			Use:   getter.use,
			Short: getter.short,
			Args:  cobra.NoArgs,
			Run: func(_ *cobra.Command, _ []string) {
				cfg, err := loadConfig()
				if err != nil {
					err = errors.WithContext(err, "read config")
					util.HandleFatalError(err)
				}

				fmt.Fprintln(stdout, getter.fn(cfg))
			},
		})
	}

	return cmd
}

// SetupConfig writes the user config.
func SetupConfig(cliOpts config.Config) error {
	cfg, err := generateConfig(cliOpts)
	if err != nil {
		return errors.WithContext(err, "generate config")
	}

	if err := writeConfig(cfg); err != nil {
		return errors.WithContext(err, "write config")
	}

	path, err := getConfigPath()
	if err != nil {
		return errors.WithContext(err, "get user config path")
	}

	fmt.Fprintf(stdout, "Wrote config to %s\n", path)
	return nil
}

type field struct {
	name, flag, env string
	cliValue        string
	currValue       string
	dst             *string
}

// generateConfig decides on the config to write. Values passed on the
// command line take precedence over the current config, which takes
// precedence over the environment.
func generateConfig(cliOpts config.Config) (config.Config, error) {
	// An unreadable config is never overwritten, since it may hold settings
	// that the flags don't cover.
	currConfig, err := readConfigFile()
	if err != nil {
		return config.Config{}, errors.NewFriendlyError(
			"The current config file wasn't overwritten because it can't be read:\n%s",
			errors.GetPrintableMessage(err))
	}

	cfg := currConfig
	fields := []field{
		{
			name:      "local data root",
			flag:      "local-path",
			env:       config.LocalPathEnv,
			cliValue:  cliOpts.LocalPath,
			currValue: currConfig.LocalPath,
			dst:       &cfg.LocalPath,
		},
		{
			name:      "remote data root",
			flag:      "remote-path",
			env:       config.RemotePathEnv,
			cliValue:  cliOpts.RemotePath,
			currValue: currConfig.RemotePath,
			dst:       &cfg.RemotePath,
		},
	}

	for _, f := range fields {
		value := f.cliValue
		if value == "" {
			value = f.currValue
		}
		if value == "" {
			value, _ = lookupEnv(f.env)
		}
		if value == "" {
			return config.Config{}, errors.NewUsageError(
				"No %s was given. Pass it with --%s, or set %s.", f.name, f.flag, f.env)
		}

		path, err := config.NormalizePath(value)
		if err != nil {
			return config.Config{}, errors.WithContext(err, fmt.Sprintf("resolve %s", f.name))
		}
		*f.dst = path
	}

	if cfg.SessionDateLayout == "" {
		cfg.SessionDateLayout = naming.DefaultDateLayout
	}
	if len(cfg.EphysStreams) == 0 {
		cfg.EphysStreams = append([]string{}, naming.DefaultProbeStreams...)
	}

	if err := config.Validate(cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func show() error {
	cfg, err := loadConfig()
	if err != nil {
		return errors.WithContext(err, "load config")
	}

	yamlBytes, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.WithContext(err, "marshal")
	}

	_, err = stdout.Write(yamlBytes)
	return err
}
