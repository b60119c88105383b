package config

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AtMostafa/bnd/pkg/config"
	"github.com/AtMostafa/bnd/pkg/errors"
	"github.com/AtMostafa/bnd/pkg/naming"
)

func mockEnv(env map[string]string) {
	lookupEnv = func(key string) (string, bool) {
		val, ok := env[key]
		return val, ok
	}
}

func TestGenerateConfig(t *testing.T) {
	defer func() {
		readConfigFile = config.ReadFile
		lookupEnv = os.LookupEnv
	}()

	customLayout := config.Config{
		LocalPath:         "/file/local",
		RemotePath:        "/file/remote",
		SessionDateLayout: "2006-01-02_15-04-05",
		EphysStreams:      []string{"ap.bin"},
	}

	tests := []struct {
		name       string
		cliOpts    config.Config
		currConfig config.Config
		currErr    error
		env        map[string]string
		expConfig  config.Config
		expErr     error
	}{
		{
			name:    "FlagsOnly",
			cliOpts: config.Config{LocalPath: "/cli/local", RemotePath: "/cli/remote"},
			expConfig: config.Config{
				LocalPath:         "/cli/local",
				RemotePath:        "/cli/remote",
				SessionDateLayout: naming.DefaultDateLayout,
				EphysStreams:      naming.DefaultProbeStreams,
			},
		},
		{
			name:       "FlagOverridesCurrentConfig",
			cliOpts:    config.Config{RemotePath: "/cli/remote"},
			currConfig: customLayout,
			env:        map[string]string{config.RemotePathEnv: "/env/remote"},
			expConfig: config.Config{
				LocalPath:         "/file/local",
				RemotePath:        "/cli/remote",
				SessionDateLayout: "2006-01-02_15-04-05",
				EphysStreams:      []string{"ap.bin"},
			},
		},
		{
			name: "FallBackToEnv",
			env: map[string]string{
				config.LocalPathEnv:  "/env/local",
				config.RemotePathEnv: "/env/remote",
			},
			expConfig: config.Config{
				LocalPath:         "/env/local",
				RemotePath:        "/env/remote",
				SessionDateLayout: naming.DefaultDateLayout,
				EphysStreams:      naming.DefaultProbeStreams,
			},
		},
		{
			name:    "UnreadableCurrentConfig",
			cliOpts: config.Config{LocalPath: "/cli/local", RemotePath: "/cli/remote"},
			currErr: errors.New("unknown field \"extra\""),
			expErr: errors.NewFriendlyError(
				"The current config file wasn't overwritten because it can't be read:\n%s",
				`unknown field "extra"`),
		},
		{
			name:    "MissingRemote",
			cliOpts: config.Config{LocalPath: "/cli/local"},
			expErr: errors.NewUsageError("No remote data root was given. " +
				"Pass it with --remote-path, or set REMOTE_PATH."),
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			readConfigFile = func() (config.Config, error) {
				return test.currConfig, test.currErr
			}
			mockEnv(test.env)

			cfg, err := generateConfig(test.cliOpts)
			assert.Equal(t, test.expErr, err)
			assert.Equal(t, test.expConfig, cfg)
		})
	}
}

func TestGenerateConfigSameRoots(t *testing.T) {
	defer func() { readConfigFile = config.ReadFile }()
	readConfigFile = func() (config.Config, error) { return config.Config{}, nil }

	_, err := generateConfig(config.Config{LocalPath: "/data", RemotePath: "/data/"})
	assert.Error(t, err)
}

func TestSetupConfig(t *testing.T) {
	out := &bytes.Buffer{}
	stdout = out
	readConfigFile = func() (config.Config, error) { return config.Config{}, nil }
	getConfigPath = func() (string, error) { return "/home/user/.bnd.yaml", nil }

	var written config.Config
	writeConfig = func(cfg config.Config) error {
		written = cfg
		return nil
	}
	defer func() {
		stdout = os.Stdout
		readConfigFile = config.ReadFile
		getConfigPath = config.GetUserConfigPath
		writeConfig = config.Write
	}()

	require.NoError(t, SetupConfig(config.Config{LocalPath: "/data/local", RemotePath: "/mnt/remote"}))
	assert.Equal(t, "/data/local", written.LocalPath)
	assert.Equal(t, "/mnt/remote", written.RemotePath)
	assert.Equal(t, "Wrote config to /home/user/.bnd.yaml\n", out.String())
}

func TestShow(t *testing.T) {
	out := &bytes.Buffer{}
	stdout = out
	loadConfig = func() (config.Config, error) {
		return config.Config{
			Version:           config.SupportedUserConfigVersion,
			LocalPath:         "/data/local",
			RemotePath:        "/mnt/remote",
			SessionDateLayout: naming.DefaultDateLayout,
			EphysStreams:      []string{"ap.bin"},
		}, nil
	}
	defer func() {
		stdout = os.Stdout
		loadConfig = config.Load
	}()

	require.NoError(t, show())
	assert.Contains(t, out.String(), "localPath: /data/local\n")
	assert.Contains(t, out.String(), "remotePath: /mnt/remote\n")
	assert.Contains(t, out.String(), "- ap.bin\n")

	loadConfig = func() (config.Config, error) {
		return config.Config{}, errors.NewFriendlyError("The bnd configuration is incomplete.")
	}
	err := show()
	assert.Equal(t, "The bnd configuration is incomplete.", errors.GetPrintableMessage(err))
}

func TestSetupConfigKeepsUnreadableConfig(t *testing.T) {
	readConfigFile = func() (config.Config, error) {
		return config.Config{}, errors.New("yaml: line 1: did not find expected node content")
	}
	wrote := false
	writeConfig = func(config.Config) error {
		wrote = true
		return nil
	}
	defer func() {
		readConfigFile = config.ReadFile
		writeConfig = config.Write
	}()

	err := SetupConfig(config.Config{LocalPath: "/data/local", RemotePath: "/mnt/remote"})
	assert.Error(t, err)
	assert.False(t, wrote)
	assert.Contains(t, errors.GetPrintableMessage(err), "wasn't overwritten")
}
