package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AtMostafa/bnd/pkg/errors"
)

func TestValidate(t *testing.T) {
	valid := Config{
		LocalPath:         "/data/local",
		RemotePath:        "/mnt/remote",
		SessionDateLayout: "2006_01_02_15_04",
		EphysStreams:      []string{"ap.bin"},
	}

	tests := []struct {
		name     string
		mutate   func(*Config)
		expError string
	}{
		{
			name:   "Valid",
			mutate: func(*Config) {},
		},
		{
			name:     "MissingRemote",
			mutate:   func(cfg *Config) { cfg.RemotePath = "" },
			expError: "missing required field: remotePath",
		},
		{
			name:     "MissingLayout",
			mutate:   func(cfg *Config) { cfg.SessionDateLayout = "" },
			expError: "missing required field: sessionDateLayout",
		},
		{
			name:     "NoStreams",
			mutate:   func(cfg *Config) { cfg.EphysStreams = nil },
			expError: "ephysStreams",
		},
		{
			name:     "EmptyStream",
			mutate:   func(cfg *Config) { cfg.EphysStreams = []string{""} },
			expError: "ephysStreams[0]",
		},
		{
			name: "SameRoots",
			mutate: func(cfg *Config) {
				cfg.RemotePath = "/data/local/"
			},
			expError: "The remote root must be a different location.",
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			cfg := valid
			cfg.EphysStreams = append([]string{}, valid.EphysStreams...)
			test.mutate(&cfg)

			err := Validate(cfg)
			if test.expError == "" {
				assert.NoError(t, err)
				return
			}

			if assert.Error(t, err) {
				assert.Contains(t, errors.GetPrintableMessage(err), test.expError)
			}
		})
	}
}

func TestFlagName(t *testing.T) {
	assert.Equal(t, "local-path", flagName("localPath"))
	assert.Equal(t, "remote-path", flagName("remotePath"))
	assert.Equal(t, "version", flagName("version"))
}
