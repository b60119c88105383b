package config

import (
	"os"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
)

// Mocked out for unit testing.
var (
	fs            = afero.NewOsFs()
	homedirExpand = homedir.Expand
	lookupEnv     = os.LookupEnv
)
