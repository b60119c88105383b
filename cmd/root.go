package cmd

import (
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	configCmd "github.com/AtMostafa/bnd/cmd/config"
	"github.com/AtMostafa/bnd/cmd/sessions"
	"github.com/AtMostafa/bnd/cmd/upload"
	"github.com/AtMostafa/bnd/cmd/util"
	validateCmd "github.com/AtMostafa/bnd/cmd/validate"
	"github.com/AtMostafa/bnd/cmd/version"
	"github.com/AtMostafa/bnd/cmd/watch"
)

// verboseLogKey is the environment variable used to enable verbose logging.
// When it's set to `true`, Debug events are logged, rather than just Info and
// above.
const verboseLogKey = "BND_LOG_VERBOSE"

// envFile is loaded into the environment before any command runs. Variables
// that are already set aren't overridden.
const envFile = ".env"

// Execute runs the main CLI process.
func Execute() {
	if err := newRootCommand().Execute(); err != nil {
		util.HandleFatalError(err)
	}
}

func newRootCommand() *cobra.Command {
	var verbose bool
	rootCmd := &cobra.Command{
		Use:   "bnd",
		Short: "Validate experimental sessions and upload them to the remote data root",
		Long: "bnd checks that recording sessions follow the lab's naming and\n" +
			"completeness conventions, and uploads validated sessions to the\n" +
			"remote data root without overwriting anything.",
		SilenceUsage: true,

		// The call to rootCmd.Execute prints the error, so we silence errors
		// here to avoid double printing.
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			setupLogging(verbose)
			loadEnvFile(envFile)
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Log debug messages. Can also be enabled with "+verboseLogKey+"=true.")

	rootCmd.AddCommand(
		configCmd.New(),
		sessions.New(),
		upload.New(),
		validateCmd.NewSession(),
		validateCmd.NewBatch(),
		version.New(),
		watch.New(),
	)
	return rootCmd
}

func setupLogging(verbose bool) {
	if verbose || os.Getenv(verboseLogKey) == "true" {
		log.SetLevel(log.DebugLevel)
	}
}

func loadEnvFile(path string) {
	if err := godotenv.Load(path); err != nil {
		if os.IsNotExist(err) {
			return
		}
		log.WithError(err).WithField("path", path).Warn("Failed to load environment file")
		return
	}
	log.WithField("path", path).Debug("Loaded environment file")
}
