package sessions

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/AtMostafa/bnd/cmd/util"
	"github.com/AtMostafa/bnd/pkg/config"
	"github.com/AtMostafa/bnd/pkg/errors"
	"github.com/AtMostafa/bnd/pkg/session"
	"github.com/AtMostafa/bnd/pkg/validate"
)

// Mocked for unit testing.
var (
	stdout     io.Writer = os.Stdout
	loadConfig           = config.Load
	folderSize           = session.Size
)

// New creates a new `list-sessions` command.
func New() *cobra.Command {
	return &cobra.Command{
		Use:   "list-sessions <subject>",
		Short: "List the raw session folders of a subject",
		Long: "List the raw session folders of a subject along with their size.\n" +
			"Folders that don't follow the session naming are listed separately.\n" +
			"The contents of the sessions aren't checked. Use validate-sessions for that.",
		Args: cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			if err := run(args[0]); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
}

func run(subject string) error {
	if subject == "" {
		return errors.NewUsageError("Subject must not be empty.")
	}

	cfg, err := loadConfig()
	if err != nil {
		return errors.WithContext(err, "load config")
	}

	v := validate.New(cfg)
	sessions, err := v.ListSessions(subject)
	if err != nil {
		return err
	}

	latest, hasLatest := sessions.Latest(v.Convention())
	fmt.Fprintf(stdout, "Sessions of %s in %s:\n", subject, sessions.Dir)
	if len(sessions.Valid) == 0 {
		fmt.Fprintln(stdout, "  (none)")
	}
	for _, name := range sessions.Valid {
		line := fmt.Sprintf("  %s  %s", name, sizeOf(filepath.Join(sessions.Dir, name.String())))
		if hasLatest && name == latest {
			color.New(color.Bold).Fprintln(stdout, line+"  (latest)")
		} else {
			fmt.Fprintln(stdout, line)
		}
	}

	if len(sessions.Invalid) != 0 {
		color.New(color.FgYellow).Fprintf(stdout, "Folders that aren't sessions of %s:\n", subject)
		for _, name := range sessions.Invalid {
			fmt.Fprintf(stdout, "  %s  %s\n", name, sizeOf(filepath.Join(sessions.Dir, name)))
		}
	}
	return nil
}

func sizeOf(path string) string {
	size, err := folderSize(path)
	if err != nil {
		log.WithError(err).WithField("path", path).Debug("Failed to get folder size")
		return "?"
	}
	return humanize.Bytes(uint64(size))
}
