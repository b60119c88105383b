package upload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/AtMostafa/bnd/cmd/util"
	"github.com/AtMostafa/bnd/pkg/config"
	"github.com/AtMostafa/bnd/pkg/errors"
	"github.com/AtMostafa/bnd/pkg/session"
	"github.com/AtMostafa/bnd/pkg/transfer"
	"github.com/AtMostafa/bnd/pkg/validate"
)

// Mocked for unit testing.
var (
	stdout     io.Writer = os.Stdout
	loadConfig           = config.Load
	lockDir              = os.TempDir()
)

// New creates a new `upload-session` command.
func New() *cobra.Command {
	var flags util.ModalityFlags
	cmd := &cobra.Command{
		Use:   "upload-session <session_path> <subject> [processing_level]",
		Short: "Validate a session and upload it to the remote data root",
		Long: "Validate the session, and then copy it to the same relative path under\n" +
			"the remote data root. Files that were already uploaded are skipped.\n" +
			"Nothing on the remote is ever overwritten: if a remote file differs from\n" +
			"the local one, the upload stops.",
		Args: cobra.RangeArgs(2, 3),
		Run: func(_ *cobra.Command, args []string) {
			if err := run(args, flags); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
	flags.AddTo(cmd)
	return cmd
}

func run(args []string, flags util.ModalityFlags) error {
	sessionArgs, err := util.ParseSessionArgs(args)
	if err != nil {
		return err
	}

	sel, err := flags.Selection()
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return errors.WithContext(err, "load config")
	}

	return upload(cfg, sessionArgs, sel)
}

func upload(cfg config.Config, args util.SessionArgs, sel session.Selection) error {
	// Two uploads of the same session would race on the remote files.
	lock := flock.New(filepath.Join(lockDir,
		fmt.Sprintf("bnd-upload-%s.lock", filepath.Base(args.Path))))
	locked, err := lock.TryLock()
	if err != nil {
		return errors.WithContext(err, "lock session")
	}
	if !locked {
		return errors.NewFriendlyError("Another upload of %s is in progress.",
			filepath.Base(args.Path))
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			log.WithError(err).Warn("Failed to release upload lock")
		}
	}()

	vs, err := validate.New(cfg).ValidateRawSession(args.Path, args.Subject, sel)
	if err != nil {
		return err
	}

	pp := util.NewProgressPrinter(stdout, fmt.Sprintf("Uploading %s", vs.Name()))
	go pp.Run()
	report, err := transfer.New(cfg).UploadRawSession(vs, sel)
	if err != nil {
		pp.Stop()
		return err
	}
	pp.StopWithPrint(util.ClearProgress)

	fmt.Fprintf(stdout, "Uploaded %s in %s: %d files copied (%s), %d already on the remote.\n",
		report.Session, report.Duration.Round(time.Millisecond), len(report.Copied),
		humanize.Bytes(uint64(report.BytesCopied)), len(report.Skipped))
	return nil
}
