package watch

import (
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/AtMostafa/bnd/cmd/util"
	"github.com/AtMostafa/bnd/pkg/config"
	"github.com/AtMostafa/bnd/pkg/errors"
	"github.com/AtMostafa/bnd/pkg/fswatch"
	"github.com/AtMostafa/bnd/pkg/session"
	"github.com/AtMostafa/bnd/pkg/validate"
)

// Mocked for unit testing.
var (
	stdout     io.Writer = os.Stdout
	loadConfig           = config.Load
	clock                = clockwork.NewRealClock()
)

// New creates a new `watch-session` command.
func New() *cobra.Command {
	var flags util.ModalityFlags
	cmd := &cobra.Command{
		Use:   "watch-session <session_path> <subject>",
		Short: "Validate a session every time its files change",
		Long: "Validate a session, and validate it again whenever a file in the\n" +
			"session folder changes. This is useful while a recording is being\n" +
			"copied off the rig. Press Ctrl-C to stop.",
		Args: cobra.ExactArgs(2),
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

	watcher, err := fswatch.Watch(sessionArgs.Path)
	if err != nil {
		return errors.WithContext(err, "watch session")
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			log.WithError(err).Debug("Failed to close file watcher")
		}
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)

	stop := make(chan struct{})
	go func() {
		<-interrupt
		close(stop)
	}()

	fmt.Fprintf(stdout, "Watching %s. Press Ctrl-C to stop.\n", sessionArgs.Path)
	v := validate.New(cfg)
	watchLoop(watcher.Events, stop, func() {
		check(v, sessionArgs, sel)
	})
	return nil
}

// watchLoop runs `check` once, and then again after every event until `stop`
// is closed.
func watchLoop(events <-chan struct{}, stop <-chan struct{}, check func()) {
	check()
	for {
		select {
		case <-stop:
			return
		case _, ok := <-events:
			if !ok {
				return
			}
			check()
		}
	}
}

func check(v *validate.Validator, args util.SessionArgs, sel session.Selection) {
	timestamp := clock.Now().Format("15:04:05")
	vs, err := v.ValidateRawSession(args.Path, args.Subject, sel)
	if err != nil {
		color.New(color.FgRed).Fprintf(stdout, "[%s] %s\n",
			timestamp, errors.GetPrintableMessage(err))
		return
	}

	color.New(color.FgGreen).Fprintf(stdout, "[%s] %s looking good.\n", timestamp, vs.Name())
	for _, warning := range vs.Warnings() {
		color.New(color.FgYellow).Fprintf(stdout, "  warning: %s\n", warning)
	}
}
