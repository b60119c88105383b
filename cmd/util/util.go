package util

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	log "github.com/sirupsen/logrus"

	"github.com/AtMostafa/bnd/pkg/errors"
)

// Mocked out for unit testing.
var (
	stderr io.Writer = os.Stderr
	exit             = os.Exit
)

// HandleFatalError prints the error and exits. If the error has a friendly
// message, only that message is shown.
func HandleFatalError(err error) {
	log.WithError(err).Debug("Fatal error")
	fmt.Fprintf(stderr, "ERROR: %s\n", errors.GetPrintableMessage(err))
	exit(1)
}

// HandlePanic should be deferred by main. It prints the panic along with a
// stack trace so that crashes can be reported, and exits.
func HandlePanic() {
	if r := recover(); r != nil {
		fmt.Fprintf(stderr, "bnd crashed unexpectedly: %v\n\n%s\n"+
			"Please report this, along with the command that was run.\n",
			r, debug.Stack())
		exit(2)
	}
}
