package util

import (
	"fmt"
	"io"
	"time"
)

// ClearProgress is printed when a progress message should be removed from the
// terminal.
const ClearProgress = "\r\033[2K"

// ProgressPrinter shows that a long running operation is still going by
// printing a dot at a regular interval.
type ProgressPrinter struct {
	out      io.Writer
	msg      string
	interval time.Duration
	stop     chan string
	done     chan struct{}
}

// NewProgressPrinter returns a ProgressPrinter that prints `msg`. It doesn't
// print anything until Run is called.
func NewProgressPrinter(out io.Writer, msg string) *ProgressPrinter {
	return &ProgressPrinter{
		out:      out,
		msg:      msg,
		interval: time.Second,
		stop:     make(chan string),
		done:     make(chan struct{}),
	}
}

// Run prints the progress message until Stop is called. It should be run in a
// goroutine.
func (pp *ProgressPrinter) Run() {
	defer close(pp.done)

	fmt.Fprint(pp.out, pp.msg)
	ticker := time.NewTicker(pp.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fmt.Fprint(pp.out, ".")
		case final := <-pp.stop:
			fmt.Fprint(pp.out, final)
			return
		}
	}
}

// Stop stops the printer and ends the progress line.
func (pp *ProgressPrinter) Stop() {
	pp.StopWithPrint("\n")
}

// StopWithPrint stops the printer, and prints `final`. It blocks until the
// printer has exited.
func (pp *ProgressPrinter) StopWithPrint(final string) {
	pp.stop <- final
	<-pp.done
}
