package validate

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
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
)

var (
	passColor = color.New(color.FgGreen, color.Bold)
	failColor = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow)
)

// NewSession creates a new `validate-session` command.
func NewSession() *cobra.Command {
	var flags util.ModalityFlags
	cmd := &cobra.Command{
		Use:   "validate-session <session_path> <subject> [processing_level]",
		Short: "Validate the experimental data of a single session",
		Long: "Check that a session folder follows the naming conventions, and that\n" +
			"the behavioral, ephys and video data are complete.\n\n" +
			"Use the --ignore-* flags to skip a data type.",
		Args: cobra.RangeArgs(2, 3),
		Run: func(_ *cobra.Command, args []string) {
			if err := runSession(args, flags); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
	flags.AddTo(cmd)
	return cmd
}

// NewBatch creates a new `validate-sessions` command.
func NewBatch() *cobra.Command {
	var flags util.ModalityFlags
	cmd := &cobra.Command{
		Use:   "validate-sessions <subject> [processing_level]",
		Short: "Validate the experimental data of every session of a subject",
		Long: "Validate each session folder of a subject, and print the outcome of\n" +
			"every session. A failing session doesn't stop the others from being checked.",
		Args: cobra.RangeArgs(1, 2),
		Run: func(_ *cobra.Command, args []string) {
			if err := runBatch(args, flags); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
	flags.AddTo(cmd)
	return cmd
}

func runSession(args []string, flags util.ModalityFlags) error {
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

	vs, err := validate.New(cfg).ValidateRawSession(sessionArgs.Path, sessionArgs.Subject, sel)
	if err != nil {
		return err
	}

	printValidated(stdout, vs)
	return nil
}

func runBatch(args []string, flags util.ModalityFlags) error {
	subject, level, err := util.ParseSubjectArgs(args)
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

	report, err := validate.New(cfg).ValidateSessions(subject, level, sel)
	if err != nil {
		return err
	}

	printBatchReport(stdout, report, sel)
	return nil
}

func printValidated(w io.Writer, vs validate.ValidatedSession) {
	passColor.Fprintf(w, "%s looking good.\n", vs.Name())
	for _, warning := range vs.Warnings() {
		warnColor.Fprintf(w, "  warning: %s\n", warning)
	}
}

func printBatchReport(w io.Writer, report validate.BatchReport, sel session.Selection) {
	if len(report.Results) == 0 {
		fmt.Fprintf(w, "No sessions found for %s.\n", report.Subject)
		return
	}

	for _, result := range report.Results {
		if result.Passed() {
			passColor.Fprintf(w, "%s looking good.\n", result.Name)
		} else {
			failColor.Fprintf(w, "Problem with %s: %s\n", result.Name, errors.GetPrintableMessage(result.Err))
		}

		for _, verdict := range result.Verdicts {
			for _, warning := range verdict.Warnings {
				warnColor.Fprintf(w, "  warning: %s: %s\n", verdict.Modality, warning)
			}
		}
	}

	fmt.Fprintf(w, "\nChecked %s data of %d sessions: %d passed, %d failed.\n",
		sel, len(report.Results), len(report.Passed()), len(report.Failed()))
}
