package validate

import (
	"fmt"
	"strings"

	"github.com/AtMostafa/bnd/pkg/naming"
	"github.com/AtMostafa/bnd/pkg/session"
)

// Verdict is the outcome of validating one modality of a session.
type Verdict struct {
	Modality session.Modality

	// Err is nil if the modality passed.
	Err error

	// Warnings are problems that don't fail validation, such as unexpected
	// extra files.
	Warnings []string
}

// Passed returns whether the modality passed validation.
func (v Verdict) Passed() bool {
	return v.Err == nil
}

// Reason returns why the modality failed, or an empty string if it passed.
func (v Verdict) Reason() string {
	if v.Err == nil {
		return ""
	}
	return v.Err.Error()
}

func (v *Verdict) warn(format string, args ...interface{}) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}

// SessionError is returned when at least one requested modality of a
// session failed validation. It carries the verdicts of every modality that
// was checked.
type SessionError struct {
	Session  string
	Verdicts []Verdict
}

// Failed returns the verdicts of the modalities that failed.
func (err *SessionError) Failed() (failed []Verdict) {
	for _, v := range err.Verdicts {
		if !v.Passed() {
			failed = append(failed, v)
		}
	}
	return failed
}

func (err *SessionError) Error() string {
	failed := err.Failed()
	if len(failed) == 1 {
		return fmt.Sprintf("%s data of %s is invalid: %s",
			failed[0].Modality, err.Session, failed[0].Reason())
	}

	lines := []string{fmt.Sprintf("%d data types of %s are invalid:", len(failed), err.Session)}
	for _, v := range failed {
		lines = append(lines, fmt.Sprintf(" - %s: %s", v.Modality, v.Reason()))
	}
	return strings.Join(lines, "\n")
}

// Unwrap exposes the error of every failing modality, so that errors.As can
// find e.g. a MissingDataError.
func (err *SessionError) Unwrap() []error {
	var errs []error
	for _, v := range err.Failed() {
		errs = append(errs, v.Err)
	}
	return errs
}

// ValidatedSession is proof that a session passed validation. It can only be
// created by the Validator, so anything that requires one, such as an
// upload, can't be handed a session that was never checked.
type ValidatedSession struct {
	path      string
	name      naming.SessionName
	selection session.Selection
	verdicts  []Verdict
}

// Path returns the session's directory.
func (vs ValidatedSession) Path() string {
	return vs.path
}

// Name returns the session's parsed name.
func (vs ValidatedSession) Name() naming.SessionName {
	return vs.name
}

// Selection returns the modalities that were validated.
func (vs ValidatedSession) Selection() session.Selection {
	return vs.selection
}

// Verdicts returns the verdict of each validated modality.
func (vs ValidatedSession) Verdicts() []Verdict {
	return append([]Verdict{}, vs.verdicts...)
}

// Warnings returns the warnings of all validated modalities.
func (vs ValidatedSession) Warnings() (warnings []string) {
	for _, v := range vs.verdicts {
		for _, w := range v.Warnings {
			warnings = append(warnings, fmt.Sprintf("%s: %s", v.Modality, w))
		}
	}
	return warnings
}

// IsZero returns whether the value was created outside of validation.
func (vs ValidatedSession) IsZero() bool {
	return vs.path == ""
}
