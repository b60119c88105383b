package errors

import "fmt"

// ErrFileChanged is returned when a copied file doesn't hash to the same value
// as its source, e.g. because the source was modified during the copy.
var ErrFileChanged = New("file contents changed during transfer")

// UsageError represents invalid input from the caller. The requested
// operation never starts.
type UsageError struct {
	Msg string
}

// NewUsageError formats a UsageError.
func NewUsageError(format string, args ...interface{}) error {
	return UsageError{Msg: fmt.Sprintf(format, args...)}
}

func (err UsageError) Error() string {
	return err.Msg
}

// FriendlyMessage implements the interface used by GetPrintableMessage.
func (err UsageError) FriendlyMessage() string {
	return err.Msg
}

// MalformedNameError represents a directory or file whose name doesn't follow
// the naming convention.
type MalformedNameError struct {
	Name   string
	Reason string
}

func (err MalformedNameError) Error() string {
	return fmt.Sprintf("malformed name %q: %s", err.Name, err.Reason)
}

// SubjectMismatchError represents a session whose on-disk subject disagrees
// with the subject declared by the caller.
type SubjectMismatchError struct {
	Name     string
	Expected string
	Actual   string
}

func (err SubjectMismatchError) Error() string {
	return fmt.Sprintf("session %q belongs to subject %q, not %q",
		err.Name, err.Actual, err.Expected)
}

// MissingDataKind classifies a MissingDataError.
type MissingDataKind string

const (
	// Missing means the file or directory doesn't exist.
	Missing MissingDataKind = "missing"

	// Empty means the file exists but has zero bytes.
	Empty MissingDataKind = "empty"

	// Incomplete means that a set of files is only partially present, or
	// has an unexpected count.
	Incomplete MissingDataKind = "incomplete"

	// NotRenamed means a video is still named the way the recording
	// apparatus saved it.
	NotRenamed MissingDataKind = "not renamed"
)

// MissingDataError represents required modality data that is absent or
// incomplete.
type MissingDataError struct {
	Path   string
	Kind   MissingDataKind
	Reason string
}

func (err MissingDataError) Error() string {
	return fmt.Sprintf("%s (%s): %s", err.Reason, err.Kind, err.Path)
}

// TransferConflictError represents a remote file that already exists with
// contents that differ from the local source. It is never resolved
// automatically.
type TransferConflictError struct {
	Local  string
	Remote string
	Reason string
}

func (err TransferConflictError) Error() string {
	return fmt.Sprintf("conflict: %q already exists and differs from %q (%s)",
		err.Remote, err.Local, err.Reason)
}

// TransferIOError represents a failed filesystem operation during a
// transfer.
type TransferIOError struct {
	Op   string
	Path string
	Err  error
}

func (err TransferIOError) Error() string {
	return fmt.Sprintf("%s %q: %s", err.Op, err.Path, err.Err)
}

func (err TransferIOError) Unwrap() error {
	return err.Err
}

// FileNotFound represents when we were unable to access a file
// because the path didn't exist.
type FileNotFound struct {
	Path string
}

func (err FileNotFound) Error() string {
	return fmt.Sprintf("%q does not exist", err.Path)
}

// MissingFieldError represents a missing required field.
type MissingFieldError struct {
	Field string
}

func (err MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", err.Field)
}
