package session

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/AtMostafa/bnd/pkg/errors"
)

// Mocked out for unit testing.
var fs = afero.NewOsFs()

// ProcessingLevel distinguishes raw recordings from processed data trees.
type ProcessingLevel string

const (
	// Raw is data as written by the recording apparatus.
	Raw ProcessingLevel = "raw"

	// Processed is data derived from raw recordings. It's a known level, but
	// no operation supports it yet.
	Processed ProcessingLevel = "processed"
)

// ParseProcessingLevel returns the processing level named by `s`. Only raw
// data is supported.
func ParseProcessingLevel(s string) (ProcessingLevel, error) {
	switch ProcessingLevel(s) {
	case Raw:
		return Raw, nil
	case Processed:
		return "", errors.NewUsageError("Sorry, only raw data is supported for now.")
	default:
		return "", errors.NewUsageError(
			"Invalid value for processing_level: %q. Expected one of raw, processed.", s)
	}
}

// Modality is one kind of data recorded during a session.
type Modality int

const (
	// Behavior is the pycontrol behavioral data.
	Behavior Modality = iota

	// Ephys is the SpikeGLX electrophysiology data.
	Ephys

	// Video is the camera recordings.
	Video
)

// AllModalities lists every modality in the order they're checked.
var AllModalities = []Modality{Behavior, Ephys, Video}

func (m Modality) String() string {
	switch m {
	case Behavior:
		return "behavior"
	case Ephys:
		return "ephys"
	case Video:
		return "video"
	default:
		return "unknown"
	}
}

// Selection is the set of modalities an operation applies to.
type Selection struct {
	Behavior bool
	Ephys    bool
	Video    bool
}

// All selects every modality.
var All = Selection{Behavior: true, Ephys: true, Video: true}

// Validate returns a UsageError if no modality is selected.
func (sel Selection) Validate() error {
	if !sel.Behavior && !sel.Ephys && !sel.Video {
		return errors.NewUsageError("At least one data type must be checked.")
	}
	return nil
}

// Contains returns whether `m` is selected.
func (sel Selection) Contains(m Modality) bool {
	switch m {
	case Behavior:
		return sel.Behavior
	case Ephys:
		return sel.Ephys
	case Video:
		return sel.Video
	}
	return false
}

// Modalities returns the selected modalities in check order.
func (sel Selection) Modalities() (modalities []Modality) {
	for _, m := range AllModalities {
		if sel.Contains(m) {
			modalities = append(modalities, m)
		}
	}
	return modalities
}

// Covers returns whether every modality selected in `other` is also selected
// in `sel`.
func (sel Selection) Covers(other Selection) bool {
	for _, m := range other.Modalities() {
		if !sel.Contains(m) {
			return false
		}
	}
	return true
}

func (sel Selection) String() string {
	var names []string
	for _, m := range sel.Modalities() {
		names = append(names, m.String())
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}

// SubjectPath returns the directory holding all sessions of `subject` at the
// given processing level, e.g. `<root>/raw/M017`.
func SubjectPath(root string, level ProcessingLevel, subject string) string {
	return filepath.Join(root, string(level), subject)
}

// CheckDir returns a UsageError unless `path` exists and is a directory.
func CheckDir(path, description string) error {
	fi, err := fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewUsageError("%s %q does not exist.", description, path)
		}
		return errors.WithContext(err, "stat")
	}

	if !fi.IsDir() {
		return errors.NewUsageError("%s %q must be a directory.", description, path)
	}
	return nil
}

// Size returns the total size in bytes of the regular files under `path`.
func Size(path string) (int64, error) {
	var total int64
	err := afero.Walk(fs, path, func(_ string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if fi.Mode().IsRegular() {
			total += fi.Size()
		}
		return nil
	})
	if err != nil {
		return 0, errors.WithContext(err, "walk")
	}
	return total, nil
}
