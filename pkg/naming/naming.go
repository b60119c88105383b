// Package naming derives and parses the names the lab uses for session
// directories and the files inside them. Everything in this package is pure:
// it never touches the filesystem.
package naming

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/AtMostafa/bnd/pkg/errors"
	"github.com/AtMostafa/bnd/pkg/session"
)

const (
	// DefaultDateLayout is the lab's session timestamp, YYYY_MM_DD_HH_MM.
	DefaultDateLayout = "2006_01_02_15_04"

	// PycontrolTaskDir holds the python task definition run by pycontrol.
	PycontrolTaskDir = "run_task-task_files"

	// VideoExtension is the extension of the camera recordings.
	VideoExtension = ".avi"

	videoDirSuffix = "_cameras"
)

// DefaultProbeStreams are the SpikeGLX files every probe is expected to
// write for each trigger.
var DefaultProbeStreams = []string{"ap.bin", "ap.meta", "lf.bin", "lf.meta"}

// Default is the convention used when nothing else is configured.
var Default = Convention{
	DateLayout:   DefaultDateLayout,
	ProbeStreams: DefaultProbeStreams,
}

var (
	// EphysRecordingPattern matches SpikeGLX recording folders, which end in
	// `_g<N>`.
	EphysRecordingPattern = regexp.MustCompile(`_g(\d+)$`)

	probeDirPattern   = regexp.MustCompile(`_imec(\d+)$`)
	rawVideoPattern   = regexp.MustCompile(`^[Cc]amera_?(\d+)\.avi$`)
	triggerPattern    = regexp.MustCompile(`_t(\d+)\.imec\d+\.`)
	cameraIndexSuffix = regexp.MustCompile(`^_camera_(\d+)\.avi$`)
)

// Convention holds the parts of the naming rules that vary between setups.
type Convention struct {
	// DateLayout is the Go time layout of the session label.
	DateLayout string

	// ProbeStreams are the stream file suffixes required in every probe
	// folder, e.g. "ap.bin".
	ProbeStreams []string
}

// SessionName identifies a session by its subject and its label.
type SessionName struct {
	Subject string
	Label   string
}

// String returns the session's directory name.
func (name SessionName) String() string {
	return name.Subject + "_" + name.Label
}

// ExpectedSessionDirName returns the directory name of the session recorded
// for `subject` with the given label.
func (c Convention) ExpectedSessionDirName(subject, label string) (string, error) {
	name := SessionName{Subject: subject, Label: label}
	if subject == "" {
		return "", errors.MalformedNameError{Name: name.String(), Reason: "empty subject name"}
	}
	if err := c.checkLabel(name.String(), label); err != nil {
		return "", err
	}
	return name.String(), nil
}

// ParseSessionDirName splits a session directory name into its subject and
// label. The label is made of the trailing tokens that the date layout
// accounts for, so subject names may themselves contain underscores.
func (c Convention) ParseSessionDirName(name string) (SessionName, error) {
	tokens := strings.Split(name, "_")
	labelTokens := strings.Count(c.DateLayout, "_") + 1
	if len(tokens) <= labelTokens {
		return SessionName{}, errors.MalformedNameError{
			Name: name,
			Reason: fmt.Sprintf("expected <subject>_<%s>, found %d underscore-separated tokens",
				c.DateLayout, len(tokens)),
		}
	}

	split := len(tokens) - labelTokens
	parsed := SessionName{
		Subject: strings.Join(tokens[:split], "_"),
		Label:   strings.Join(tokens[split:], "_"),
	}
	if parsed.Subject == "" {
		return SessionName{}, errors.MalformedNameError{Name: name, Reason: "empty subject name"}
	}
	if err := c.checkLabel(name, parsed.Label); err != nil {
		return SessionName{}, err
	}
	return parsed, nil
}

// SessionTime returns the time encoded in the session's label.
func (c Convention) SessionTime(name SessionName) (time.Time, error) {
	t, err := time.Parse(c.DateLayout, name.Label)
	if err != nil {
		return time.Time{}, errors.MalformedNameError{
			Name:   name.String(),
			Reason: fmt.Sprintf("%q doesn't match the expected format %s", name.Label, c.DateLayout),
		}
	}
	return t, nil
}

// checkLabel parses the label and formats it again, so that labels like
// `2023_1_5_10_30` are rejected even though time.Parse accepts them.
func (c Convention) checkLabel(name, label string) error {
	t, err := time.Parse(c.DateLayout, label)
	if err != nil {
		return errors.MalformedNameError{
			Name:   name,
			Reason: fmt.Sprintf("%q doesn't match the expected format %s", label, c.DateLayout),
		}
	}

	if formatted := t.Format(c.DateLayout); formatted != label {
		return errors.MalformedNameError{
			Name:   name,
			Reason: fmt.Sprintf("%q doesn't match the expected format %s", label, formatted),
		}
	}
	return nil
}

// ModalitySubpath returns where a modality's data lives, relative to the
// session directory.
func ModalitySubpath(modality session.Modality, name SessionName) string {
	switch modality {
	case session.Video:
		return VideoDirName(name)
	default:
		return "."
	}
}

// VideoDirName is the folder holding a session's camera recordings.
func VideoDirName(name SessionName) string {
	return name.String() + videoDirSuffix
}

// VideoFileName is the name of camera `camera`'s recording after renaming.
func VideoFileName(name SessionName, camera int) string {
	return fmt.Sprintf("%s_camera_%d%s", name, camera, VideoExtension)
}

// ParseVideoFileName returns the camera index of a renamed video. ok is false
// if `filename` isn't named after `name`.
func ParseVideoFileName(name SessionName, filename string) (camera int, ok bool) {
	if !strings.HasPrefix(filename, name.String()) {
		return 0, false
	}

	match := cameraIndexSuffix.FindStringSubmatch(strings.TrimPrefix(filename, name.String()))
	if match == nil {
		return 0, false
	}

	camera, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return camera, true
}

// IsRawVideoName returns whether `filename` is still named the way the
// camera software saves it, e.g. `Camera_0.avi`.
func IsRawVideoName(filename string) bool {
	return rawVideoPattern.MatchString(filename)
}

// EphysRecordingDirName is the SpikeGLX folder of the recording with gate
// index `gate`.
func EphysRecordingDirName(name SessionName, gate string) string {
	return fmt.Sprintf("%s_g%s", name, gate)
}

// EphysGate extracts the gate index from a recording folder name.
func EphysGate(dirName string) (string, bool) {
	match := EphysRecordingPattern.FindStringSubmatch(dirName)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// ProbeDirName is the folder holding probe `probe`'s streams.
func ProbeDirName(recording string, probe string) string {
	return fmt.Sprintf("%s_imec%s", recording, probe)
}

// ProbeIndex extracts the probe index from a probe folder name.
func ProbeIndex(dirName string) (string, bool) {
	match := probeDirPattern.FindStringSubmatch(dirName)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// ProbeStreamFileName is the name of a SpikeGLX stream file, e.g.
// `M017_2023_01_05_10_30_g0_t0.imec0.ap.bin`.
func ProbeStreamFileName(recording, trigger, probe, stream string) string {
	return fmt.Sprintf("%s_t%s.imec%s.%s", recording, trigger, probe, stream)
}

// StreamTrigger extracts the trigger index from a stream file name.
func StreamTrigger(filename string) (string, bool) {
	match := triggerPattern.FindStringSubmatch(filename)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// BehaviorExtensions lists the pycontrol output extensions in a stable
// order.
var BehaviorExtensions = []string{".pca", ".txt"}

// BehaviorFileCount is the number of pycontrol files expected per extension.
var BehaviorFileCount = map[string]int{
	".pca": 2,
	".txt": 1,
}

var behaviorEndings = map[string]string{
	".pca": `_MotSen\d-(X|Y)\.pca$`,
	".txt": `\.txt$`,
}

// BehaviorFilePattern returns the pattern pycontrol files with extension
// `ext` must match for the session. It returns nil for other extensions.
func BehaviorFilePattern(name SessionName, ext string) *regexp.Regexp {
	ending, ok := behaviorEndings[ext]
	if !ok {
		return nil
	}
	return regexp.MustCompile("^" + regexp.QuoteMeta(name.String()) + ".*" + ending)
}

// IsBehaviorFile returns whether the file at the session root is pycontrol
// output, judged by its extension.
func IsBehaviorFile(filename string) bool {
	_, ok := BehaviorFileCount[filepath.Ext(filename)]
	return ok
}

// IsHidden returns whether the file is hidden, e.g. `.DS_Store`.
func IsHidden(filename string) bool {
	return strings.HasPrefix(filename, ".")
}
