package validate

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AtMostafa/bnd/cmd/util"
	"github.com/AtMostafa/bnd/pkg/config"
	"github.com/AtMostafa/bnd/pkg/errors"
	"github.com/AtMostafa/bnd/pkg/naming"
)

const subject = "M017"

func writeFile(t *testing.T, path, contents string) {
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
}

// writeSession writes a session whose behavior and video data are complete.
// It has no ephys data.
func writeSession(t *testing.T, cfg config.Config, name string) string {
	dir := filepath.Join(cfg.LocalPath, "raw", subject, name)
	writeFile(t, filepath.Join(dir, name+".txt"), "pycontrol log")
	writeFile(t, filepath.Join(dir, name+"_MotSen1-X.pca"), "1,2,3")
	writeFile(t, filepath.Join(dir, name+"_MotSen1-Y.pca"), "4,5,6")
	writeFile(t, filepath.Join(dir, naming.PycontrolTaskDir, "task.py"), "import pycontrol")
	writeFile(t, filepath.Join(dir, name+"_cameras", name+"_camera_0.avi"), "frames")
	return dir
}

func setup(t *testing.T) (config.Config, *bytes.Buffer) {
	root := t.TempDir()
	cfg := config.Config{
		LocalPath:         filepath.Join(root, "local"),
		RemotePath:        filepath.Join(root, "remote"),
		SessionDateLayout: naming.DefaultDateLayout,
		EphysStreams:      naming.DefaultProbeStreams,
	}

	out := &bytes.Buffer{}
	color.NoColor = true
	stdout = out
	loadConfig = func() (config.Config, error) { return cfg, nil }
	t.Cleanup(func() {
		stdout = os.Stdout
		loadConfig = config.Load
	})
	return cfg, out
}

func TestRunSession(t *testing.T) {
	cfg, out := setup(t)
	dir := writeSession(t, cfg, "M017_2023_01_05_10_30")

	err := runSession([]string{dir, subject}, util.ModalityFlags{IgnoreEphys: true})
	assert.NoError(t, err)
	assert.Equal(t, "M017_2023_01_05_10_30 looking good.\n", out.String())

	out.Reset()
	err = runSession([]string{dir, subject}, util.ModalityFlags{})
	var missing errors.MissingDataError
	assert.True(t, errors.As(err, &missing), "unexpected error: %v", err)
	assert.Empty(t, out.String())

	err = runSession([]string{dir, "M018"}, util.ModalityFlags{IgnoreEphys: true})
	assert.IsType(t, errors.SubjectMismatchError{}, err)

	err = runSession([]string{dir, subject, "processed"}, util.ModalityFlags{})
	assert.EqualError(t, err, "Sorry, only raw data is supported for now.")

	err = runSession([]string{dir, subject},
		util.ModalityFlags{IgnoreBehavior: true, IgnoreEphys: true, IgnoreVideos: true})
	assert.IsType(t, errors.UsageError{}, err)
}

func TestRunSessionWarnings(t *testing.T) {
	cfg, out := setup(t)
	dir := writeSession(t, cfg, "M017_2023_01_05_10_30")
	require.NoError(t, os.RemoveAll(filepath.Join(dir, naming.PycontrolTaskDir)))

	err := runSession([]string{dir, subject}, util.ModalityFlags{IgnoreEphys: true})
	assert.NoError(t, err)
	assert.Contains(t, out.String(), "M017_2023_01_05_10_30 looking good.\n  warning: behavior: ")
}

func TestRunBatch(t *testing.T) {
	cfg, out := setup(t)
	writeSession(t, cfg, "M017_2023_01_05_10_30")
	broken := writeSession(t, cfg, "M017_2023_01_06_10_30")
	require.NoError(t, os.Remove(filepath.Join(broken, "M017_2023_01_06_10_30.txt")))
	require.NoError(t, os.MkdirAll(filepath.Join(cfg.LocalPath, "raw", subject, "scratch"), 0755))

	err := runBatch([]string{subject}, util.ModalityFlags{IgnoreEphys: true})
	require.NoError(t, err)

	lines := out.String()
	assert.Contains(t, lines, "M017_2023_01_05_10_30 looking good.\n")
	assert.Contains(t, lines, "Problem with M017_2023_01_06_10_30: behavior data of M017_2023_01_06_10_30 is invalid")
	assert.Contains(t, lines, "Problem with scratch: ")
	assert.Contains(t, lines, "Checked behavior, video data of 3 sessions: 1 passed, 2 failed.\n")
}

func TestRunBatchUsage(t *testing.T) {
	setup(t)

	err := runBatch([]string{subject}, util.ModalityFlags{})
	assert.IsType(t, errors.UsageError{}, err)

	err = runBatch([]string{subject, "processed"}, util.ModalityFlags{})
	assert.EqualError(t, err, "Sorry, only raw data is supported for now.")
}

func TestRunBatchEmpty(t *testing.T) {
	cfg, out := setup(t)
	require.NoError(t, os.MkdirAll(filepath.Join(cfg.LocalPath, "raw", subject), 0755))

	assert.NoError(t, runBatch([]string{subject}, util.ModalityFlags{}))
	assert.Equal(t, "No sessions found for M017.\n", out.String())
}
