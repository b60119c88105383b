package sessions

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AtMostafa/bnd/pkg/config"
	"github.com/AtMostafa/bnd/pkg/errors"
	"github.com/AtMostafa/bnd/pkg/naming"
	"github.com/AtMostafa/bnd/pkg/session"
)

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
		folderSize = session.Size
	})
	return cfg, out
}

func TestRun(t *testing.T) {
	cfg, out := setup(t)
	subjectDir := filepath.Join(cfg.LocalPath, "raw", "M017")
	write := func(path string, size int) {
		fullPath := filepath.Join(subjectDir, path)
		require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0755))
		require.NoError(t, os.WriteFile(fullPath, make([]byte, size), 0644))
	}
	write("M017_2023_01_05_10_30/M017_2023_01_05_10_30.txt", 1500)
	write("M017_2023_01_06_09_00/M017_2023_01_06_09_00.txt", 200)
	write("M017_2023_01_06_09_00/notes/day2.md", 300)
	write("M018_2023_01_07_10_30/M018_2023_01_07_10_30.txt", 10)
	write("scratch/tmp.bin", 0)
	require.NoError(t, os.MkdirAll(filepath.Join(subjectDir, ".trash"), 0755))

	require.NoError(t, run("M017"))
	assert.Equal(t, "Sessions of M017 in "+subjectDir+":\n"+
		"  M017_2023_01_05_10_30  1.5 kB\n"+
		"  M017_2023_01_06_09_00  500 B  (latest)\n"+
		"Folders that aren't sessions of M017:\n"+
		"  M018_2023_01_07_10_30  10 B\n"+
		"  scratch  0 B\n", out.String())
}

func TestRunNoSessions(t *testing.T) {
	cfg, out := setup(t)
	subjectDir := filepath.Join(cfg.LocalPath, "raw", "M017")
	require.NoError(t, os.MkdirAll(subjectDir, 0755))
	folderSize = func(string) (int64, error) { return 0, errors.New("unreachable") }

	require.NoError(t, run("M017"))
	assert.Equal(t, "Sessions of M017 in "+subjectDir+":\n  (none)\n", out.String())
}

func TestRunMissingSubject(t *testing.T) {
	setup(t)
	assert.IsType(t, errors.UsageError{}, run("M017"))
	assert.IsType(t, errors.UsageError{}, run(""))
}

func TestSizeOf(t *testing.T) {
	setup(t)
	folderSize = func(string) (int64, error) { return 0, errors.New("permission denied") }
	assert.Equal(t, "?", sizeOf("/data"))

	folderSize = func(string) (int64, error) { return 3 * 1000 * 1000 * 1000, nil }
	assert.Equal(t, "3.0 GB", sizeOf("/data"))
}
