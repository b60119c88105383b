package upload

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AtMostafa/bnd/cmd/util"
	"github.com/AtMostafa/bnd/pkg/config"
	"github.com/AtMostafa/bnd/pkg/errors"
	"github.com/AtMostafa/bnd/pkg/naming"
	"github.com/AtMostafa/bnd/pkg/session"
)

const (
	subject     = "M017"
	sessionName = "M017_2023_01_05_10_30"
)

func setup(t *testing.T) (config.Config, util.SessionArgs, *bytes.Buffer) {
	root := t.TempDir()
	cfg := config.Config{
		LocalPath:         filepath.Join(root, "local"),
		RemotePath:        filepath.Join(root, "remote"),
		SessionDateLayout: naming.DefaultDateLayout,
		EphysStreams:      naming.DefaultProbeStreams,
	}
	require.NoError(t, os.MkdirAll(filepath.Join(cfg.RemotePath, "raw"), 0755))

	dir := filepath.Join(cfg.LocalPath, "raw", subject, sessionName)
	files := map[string]string{
		sessionName + ".txt":           "pycontrol log",
		sessionName + "_MotSen1-X.pca": "1,2,3",
		sessionName + "_MotSen1-Y.pca": "4,5,6",
	}
	for path, contents := range files {
		require.NoError(t, os.MkdirAll(dir, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, path), []byte(contents), 0644))
	}

	out := &bytes.Buffer{}
	stdout = out
	lockDir = root
	t.Cleanup(func() {
		stdout = os.Stdout
		lockDir = os.TempDir()
		loadConfig = config.Load
	})

	args := util.SessionArgs{Path: dir, Subject: subject, Level: session.Raw}
	return cfg, args, out
}

func TestUpload(t *testing.T) {
	cfg, args, out := setup(t)
	sel := session.Selection{Behavior: true}

	require.NoError(t, upload(cfg, args, sel))
	assert.Contains(t, out.String(), "3 files copied (23 B), 0 already on the remote.\n")

	actual, err := os.ReadFile(filepath.Join(cfg.RemotePath, "raw", subject, sessionName, sessionName+".txt"))
	require.NoError(t, err)
	assert.Equal(t, "pycontrol log", string(actual))

	out.Reset()
	require.NoError(t, upload(cfg, args, sel))
	assert.Contains(t, out.String(), "0 files copied (0 B), 3 already on the remote.\n")
}

func TestUploadInvalidSession(t *testing.T) {
	cfg, args, out := setup(t)

	err := upload(cfg, args, session.All)
	var missing errors.MissingDataError
	assert.True(t, errors.As(err, &missing), "unexpected error: %v", err)
	assert.Empty(t, out.String())

	_, err = os.Stat(filepath.Join(cfg.RemotePath, "raw", subject))
	assert.True(t, os.IsNotExist(err))
}

func TestUploadLocked(t *testing.T) {
	cfg, args, _ := setup(t)

	held := flock.New(filepath.Join(lockDir, fmt.Sprintf("bnd-upload-%s.lock", sessionName)))
	locked, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer held.Unlock()

	err = upload(cfg, args, session.Selection{Behavior: true})
	assert.EqualError(t, err, "Another upload of "+sessionName+" is in progress.")
}

func TestRun(t *testing.T) {
	cfg, args, out := setup(t)
	loadConfig = func() (config.Config, error) { return cfg, nil }

	err := run([]string{args.Path, subject}, util.ModalityFlags{IgnoreEphys: true, IgnoreVideos: true})
	assert.NoError(t, err)
	assert.Contains(t, out.String(), "3 files copied")

	err = run([]string{args.Path, subject, "processed"}, util.ModalityFlags{})
	assert.EqualError(t, err, "Sorry, only raw data is supported for now.")
}
