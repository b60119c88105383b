package transfer

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/AtMostafa/bnd/pkg/config"
	"github.com/AtMostafa/bnd/pkg/errors"
	"github.com/AtMostafa/bnd/pkg/session"
	"github.com/AtMostafa/bnd/pkg/validate"
)

// Report summarizes an upload.
type Report struct {
	// RunID identifies the upload in the logs.
	RunID   string
	Session string

	// Copied and Skipped are the session paths of the files that were
	// uploaded, and of the files that were already on the remote.
	Copied  []string
	Skipped []string

	BytesCopied int64
	Started     time.Time
	Duration    time.Duration
}

// Engine uploads sessions from the local data root to the remote data root.
type Engine struct {
	localPath  string
	remotePath string
	clock      clockwork.Clock
}

// New creates an Engine for the data roots in `cfg`.
func New(cfg config.Config) *Engine {
	return &Engine{
		localPath:  cfg.LocalPath,
		remotePath: cfg.RemotePath,
		clock:      clockwork.NewRealClock(),
	}
}

// UploadRawSession copies the selected modalities of a validated session to
// the same relative path under the remote data root. Files that are already
// on the remote with the same contents are skipped. The first failure aborts
// the upload.
func (e *Engine) UploadRawSession(vs validate.ValidatedSession, sel session.Selection) (Report, error) {
	if vs.IsZero() {
		return Report{}, errors.NewUsageError("Sessions must be validated before they're uploaded.")
	}

	if err := sel.Validate(); err != nil {
		return Report{}, err
	}

	if !vs.Selection().Covers(sel) {
		return Report{}, errors.NewUsageError(
			"Cannot upload %s data of %s because only %s data was validated.",
			sel, vs.Name(), vs.Selection())
	}

	rel, err := e.relativeSessionPath(vs)
	if err != nil {
		return Report{}, err
	}

	for _, dir := range []string{e.remotePath, filepath.Join(e.remotePath, string(session.Raw))} {
		if err := checkRemoteDir(dir); err != nil {
			return Report{}, err
		}
	}

	report := Report{
		RunID:   uuid.New().String(),
		Session: vs.Name().String(),
		Started: e.clock.Now(),
	}
	logger := log.WithFields(log.Fields{
		"run":     report.RunID,
		"session": report.Session,
	})

	files, err := SnapshotSession(vs.Path(), vs.Name(), sel)
	if err != nil {
		return report, errors.WithContext(err, "snapshot session")
	}

	remoteSessionDir := filepath.Join(e.remotePath, rel)
	for _, path := range files.Paths() {
		f := files[path]
		copied, err := mirrorFile(f, filepath.Join(remoteSessionDir, path))
		if err != nil {
			logger.WithError(err).WithField("path", path).Debug("Failed to upload file")
			report.Duration = e.clock.Now().Sub(report.Started)
			return report, err
		}

		if copied {
			logger.WithField("path", path).Debug("Copied file")
			report.Copied = append(report.Copied, path)
			report.BytesCopied += f.Size
		} else {
			logger.WithField("path", path).Debug("Skipped identical file")
			report.Skipped = append(report.Skipped, path)
		}
	}

	report.Duration = e.clock.Now().Sub(report.Started)
	logger.WithFields(log.Fields{
		"copied":   len(report.Copied),
		"skipped":  len(report.Skipped),
		"duration": report.Duration,
	}).Info("Uploaded session")
	return report, nil
}

// relativeSessionPath returns the path of the session relative to the local
// data root, which must be `raw/<subject>/<session>`.
func (e *Engine) relativeSessionPath(vs validate.ValidatedSession) (string, error) {
	expected := filepath.Join(string(session.Raw), vs.Name().Subject, vs.Name().String())
	rel, err := filepath.Rel(e.localPath, vs.Path())
	if err != nil || rel != expected {
		return "", errors.NewUsageError("Session %q must be at %s under the local data root %q.",
			vs.Path(), expected, e.localPath)
	}
	return rel, nil
}

// checkRemoteDir guards against uploading into an unmounted network share.
func checkRemoteDir(dir string) error {
	fi, err := fs.Stat(dir)
	if err != nil {
		return errors.TransferIOError{Op: "stat remote", Path: dir, Err: err}
	}

	if !fi.IsDir() {
		return errors.TransferIOError{Op: "stat remote", Path: dir, Err: errors.New("not a directory")}
	}
	return nil
}

// mirrorFile makes sure `dst` has the same contents as `f`. It returns
// whether the file was copied.
func mirrorFile(f SourceFile, dst string) (bool, error) {
	fi, err := fs.Stat(dst)
	switch {
	case os.IsNotExist(err):
		return true, copyFile(f, dst)
	case err != nil:
		return false, errors.TransferIOError{Op: "stat", Path: dst, Err: err}
	case fi.IsDir():
		return false, errors.TransferConflictError{
			Local: f.ContentsPath, Remote: dst, Reason: "the remote path is a directory",
		}
	case fi.Size() != f.Size:
		return false, errors.TransferConflictError{
			Local: f.ContentsPath, Remote: dst, Reason: "sizes differ",
		}
	}

	remoteHash, err := HashFile(dst)
	if err != nil {
		return false, errors.TransferIOError{Op: "hash", Path: dst, Err: err}
	}

	if remoteHash != f.ContentsHash {
		return false, errors.TransferConflictError{
			Local: f.ContentsPath, Remote: dst, Reason: "contents differ",
		}
	}
	return false, nil
}

// copyFile writes `f` to a temporary file next to `dst`, and renames it into
// place once its contents are verified.
func copyFile(f SourceFile, dst string) (err error) {
	dir := filepath.Dir(dst)
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return errors.TransferIOError{Op: "create directory", Path: dir, Err: err}
	}

	tmp, err := afero.TempFile(fs, dir, ".bnd-upload-*")
	if err != nil {
		return errors.TransferIOError{Op: "create temporary file", Path: dir, Err: err}
	}
	tmpPath := tmp.Name()

	defer func() {
		if err != nil {
			tmp.Close()
			if removeErr := fs.Remove(tmpPath); removeErr != nil && !os.IsNotExist(removeErr) {
				log.WithError(removeErr).WithField("path", tmpPath).Warn(
					"Failed to clean up temporary upload file")
			}
		}
	}()

	src, err := fs.Open(f.ContentsPath)
	if err != nil {
		return errors.TransferIOError{Op: "open", Path: f.ContentsPath, Err: err}
	}
	defer src.Close()

	if _, err := io.Copy(tmp, src); err != nil {
		return errors.TransferIOError{Op: "copy", Path: f.ContentsPath, Err: err}
	}

	if err := tmp.Close(); err != nil {
		return errors.TransferIOError{Op: "write", Path: tmpPath, Err: err}
	}

	copiedHash, err := HashFile(tmpPath)
	if err != nil {
		return errors.TransferIOError{Op: "hash", Path: tmpPath, Err: err}
	}

	if copiedHash != f.ContentsHash {
		return errors.TransferIOError{Op: "verify", Path: f.ContentsPath, Err: errors.ErrFileChanged}
	}

	if err := fs.Chmod(tmpPath, f.Mode); err != nil {
		return errors.TransferIOError{Op: "set file mode", Path: tmpPath, Err: err}
	}

	// Change the modification time as the last step so that it doesn't get
	// reset by other file operations.
	if err := fs.Chtimes(tmpPath, f.ModTime, f.ModTime); err != nil {
		return errors.TransferIOError{Op: "set file modtime", Path: tmpPath, Err: err}
	}

	if err := fs.Rename(tmpPath, dst); err != nil {
		return errors.TransferIOError{Op: "rename", Path: dst, Err: err}
	}
	return nil
}
