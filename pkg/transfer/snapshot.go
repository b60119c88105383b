package transfer

import (
	"crypto/sha512"
	"encoding/base64"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/afero"

	"github.com/AtMostafa/bnd/pkg/errors"
	"github.com/AtMostafa/bnd/pkg/naming"
	"github.com/AtMostafa/bnd/pkg/session"
)

// Mocked out for unit testing.
var fs = afero.NewOsFs()

// FileAttributes contains the metadata that's preserved by an upload.
type FileAttributes struct {
	// ContentsHash is the sha512 hash of the contents of the file.
	ContentsHash string

	// Mode is the file mode of the file.
	Mode os.FileMode

	// ModTime is the time of the last file modification.
	ModTime time.Time

	Size int64
}

// A SourceFile is a file in a local session.
type SourceFile struct {
	// ContentsPath is the absolute path to the local file.
	ContentsPath string

	// SessionPath is the path of the file relative to the session
	// directory. The file is uploaded to the same relative path.
	SessionPath string

	FileAttributes
}

// LocalSnapshot is a collection of the source files of a session, keyed by
// their SessionPath.
type LocalSnapshot map[string]SourceFile

// Paths returns the SessionPaths in the snapshot in sorted order.
func (local LocalSnapshot) Paths() []string {
	var paths []string
	for path := range local {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// SnapshotSession returns the files of the selected modalities of the
// session at `sessionDir`. Hidden files and directories are skipped.
func SnapshotSession(sessionDir string, name naming.SessionName, sel session.Selection) (
	LocalSnapshot, error) {
	files := LocalSnapshot{}
	for _, modality := range sel.Modalities() {
		roots, err := modalityRoots(sessionDir, name, modality)
		if err != nil {
			return nil, errors.WithContext(err, "list "+modality.String()+" data")
		}

		for _, root := range roots {
			if err := snapshotPath(sessionDir, root, files); err != nil {
				return nil, errors.WithContext(err, "snapshot "+root)
			}
		}
	}
	return files, nil
}

// modalityRoots returns the paths, relative to the session directory, that
// hold a modality's data.
func modalityRoots(sessionDir string, name naming.SessionName, modality session.Modality) (
	[]string, error) {
	if modality == session.Video {
		return []string{naming.ModalitySubpath(modality, name)}, nil
	}

	entries, err := afero.ReadDir(fs, filepath.Join(sessionDir, naming.ModalitySubpath(modality, name)))
	if err != nil {
		return nil, err
	}

	var roots []string
	for _, fi := range entries {
		if naming.IsHidden(fi.Name()) {
			continue
		}

		switch modality {
		case session.Behavior:
			if (!fi.IsDir() && naming.IsBehaviorFile(fi.Name())) ||
				(fi.IsDir() && fi.Name() == naming.PycontrolTaskDir) {
				roots = append(roots, fi.Name())
			}
		case session.Ephys:
			if fi.IsDir() && naming.EphysRecordingPattern.MatchString(fi.Name()) {
				roots = append(roots, fi.Name())
			}
		}
	}
	return roots, nil
}

func snapshotPath(sessionDir, root string, files LocalSnapshot) error {
	return afero.Walk(fs, filepath.Join(sessionDir, root), func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if naming.IsHidden(fi.Name()) {
			if fi.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if fi.IsDir() {
			return nil
		}

		// Links are uploaded as the file they point to. Anything else that
		// isn't a regular file can't be mirrored, so it fails the upload
		// rather than being left out of it.
		if fi.Mode()&os.ModeSymlink != 0 {
			target, err := fs.Stat(path)
			if err != nil {
				return errors.TransferIOError{Op: "resolve link", Path: path, Err: err}
			}
			fi = target
		}

		if !fi.Mode().IsRegular() {
			return errors.TransferIOError{Op: "snapshot", Path: path,
				Err: errors.New("not a regular file")}
		}

		sessionPath, err := filepath.Rel(sessionDir, path)
		if err != nil {
			return errors.WithContext(err, "normalize path")
		}

		contentsHash, err := HashFile(path)
		if err != nil {
			return errors.WithContext(err, "hash "+sessionPath)
		}

		files[sessionPath] = SourceFile{
			ContentsPath: path,
			SessionPath:  sessionPath,
			FileAttributes: FileAttributes{
				ContentsHash: contentsHash,
				Mode:         fi.Mode(),
				ModTime:      fi.ModTime(),
				Size:         fi.Size(),
			},
		}
		return nil
	})
}

// HashFile returns the sha512 hash of the file at the given path.
func HashFile(path string) (string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return "", errors.WithContext(err, "open")
	}
	defer f.Close()

	hasher := sha512.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", errors.WithContext(err, "read")
	}

	return base64.StdEncoding.EncodeToString(hasher.Sum(nil)), nil
}
