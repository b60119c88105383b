package validate

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/AtMostafa/bnd/pkg/errors"
	"github.com/AtMostafa/bnd/pkg/naming"
	"github.com/AtMostafa/bnd/pkg/session"
)

// videoValidator checks that the camera recordings were renamed and moved
// into the session's `<session>_cameras` folder.
type videoValidator struct{}

func (videoValidator) Modality() session.Modality {
	return session.Video
}

func (videoValidator) Validate(sessionDir string, name naming.SessionName) (verdict Verdict) {
	verdict.Modality = session.Video
	videoDir := filepath.Join(sessionDir, naming.VideoDirName(name))

	stray, err := findStrayVideo(sessionDir, videoDir)
	if err != nil {
		verdict.Err = errors.WithContext(err, "search for videos")
		return verdict
	}

	if stray != "" {
		verdict.Err = errors.MissingDataError{
			Path:   stray,
			Kind:   errors.NotRenamed,
			Reason: "video is outside " + naming.VideoDirName(name) + ", run the renaming step first",
		}
		return verdict
	}

	exists, err := afero.DirExists(fs, videoDir)
	if err != nil {
		verdict.Err = errors.WithContext(err, "stat video folder")
		return verdict
	}

	if !exists {
		verdict.Err = errors.MissingDataError{
			Path:   videoDir,
			Kind:   errors.Missing,
			Reason: "video folder not found",
		}
		return verdict
	}

	entries, err := afero.ReadDir(fs, videoDir)
	if err != nil {
		verdict.Err = errors.WithContext(err, "list video folder")
		return verdict
	}

	var videos int
	for _, fi := range entries {
		if naming.IsHidden(fi.Name()) {
			continue
		}

		if fi.IsDir() || !strings.EqualFold(filepath.Ext(fi.Name()), naming.VideoExtension) {
			verdict.warn("unexpected entry in %s: %s", videoDir, fi.Name())
			continue
		}

		path := filepath.Join(videoDir, fi.Name())
		if naming.IsRawVideoName(fi.Name()) {
			verdict.Err = errors.MissingDataError{
				Path:   path,
				Kind:   errors.NotRenamed,
				Reason: "video still has the name given by the camera software",
			}
			return verdict
		}

		if _, ok := naming.ParseVideoFileName(name, fi.Name()); !ok {
			verdict.Err = errors.MalformedNameError{
				Name:   fi.Name(),
				Reason: "expected a name like " + naming.VideoFileName(name, 0),
			}
			return verdict
		}

		if err := checkDataFile(path); err != nil {
			verdict.Err = err
			return verdict
		}
		videos++
	}

	if videos == 0 {
		verdict.Err = errors.MissingDataError{
			Path:   videoDir,
			Kind:   errors.Missing,
			Reason: "no video files found",
		}
	}
	return verdict
}

// findStrayVideo returns the first video in the session that isn't in the
// video folder, or an empty string if there isn't any.
func findStrayVideo(sessionDir, videoDir string) (stray string, err error) {
	err = afero.Walk(fs, sessionDir, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if fi.IsDir() {
			if path == videoDir || (path != sessionDir && naming.IsHidden(fi.Name())) {
				return filepath.SkipDir
			}
			return nil
		}

		if stray == "" && strings.EqualFold(filepath.Ext(path), naming.VideoExtension) {
			stray = path
		}
		return nil
	})
	return stray, err
}
