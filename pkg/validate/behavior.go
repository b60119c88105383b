package validate

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/AtMostafa/bnd/pkg/errors"
	"github.com/AtMostafa/bnd/pkg/naming"
	"github.com/AtMostafa/bnd/pkg/session"
)

// behaviorValidator checks the pycontrol output at the session root.
type behaviorValidator struct{}

func (behaviorValidator) Modality() session.Modality {
	return session.Behavior
}

func (behaviorValidator) Validate(sessionDir string, name naming.SessionName) (verdict Verdict) {
	verdict.Modality = session.Behavior

	entries, err := afero.ReadDir(fs, sessionDir)
	if err != nil {
		verdict.Err = errors.WithContext(err, "list session")
		return verdict
	}

	byExt := map[string][]os.FileInfo{}
	for _, fi := range entries {
		if fi.IsDir() || naming.IsHidden(fi.Name()) || !naming.IsBehaviorFile(fi.Name()) {
			continue
		}

		ext := filepath.Ext(fi.Name())
		if !naming.BehaviorFilePattern(name, ext).MatchString(fi.Name()) {
			verdict.Err = errors.MalformedNameError{
				Name:   fi.Name(),
				Reason: fmt.Sprintf("does not match the expected pattern for pycontrol %s files of %s", ext, name),
			}
			return verdict
		}
		byExt[ext] = append(byExt[ext], fi)
	}

	for _, ext := range naming.BehaviorExtensions {
		expected, found := naming.BehaviorFileCount[ext], byExt[ext]
		if len(found) != expected {
			kind := errors.Incomplete
			if len(found) == 0 {
				kind = errors.Missing
			}
			verdict.Err = errors.MissingDataError{
				Path: sessionDir,
				Kind: kind,
				Reason: fmt.Sprintf("expected %d pycontrol %s file(s), found %d",
					expected, ext, len(found)),
			}
			return verdict
		}

		for _, fi := range found {
			if err := checkDataFile(filepath.Join(sessionDir, fi.Name())); err != nil {
				verdict.Err = err
				return verdict
			}
		}
	}

	verdict.Err = validateTaskDir(sessionDir, &verdict)
	return verdict
}

// validateTaskDir checks that the pycontrol task folder, if present, holds
// exactly one task definition.
func validateTaskDir(sessionDir string, verdict *Verdict) error {
	taskDir := filepath.Join(sessionDir, naming.PycontrolTaskDir)
	exists, err := afero.DirExists(fs, taskDir)
	if err != nil {
		return errors.WithContext(err, "stat task folder")
	}

	if !exists {
		verdict.warn("no pycontrol task folder found in %s", sessionDir)
		return nil
	}

	entries, err := afero.ReadDir(fs, taskDir)
	if err != nil {
		return errors.WithContext(err, "list task folder")
	}

	var pyFiles int
	for _, fi := range entries {
		if !fi.IsDir() && filepath.Ext(fi.Name()) == ".py" {
			pyFiles++
		}
	}

	switch {
	case pyFiles == 0:
		return errors.MissingDataError{
			Path:   taskDir,
			Kind:   errors.Missing,
			Reason: "could not find the pycontrol task .py file",
		}
	case pyFiles > 1:
		return errors.MissingDataError{
			Path:   taskDir,
			Kind:   errors.Incomplete,
			Reason: fmt.Sprintf("expected one pycontrol task .py file, found %d", pyFiles),
		}
	}
	return nil
}
