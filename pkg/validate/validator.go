// Package validate checks that recording sessions are complete and follow the
// lab's naming rules before anything else is allowed to touch them.
package validate

import (
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/AtMostafa/bnd/pkg/config"
	"github.com/AtMostafa/bnd/pkg/errors"
	"github.com/AtMostafa/bnd/pkg/naming"
	"github.com/AtMostafa/bnd/pkg/session"
)

// Mocked out for unit testing.
var fs = afero.NewOsFs()

// ModalityValidator checks one modality of a session. Implementations only
// read from the filesystem.
type ModalityValidator interface {
	Modality() session.Modality
	Validate(sessionDir string, name naming.SessionName) Verdict
}

// Validator validates sessions according to a configured naming convention.
type Validator struct {
	localPath  string
	convention naming.Convention
	validators map[session.Modality]ModalityValidator
}

// New creates a Validator for the data tree described by `cfg`.
func New(cfg config.Config) *Validator {
	convention := cfg.Convention()
	return &Validator{
		localPath:  cfg.LocalPath,
		convention: convention,
		validators: map[session.Modality]ModalityValidator{
			session.Behavior: behaviorValidator{},
			session.Ephys:    ephysValidator{streams: convention.ProbeStreams},
			session.Video:    videoValidator{},
		},
	}
}

// Convention returns the naming convention the Validator checks against.
func (v *Validator) Convention() naming.Convention {
	return v.convention
}

// ValidateRawSession checks the raw session at `sessionPath`, which must
// belong to `subject`. Every selected modality is checked even if an earlier
// one fails, and the returned *SessionError carries all of their verdicts.
//
// The caller is responsible for checking that `sessionPath` is an existing
// directory.
func (v *Validator) ValidateRawSession(sessionPath, subject string, sel session.Selection) (
	ValidatedSession, error) {
	if err := sel.Validate(); err != nil {
		return ValidatedSession{}, err
	}

	sessionPath, err := filepath.Abs(sessionPath)
	if err != nil {
		return ValidatedSession{}, errors.WithContext(err, "resolve session path")
	}

	dirName := filepath.Base(sessionPath)
	name, err := v.convention.ParseSessionDirName(dirName)
	if err != nil {
		return ValidatedSession{}, err
	}

	if name.Subject != subject {
		return ValidatedSession{}, errors.SubjectMismatchError{
			Name:     dirName,
			Expected: subject,
			Actual:   name.Subject,
		}
	}

	var verdicts []Verdict
	var failed bool
	for _, modality := range sel.Modalities() {
		verdict := v.validators[modality].Validate(sessionPath, name)
		for _, warning := range verdict.Warnings {
			log.WithFields(log.Fields{
				"session":  dirName,
				"modality": modality,
			}).Warn(warning)
		}

		log.WithFields(log.Fields{
			"session":  dirName,
			"modality": modality,
			"passed":   verdict.Passed(),
		}).Debug("Validated modality")

		failed = failed || !verdict.Passed()
		verdicts = append(verdicts, verdict)
	}

	if failed {
		return ValidatedSession{}, &SessionError{Session: dirName, Verdicts: verdicts}
	}

	return ValidatedSession{
		path:      sessionPath,
		name:      name,
		selection: sel,
		verdicts:  verdicts,
	}, nil
}

// checkDataFile checks that the recording file at `path` has contents. Links
// are followed, since the upload copies the file they point to.
func checkDataFile(path string) error {
	fi, err := fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.MissingDataError{
				Path:   path,
				Kind:   errors.Missing,
				Reason: "the file is a link to a file that doesn't exist",
			}
		}
		return errors.WithContext(err, "stat")
	}

	if !fi.Mode().IsRegular() {
		return errors.MissingDataError{
			Path:   path,
			Kind:   errors.Missing,
			Reason: "expected a regular file",
		}
	}

	if fi.Size() == 0 {
		return errors.MissingDataError{
			Path:   path,
			Kind:   errors.Empty,
			Reason: "incomplete recording, the file is empty",
		}
	}
	return nil
}
