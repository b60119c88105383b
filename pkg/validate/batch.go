package validate

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/AtMostafa/bnd/pkg/errors"
	"github.com/AtMostafa/bnd/pkg/naming"
	"github.com/AtMostafa/bnd/pkg/session"
)

// SessionResult is the outcome of validating one session in a batch.
type SessionResult struct {
	Name     string
	Err      error
	Verdicts []Verdict
}

// Passed returns whether the session passed validation.
func (r SessionResult) Passed() bool {
	return r.Err == nil
}

// BatchReport holds the result of every session of a subject.
type BatchReport struct {
	Subject string
	Level   session.ProcessingLevel
	Results []SessionResult
}

// Passed returns the results of the sessions that passed.
func (r BatchReport) Passed() (passed []SessionResult) {
	for _, result := range r.Results {
		if result.Passed() {
			passed = append(passed, result)
		}
	}
	return passed
}

// Failed returns the results of the sessions that failed.
func (r BatchReport) Failed() (failed []SessionResult) {
	for _, result := range r.Results {
		if !result.Passed() {
			failed = append(failed, result)
		}
	}
	return failed
}

// ValidateSessions validates every session of `subject`. A failing session
// doesn't stop the batch. The returned error is only set if the batch
// couldn't start.
func (v *Validator) ValidateSessions(subject string, level session.ProcessingLevel,
	sel session.Selection) (BatchReport, error) {
	report := BatchReport{Subject: subject, Level: level}
	if err := sel.Validate(); err != nil {
		return report, err
	}

	if level != session.Raw {
		return report, errors.NewUsageError("Sorry, only raw data is supported for now.")
	}

	subjectDir := session.SubjectPath(v.localPath, level, subject)
	entries, err := v.listSubjectDir(subjectDir)
	if err != nil {
		return report, err
	}

	for _, fi := range entries {
		result := SessionResult{Name: fi.Name()}
		vs, err := v.ValidateRawSession(filepath.Join(subjectDir, fi.Name()), subject, sel)
		if err != nil {
			result.Err = err
			if sessionErr, ok := err.(*SessionError); ok {
				result.Verdicts = sessionErr.Verdicts
			}
		} else {
			result.Verdicts = vs.Verdicts()
		}

		log.WithFields(log.Fields{
			"subject": subject,
			"session": fi.Name(),
			"passed":  result.Passed(),
		}).Debug("Validated session")
		report.Results = append(report.Results, result)
	}
	return report, nil
}

// SubjectSessions sorts the folders of a subject into sessions and folders
// that don't follow the session naming.
type SubjectSessions struct {
	Subject string
	Dir     string
	Valid   []naming.SessionName
	Invalid []string
}

// Latest returns the most recently recorded session.
func (s SubjectSessions) Latest(convention naming.Convention) (latest naming.SessionName, ok bool) {
	var latestTime time.Time
	for _, name := range s.Valid {
		t, err := convention.SessionTime(name)
		if err != nil {
			continue
		}

		if !ok || t.After(latestTime) {
			latest, latestTime, ok = name, t, true
		}
	}
	return latest, ok
}

// ListSessions lists the raw session folders of `subject`. A folder is a
// valid session if its name parses and embeds `subject`. Nothing inside the
// folders is checked.
func (v *Validator) ListSessions(subject string) (SubjectSessions, error) {
	subjectDir := session.SubjectPath(v.localPath, session.Raw, subject)
	sessions := SubjectSessions{Subject: subject, Dir: subjectDir}

	entries, err := v.listSubjectDir(subjectDir)
	if err != nil {
		return sessions, err
	}

	for _, fi := range entries {
		name, err := v.convention.ParseSessionDirName(fi.Name())
		if err != nil || name.Subject != subject {
			sessions.Invalid = append(sessions.Invalid, fi.Name())
			continue
		}
		sessions.Valid = append(sessions.Valid, name)
	}
	return sessions, nil
}

// listSubjectDir returns the visible directories of a subject, sorted by
// name.
func (v *Validator) listSubjectDir(subjectDir string) ([]os.FileInfo, error) {
	fi, err := fs.Stat(subjectDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewUsageError("Subject folder %q does not exist.", subjectDir)
		}
		return nil, errors.WithContext(err, "stat subject folder")
	}

	if !fi.IsDir() {
		return nil, errors.NewUsageError("Subject folder %q must be a directory.", subjectDir)
	}

	entries, err := afero.ReadDir(fs, subjectDir)
	if err != nil {
		return nil, errors.WithContext(err, "list subject folder")
	}

	var dirs []os.FileInfo
	for _, entry := range entries {
		if entry.IsDir() && !naming.IsHidden(entry.Name()) {
			dirs = append(dirs, entry)
		}
	}

	sort.Slice(dirs, func(i, j int) bool {
		return dirs[i].Name() < dirs[j].Name()
	})
	return dirs, nil
}
