package validate

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"github.com/AtMostafa/bnd/pkg/errors"
	"github.com/AtMostafa/bnd/pkg/naming"
	"github.com/AtMostafa/bnd/pkg/session"
)

// ephysValidator checks the SpikeGLX recordings of a session. A recording is
// a `<session>_g<N>` folder that only contains `<recording>_imec<P>` probe
// folders, each of which holds the configured streams for every trigger.
type ephysValidator struct {
	streams []string
}

func (ephysValidator) Modality() session.Modality {
	return session.Ephys
}

func (v ephysValidator) Validate(sessionDir string, name naming.SessionName) (verdict Verdict) {
	verdict.Modality = session.Ephys

	entries, err := afero.ReadDir(fs, sessionDir)
	if err != nil {
		verdict.Err = errors.WithContext(err, "list session")
		return verdict
	}

	var recordings []string
	for _, fi := range entries {
		if fi.IsDir() && !naming.IsHidden(fi.Name()) &&
			naming.EphysRecordingPattern.MatchString(fi.Name()) {
			recordings = append(recordings, fi.Name())
		}
	}

	if len(recordings) == 0 {
		verdict.Err = errors.MissingDataError{
			Path:   sessionDir,
			Kind:   errors.Missing,
			Reason: "no SpikeGLX recording folder (<session>_g<N>) found",
		}
		return verdict
	}

	if len(recordings) > 1 {
		verdict.warn("found %d ephys recordings: %s", len(recordings), strings.Join(recordings, ", "))
	}

	for _, recording := range recordings {
		gate, _ := naming.EphysGate(recording)
		if expected := naming.EphysRecordingDirName(name, gate); recording != expected {
			verdict.Err = errors.MalformedNameError{
				Name:   recording,
				Reason: fmt.Sprintf("expected the recording folder to be named %s", expected),
			}
			return verdict
		}

		recordingDir := filepath.Join(sessionDir, recording)
		if err := v.validateRecording(recordingDir, recording, &verdict); err != nil {
			verdict.Err = err
			return verdict
		}
	}
	return verdict
}

func (v ephysValidator) validateRecording(dir, recording string, verdict *Verdict) error {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return errors.WithContext(err, "list recording")
	}

	var probes int
	for _, fi := range entries {
		if naming.IsHidden(fi.Name()) {
			continue
		}

		if !fi.IsDir() {
			return errors.MalformedNameError{
				Name:   fi.Name(),
				Reason: fmt.Sprintf("only probe folders are allowed in %s", recording),
			}
		}

		probe, ok := naming.ProbeIndex(fi.Name())
		if !ok || fi.Name() != naming.ProbeDirName(recording, probe) {
			return errors.MalformedNameError{
				Name:   fi.Name(),
				Reason: fmt.Sprintf("expected a probe folder named %s_imec<N>", recording),
			}
		}

		if err := v.validateProbe(filepath.Join(dir, fi.Name()), recording, probe, verdict); err != nil {
			return err
		}
		probes++
	}

	if probes == 0 {
		return errors.MissingDataError{
			Path:   dir,
			Kind:   errors.Missing,
			Reason: "no probe folder found in the recording",
		}
	}
	return nil
}

func (v ephysValidator) validateProbe(dir, recording, probe string, verdict *Verdict) error {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return errors.WithContext(err, "list probe")
	}

	present := map[string]os.FileInfo{}
	triggers := map[string]struct{}{}
	for _, fi := range entries {
		if fi.IsDir() || naming.IsHidden(fi.Name()) {
			continue
		}
		present[fi.Name()] = fi

		trigger, ok := naming.StreamTrigger(fi.Name())
		if !ok {
			continue
		}

		// Stream files copied over from another session keep that session's
		// name.
		if !strings.HasPrefix(fi.Name(), recording+"_t") {
			return errors.MalformedNameError{
				Name:   fi.Name(),
				Reason: fmt.Sprintf("stream files in this folder must start with %s_t", recording),
			}
		}
		triggers[trigger] = struct{}{}
	}

	if len(triggers) == 0 {
		triggers["0"] = struct{}{}
	}

	expected := map[string]struct{}{}
	for _, trigger := range sortedTriggers(triggers) {
		for _, stream := range v.streams {
			filename := naming.ProbeStreamFileName(recording, trigger, probe, stream)
			expected[filename] = struct{}{}

			if _, ok := present[filename]; !ok {
				return errors.MissingDataError{
					Path:   filepath.Join(dir, filename),
					Kind:   errors.Missing,
					Reason: fmt.Sprintf("probe %s is missing its %s stream", probe, stream),
				}
			}

			if err := checkDataFile(filepath.Join(dir, filename)); err != nil {
				return err
			}
		}
	}

	var extra []string
	for filename := range present {
		if _, ok := expected[filename]; !ok {
			extra = append(extra, filename)
		}
	}
	sort.Strings(extra)
	for _, filename := range extra {
		verdict.warn("unexpected file in %s: %s", dir, filename)
	}
	return nil
}

func sortedTriggers(triggers map[string]struct{}) []string {
	var sorted []string
	for trigger := range triggers {
		sorted = append(sorted, trigger)
	}

	sort.Slice(sorted, func(i, j int) bool {
		a, _ := strconv.Atoi(sorted[i])
		b, _ := strconv.Atoi(sorted[j])
		return a < b
	})
	return sorted
}
