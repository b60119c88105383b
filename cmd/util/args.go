package util

import (
	"path/filepath"

	"github.com/AtMostafa/bnd/pkg/errors"
	"github.com/AtMostafa/bnd/pkg/session"
)

// SessionArgs are the positional arguments of the commands that act on a
// single session: `<session_path> <subject> [processing_level]`.
type SessionArgs struct {
	Path    string
	Subject string
	Level   session.ProcessingLevel
}

// ParseSessionArgs parses and checks the positional arguments. The session
// path is made absolute and must be an existing directory.
func ParseSessionArgs(args []string) (SessionArgs, error) {
	if len(args) < 2 || len(args) > 3 {
		return SessionArgs{}, errors.NewUsageError(
			"Expected <session_path> <subject> [processing_level], got %d arguments.",
			len(args))
	}

	level := session.Raw
	if len(args) == 3 {
		var err error
		level, err = session.ParseProcessingLevel(args[2])
		if err != nil {
			return SessionArgs{}, err
		}
	}

	if args[1] == "" {
		return SessionArgs{}, errors.NewUsageError("Subject must not be empty.")
	}

	path, err := filepath.Abs(args[0])
	if err != nil {
		return SessionArgs{}, errors.WithContext(err, "get absolute path")
	}

	if err := session.CheckDir(path, "Session folder"); err != nil {
		return SessionArgs{}, err
	}

	return SessionArgs{Path: path, Subject: args[1], Level: level}, nil
}

// ParseSubjectArgs parses `<subject> [processing_level]`.
func ParseSubjectArgs(args []string) (subject string, level session.ProcessingLevel, err error) {
	if len(args) < 1 || len(args) > 2 {
		return "", "", errors.NewUsageError(
			"Expected <subject> [processing_level], got %d arguments.", len(args))
	}

	level = session.Raw
	if len(args) == 2 {
		level, err = session.ParseProcessingLevel(args[1])
		if err != nil {
			return "", "", err
		}
	}

	if args[0] == "" {
		return "", "", errors.NewUsageError("Subject must not be empty.")
	}
	return args[0], level, nil
}
