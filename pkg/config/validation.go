package config

import (
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/AtMostafa/bnd/pkg/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields by their name in the config file rather than the Go name.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// envForField names the environment variable that can set a field.
var envForField = map[string]string{
	"localPath":  LocalPathEnv,
	"remotePath": RemotePathEnv,
}

// Validate checks the struct tags on Config, plus the rules that can't be
// expressed as tags.
func Validate(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	if filepath.Clean(cfg.LocalPath) == filepath.Clean(cfg.RemotePath) {
		return errors.NewFriendlyError(
			"The local and remote data roots are both %q.\n"+
				"The remote root must be a different location.", cfg.LocalPath)
	}
	return nil
}

// formatValidationError converts validator errors into a message the user
// can act on. Only the first failure is reported.
func formatValidationError(err error) error {
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrs) == 0 {
		return err
	}

	e := validationErrs[0]
	if e.Tag() == "required" {
		missing := errors.MissingFieldError{Field: e.Field()}
		if env, ok := envForField[e.Field()]; ok {
			return errors.NewFriendlyError("The bnd configuration is incomplete: %s.\n"+
				"Set it with `bnd config --%s <path>` or the %s environment variable.",
				missing, flagName(e.Field()), env)
		}
		return errors.NewFriendlyError("The bnd configuration is incomplete: %s.", missing)
	}

	return errors.NewFriendlyError("The bnd configuration is invalid: "+
		"%s failed the %q rule (value: %v).", e.Namespace(), e.Tag(), e.Value())
}

// flagName converts a config field name like `localPath` into the matching
// `bnd config` flag, `local-path`.
func flagName(field string) string {
	var b strings.Builder
	for _, r := range field {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('-')
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
