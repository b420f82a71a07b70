package config

import (
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
)

// Version is the only supported configuration schema version.
const Version = 1

// Validation errors for configuration fields.
var (
	// ErrUnsupportedVersion indicates the version field is not Version.
	ErrUnsupportedVersion = errors.New("unsupported config version")

	// ErrInvalidPath indicates a path value is malformed.
	ErrInvalidPath = errors.New("invalid path")

	// ErrInvalidSize indicates a non-positive size limit.
	ErrInvalidSize = errors.New("max_resource_size must be positive")

	// ErrInvalidFieldName indicates a known field that could never match a
	// metadata line.
	ErrInvalidFieldName = errors.New("invalid field name")

	// ErrRequiredField indicates a field the normalizer depends on was removed
	// from frontmatter.known_fields.
	ErrRequiredField = errors.New("known_fields must include")
)

var fieldNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// requiredFields are the fields whose continuation lines are folded; without
// them every description line would be treated as free text.
var requiredFields = []string{"name", "description"}

// Validate checks a Config for validity.
// Returns nil if valid, or every validation error found.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	if cfg.Version != Version {
		errs = append(errs, errors.Newf("%w: %d", ErrUnsupportedVersion, cfg.Version))
	}

	for _, field := range []struct {
		name, value string
	}{
		{"marketplace_dir", cfg.MarketplaceDir},
		{"install_dir", cfg.InstallDir},
	} {
		if err := validatePath(field.value); err != nil {
			errs = append(errs, &PathError{Field: field.name, Path: field.value, Err: err})
		}
	}

	if cfg.MaxResourceSize <= 0 {
		errs = append(errs, ErrInvalidSize)
	}

	fields := cfg.Frontmatter.KnownFields
	for _, name := range fields {
		if !fieldNamePattern.MatchString(name) {
			errs = append(errs, &FieldError{Field: name, Err: ErrInvalidFieldName})
		}
	}
	if len(fields) > 0 {
		for _, name := range requiredFields {
			if !slices.Contains(fields, name) {
				errs = append(errs, &FieldError{Field: name, Err: ErrRequiredField})
			}
		}
	}

	return errs
}

// validatePath checks if a path string is well-formed.
// It does not check if the path exists, only that it's syntactically valid.
func validatePath(path string) error {
	// Empty paths are valid (they mean "use default")
	if path == "" {
		return nil
	}

	if strings.ContainsRune(path, '\x00') {
		return ErrInvalidPath
	}

	cleaned := filepath.Clean(path)
	if cleaned == "" || cleaned == "." {
		return ErrInvalidPath
	}

	return nil
}

// FieldError represents an error for a frontmatter field name.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return e.Err.Error() + ": " + e.Field
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// PathError represents an error for a specific path field.
type PathError struct {
	Field string
	Path  string
	Err   error
}

func (e *PathError) Error() string {
	return e.Field + ": " + e.Err.Error() + ": " + e.Path
}

func (e *PathError) Unwrap() error {
	return e.Err
}
