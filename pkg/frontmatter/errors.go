package frontmatter

import "github.com/cockroachdb/errors"

// Sentinel errors returned by Parse. All parse failures are terminal: no
// partial metadata is ever returned.
var (
	// ErrMissingStartDelimiter indicates the document does not open with "---".
	ErrMissingStartDelimiter = errors.New("frontmatter must start with ---")

	// ErrMissingEndDelimiter indicates no closing "---" line was found.
	ErrMissingEndDelimiter = errors.New("frontmatter must end with ---")

	// ErrInvalidMetadataSyntax indicates the normalized block is still not
	// valid YAML. The wrapped message carries the loader's diagnostic.
	ErrInvalidMetadataSyntax = errors.New("invalid YAML frontmatter")

	// ErrMetadataNotAMapping indicates the block loaded as a scalar or sequence.
	ErrMetadataNotAMapping = errors.New("frontmatter must be a mapping")
)

// SyntaxError wraps the YAML loader's error for a metadata block that is
// still invalid after normalization. It matches ErrInvalidMetadataSyntax.
type SyntaxError struct {
	Err error
}

func (e *SyntaxError) Error() string {
	return ErrInvalidMetadataSyntax.Error() + ": " + e.Err.Error()
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrInvalidMetadataSyntax.
func (e *SyntaxError) Is(target error) bool {
	return target == ErrInvalidMetadataSyntax
}
