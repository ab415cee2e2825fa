package checkpoint

import "errors"

// Standard checkpoint error types that all implementations should use.
var (
	// ErrRunNotFound indicates no run exists for the given identifier or source.
	ErrRunNotFound = errors.New("run not found")

	// ErrMappingNotFound indicates no mapping exists for the given object.
	ErrMappingNotFound = errors.New("mapping not found")
)

// IsRunNotFound checks if an error indicates a run was not found.
func IsRunNotFound(err error) bool {
	return errors.Is(err, ErrRunNotFound)
}

// IsMappingNotFound checks if an error indicates a mapping was not found.
func IsMappingNotFound(err error) bool {
	return errors.Is(err, ErrMappingNotFound)
}
