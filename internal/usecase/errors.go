package usecase

import "github.com/cockroachdb/errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrMalformedPayload      = errors.New("malformed payload")
	ErrPersistenceConflict   = errors.New("persistence conflict")
)

var errorCodes = []struct {
	target error
	code   string
}{
	{ErrInvalidInput, "invalid_input"},
	{ErrNotFound, "not_found"},
	{ErrDependencyUnavailable, "dependency_unavailable"},
	{ErrMalformedPayload, "malformed_payload"},
	{ErrPersistenceConflict, "persistence_conflict"},
}

// ErrorCode maps an error chain to a stable label for logs and span status.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range errorCodes {
		if errors.Is(err, c.target) {
			return c.code
		}
	}
	return "internal"
}
