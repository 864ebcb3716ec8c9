package usecase

import (
	"context"
	"fmt"
	"testing"
)

func TestErrorCode(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{fmt.Errorf("%w: league 8", ErrNotFound), "not_found"},
		{fmt.Errorf("fetch: %w", fmt.Errorf("%w: timeout", ErrDependencyUnavailable)), "dependency_unavailable"},
		{fmt.Errorf("%v: insert events", ErrPersistenceConflict), "internal"},
		{context.Canceled, "internal"},
	}
	for _, tc := range cases {
		if got := ErrorCode(tc.err); got != tc.want {
			t.Fatalf("ErrorCode(%v): expected %q, got %q", tc.err, tc.want, got)
		}
	}
}
