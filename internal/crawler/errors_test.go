package crawler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFailureReason(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"timeout", TimeoutError(errors.New("deadline")), "timeout"},
		{"navigation", NavigationError(errors.New("dns")), "navigation"},
		{"capture", CaptureError(errors.New("screenshot")), "capture"},
		{"unclassified", errors.New("boom"), "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, FailureReason(tt.err))
		})
	}
}

func TestErrorKindsUnwrap(t *testing.T) {
	t.Parallel()

	base := errors.New("net/http: request canceled")
	wrapped := NavigationError(base)
	require.ErrorIs(t, wrapped, ErrNavigation)
	require.ErrorIs(t, wrapped, base)
	require.NotErrorIs(t, wrapped, ErrTimeout)

	cfg := ConfigError(errors.New("workers must be positive"))
	require.ErrorIs(t, cfg, ErrConfig)
}
