package redact

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUsername(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		in, want string
	}{
		{"hueter", "hu***"},
		{"abc", "ab***"},
		{"ab", "***"},
		{"", "***"},
		{"юзер", "юз***"},
	}

	for _, tc := range tcs {
		require.Equal(t, tc.want, Username(tc.in), tc.in)
	}
}

func TestPlaceholders(t *testing.T) {
	t.Parallel()

	require.Equal(t, "[REDACTED_TOKEN]", Token())
	require.Equal(t, "[REDACTED_PASSWORD]", Password())
}
