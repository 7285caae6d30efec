package redact

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUsername(t *testing.T) {
	t.Parallel()

	require.Equal(t, "al***", Username("alice"))
	require.Equal(t, "***", Username("al"))
	require.Equal(t, "***", Username("a"))
	require.Equal(t, "***", Username(""))
}

func TestTokenAndPassword(t *testing.T) {
	t.Parallel()

	require.Equal(t, "[REDACTED_TOKEN]", Token())
	require.Equal(t, "[REDACTED_PASSWORD]", Password())
}
