package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Run("lowercases and trims", func(t *testing.T) {
		got, err := Normalize("  Alice@Acme.Test ")
		require.NoError(t, err)
		assert.Equal(t, "alice@acme.test", got)
	})

	for _, bad := range []string{"", "alice", "alice@", "Alice <alice@acme.test>", "a b@acme.test"} {
		t.Run("rejects "+bad, func(t *testing.T) {
			_, err := Normalize(bad)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestDeriveUsername(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"alice@acme.test", "alice"},
		{"Bob.Smith+kudos@acme.test", "bob.smith"},
		{"dana_o'neil@acme.test", "dana_oneil"},
		{".x.@acme.test", "x"},
		{"+@acme.test", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveUsername(tt.in))
		})
	}
}
