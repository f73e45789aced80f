package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "kudos/pkg/domain-errors"
)

func TestNormalizeMessage(t *testing.T) {
	t.Run("trims surrounding whitespace", func(t *testing.T) {
		msg, err := NormalizeMessage("  great job!\n", DefaultMaxMessageLength)
		require.NoError(t, err)
		assert.Equal(t, "great job!", msg)
	})

	t.Run("rejects blank", func(t *testing.T) {
		for _, in := range []string{"", "   ", "\t\n"} {
			_, err := NormalizeMessage(in, DefaultMaxMessageLength)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidMessage), "input %q", in)
		}
	})

	t.Run("bounds length in runes", func(t *testing.T) {
		exact := strings.Repeat("é", 10)
		_, err := NormalizeMessage(exact, 10)
		assert.NoError(t, err)

		_, err = NormalizeMessage(exact+"x", 10)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidMessage))
	})
}
