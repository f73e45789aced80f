package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "kudos/pkg/domain-errors"
)

// TestParseUUID_Invariants validates the parsing invariant:
// "IDs must be valid, non-empty, non-nil UUIDs"
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseUserID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseUserID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseUserID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		id, err := ParseUserID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, UserID(validUUID), id)
	})
}

// TestParseID_HeaderInputs covers values that arrive through the X-User-ID header.
func TestParseID_HeaderInputs(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"SQL injection attempt", "'; DROP TABLE users;--", true},
		{"Path traversal", "../../../etc/passwd", true},
		{"Null byte injection", "550e8400\x00-e29b-41d4-a716-446655440000", true},
		{"Oversized input", strings.Repeat("a", 1000), true},
		{"Integer id", "42", true},
		{"Empty string", "", true},
		{"Nil UUID", uuid.Nil.String(), true},
		{"Whitespace only", "   ", true},
		{"Uppercase valid UUID", "550E8400-E29B-41D4-A716-446655440000", false},
		{"Valid UUID lowercase", "550e8400-e29b-41d4-a716-446655440000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseUserID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestAllIDTypes_ConsistentBehavior(t *testing.T) {
	validUUID := uuid.New().String()

	_, errUser := ParseUserID(validUUID)
	_, errOrg := ParseOrganizationID(validUUID)
	_, errKudo := ParseKudoID(validUUID)
	require.NoError(t, errUser)
	require.NoError(t, errOrg)
	require.NoError(t, errKudo)

	for _, input := range []string{"", "invalid", uuid.Nil.String()} {
		t.Run("all reject: "+input, func(t *testing.T) {
			_, errUser := ParseUserID(input)
			_, errOrg := ParseOrganizationID(input)
			_, errKudo := ParseKudoID(input)
			require.Error(t, errUser)
			require.Error(t, errOrg)
			require.Error(t, errKudo)
		})
	}
}

func TestIDs_JSONAndSQL(t *testing.T) {
	userID := NewUserID()

	t.Run("marshals as UUID string", func(t *testing.T) {
		b, err := json.Marshal(struct {
			ID UserID `json:"id"`
		}{ID: userID})
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":"`+userID.String()+`"}`, string(b))
	})

	t.Run("unmarshals from UUID string", func(t *testing.T) {
		var got struct {
			ID OrganizationID `json:"id"`
		}
		orgID := NewOrganizationID()
		require.NoError(t, json.Unmarshal([]byte(`{"id":"`+orgID.String()+`"}`), &got))
		assert.Equal(t, orgID, got.ID)
	})

	t.Run("round-trips through driver value", func(t *testing.T) {
		v, err := userID.Value()
		require.NoError(t, err)

		var scanned UserID
		require.NoError(t, scanned.Scan(v))
		assert.Equal(t, userID, scanned)
	})

	t.Run("scan rejects garbage", func(t *testing.T) {
		var scanned KudoID
		assert.Error(t, scanned.Scan("not-a-uuid"))
	})
}
