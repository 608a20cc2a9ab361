package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "gatepass/pkg/domain-errors"
)

func TestNewIdentifier(t *testing.T) {
	t.Run("generated identifiers parse back", func(t *testing.T) {
		id := NewIdentifier()
		parsed, err := ParseIdentifier(id.String())
		require.NoError(t, err)
		assert.Equal(t, id, parsed)
	})

	t.Run("shape is prefix plus ten base32 chars", func(t *testing.T) {
		id := NewIdentifier()
		assert.True(t, strings.HasPrefix(id.String(), "REG-"))
		assert.Len(t, id.String(), len("REG-")+10)
	})

	t.Run("no collisions across a generation burst", func(t *testing.T) {
		seen := make(map[Identifier]bool)
		for range 1000 {
			id := NewIdentifier()
			assert.False(t, seen[id], "duplicate identifier %s", id)
			seen[id] = true
		}
	})
}

func TestParseIdentifier(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"missing prefix", "ABCDEFGH23"},
		{"wrong prefix", "EVT-ABCDEFGH23"},
		{"too short", "REG-ABC"},
		{"too long", "REG-ABCDEFGH23XYZ"},
		{"lowercase body", "REG-abcdefgh23"},
		{"ambiguous letters", "REG-ILOUILOUIL"},
		{"sql injection", "REG-'; DROP T-"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseIdentifier(tc.input)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		})
	}
}
