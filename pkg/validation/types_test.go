package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAccountID(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		valid bool
	}{
		{"ok alnum", "V1StGXR8_Z5jdHi6B~myT", true},
		{"ok underscore tilde", "___~~~___~~~___~~~___", true},
		{"too short", "V1StGXR8_Z5jdHi6B~my", false},
		{"too long", "V1StGXR8_Z5jdHi6B~myTT", false},
		{"dash not allowed", "V1StGXR8-Z5jdHi6B~myT", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ParseAccountID(tt.in)
			if tt.valid {
				require.NoError(t, err)
				assert.Equal(t, tt.in, id.String())
			} else {
				require.Error(t, err)
				assert.True(t, IsError(err))
			}
		})
	}
}

func TestParseEmail(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
	}{
		{"a@b.com", true},
		{"user+tag@example.org", true},
		{"not-an-email", false},
		{"@missing.local", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := ParseEmail(tt.in)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.True(t, IsError(err))
			}
		})
	}
}

func TestParsePassword(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		valid bool
	}{
		{"ok", "Passw0rd", true},
		{"too short", "Pw0rdx", false},
		{"no digit", "Password", false},
		{"no upper", "passw0rd", false},
		{"no lower", "PASSW0RD", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePassword(tt.in)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.True(t, IsError(err))
			}
		})
	}
}

func TestParsePasswordHash(t *testing.T) {
	const good = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
	_, err := ParsePasswordHash(good)
	require.NoError(t, err)

	for _, bad := range []string{
		"",
		"plaintext",
		"$1$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy",
		"$2a$10$tooshort",
	} {
		_, err := ParsePasswordHash(bad)
		assert.True(t, IsError(err), "expected rejection of %q", bad)
	}
}
