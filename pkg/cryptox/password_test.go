package cryptox_test

import (
	"path/filepath"
	"strings"
	"testing"
	"unicode"

	"github.com/aussiebroadwan/tenancy/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestArgon2Hasher_HashFormat(t *testing.T) {
	t.Parallel()

	h := cryptox.Argon2Hasher{Pepper: "pepper"}
	hash, err := h.Hash("Password1!")
	require.NoError(t, err)

	parts := strings.Split(hash, "$")
	require.Len(t, parts, 6)
	require.Equal(t, "argon2id", parts[1])
	require.Equal(t, "v=19", parts[2])
	require.Equal(t, "m=19456,t=2,p=1", parts[3])
}

func TestArgon2Hasher_Verify(t *testing.T) {
	t.Parallel()

	h := cryptox.Argon2Hasher{Pepper: "pepper"}
	hash, err := h.Hash("correct-password")
	require.NoError(t, err)

	tests := []struct {
		name   string
		secret string
		want   bool
	}{
		{"correct", "correct-password", true},
		{"wrong", "wrong-password", false},
		{"case difference", "Correct-Password", false},
		{"trailing space", "correct-password ", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ok, err := h.Verify(tt.secret, hash)
			require.NoError(t, err)
			require.Equal(t, tt.want, ok)
		})
	}
}

func TestArgon2Hasher_UniqueSalts(t *testing.T) {
	t.Parallel()

	h := cryptox.Argon2Hasher{}
	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestArgon2Hasher_PepperMatters(t *testing.T) {
	t.Parallel()

	hash, err := cryptox.Argon2Hasher{Pepper: "one"}.Hash("secret")
	require.NoError(t, err)

	ok, err := cryptox.Argon2Hasher{Pepper: "two"}.Verify("secret", hash)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestArgon2Hasher_InvalidHash(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"wrong algorithm", "$bcrypt$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
		{"missing parts", "$argon2id$v=19$m=19456"},
		{"malformed parameters", "$argon2id$v=19$invalid$c2FsdA$aGFzaA"},
		{"invalid base64 salt", "$argon2id$v=19$m=19456,t=2,p=1$!!!$aGFzaA"},
		{"wrong version", "$argon2id$v=18$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ok, err := cryptox.Argon2Hasher{}.Verify("secret", tt.hash)
			require.ErrorIs(t, err, cryptox.ErrInvalidHash)
			require.False(t, ok)
		})
	}
}

func TestGeneratePassword_CharacterClasses(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for range 50 {
		pw, err := cryptox.GeneratePassword()
		require.NoError(t, err)
		require.Len(t, pw, 16)
		require.False(t, seen[pw], "duplicate password generated")
		seen[pw] = true

		var upper, lower, digit, special bool
		for _, r := range pw {
			switch {
			case unicode.IsUpper(r):
				upper = true
			case unicode.IsLower(r):
				lower = true
			case unicode.IsDigit(r):
				digit = true
			case unicode.IsSpace(r):
				t.Fatalf("password %q contains whitespace", pw)
			default:
				special = true
			}
		}
		require.True(t, upper && lower && digit && special, "password %q misses a class", pw)
	}
}

func TestRandomAlphanumeric(t *testing.T) {
	t.Parallel()

	s, err := cryptox.RandomAlphanumeric(8)
	require.NoError(t, err)
	require.Len(t, s, 8)
	for _, r := range s {
		require.True(t, unicode.IsLetter(r) || unicode.IsDigit(r))
	}
}

func TestLoadOrCreatePepper(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "pepper")
	first, err := cryptox.LoadOrCreatePepper(path)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := cryptox.LoadOrCreatePepper(path)
	require.NoError(t, err)
	require.Equal(t, first, second)
}
