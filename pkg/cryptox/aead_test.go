package cryptox_test

import (
	"testing"

	"github.com/aussiebroadwan/tenancy/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecrypt(t *testing.T) {
	t.Parallel()

	key, err := cryptox.GenerateAES256Key()
	require.NoError(t, err)

	tests := []struct {
		name      string
		plaintext []byte
	}{
		{"empty", []byte{}},
		{"short", []byte("totp-secret")},
		{"key material", make([]byte, 32)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ct, err := cryptox.Encrypt(tt.plaintext, key)
			require.NoError(t, err)
			require.NotEqual(t, tt.plaintext, ct)

			pt, err := cryptox.Decrypt(ct, key)
			require.NoError(t, err)
			require.Equal(t, string(tt.plaintext), string(pt))
		})
	}
}

func TestDecrypt_WrongKey(t *testing.T) {
	t.Parallel()

	key, err := cryptox.GenerateAES256Key()
	require.NoError(t, err)
	other, err := cryptox.GenerateAES256Key()
	require.NoError(t, err)

	ct, err := cryptox.Encrypt([]byte("secret"), key)
	require.NoError(t, err)

	_, err = cryptox.Decrypt(ct, other)
	require.ErrorIs(t, err, cryptox.ErrDecrypt)
}

func TestDecrypt_Tampered(t *testing.T) {
	t.Parallel()

	key, err := cryptox.GenerateAES256Key()
	require.NoError(t, err)

	ct, err := cryptox.Encrypt([]byte("secret"), key)
	require.NoError(t, err)
	ct[len(ct)-1] ^= 0xff

	_, err = cryptox.Decrypt(ct, key)
	require.ErrorIs(t, err, cryptox.ErrDecrypt)
}

func TestDecrypt_TooShort(t *testing.T) {
	t.Parallel()

	key, err := cryptox.GenerateAES256Key()
	require.NoError(t, err)

	_, err = cryptox.Decrypt([]byte("short"), key)
	require.ErrorIs(t, err, cryptox.ErrCiphertextTooShort)
}

func TestEncrypt_InvalidKeySize(t *testing.T) {
	t.Parallel()

	_, err := cryptox.Encrypt([]byte("x"), []byte("too-short"))
	require.ErrorIs(t, err, cryptox.ErrInvalidKeySize)
}
