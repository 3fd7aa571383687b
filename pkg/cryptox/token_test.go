package cryptox_test

import (
	"strings"
	"testing"

	"github.com/aussiebroadwan/tenancy/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		size    int
		wantLen int
		wantErr bool
	}{
		{"128-bit", cryptox.TokenSize128, 22, false},
		{"256-bit", cryptox.TokenSize256, 43, false},
		{"zero", 0, 0, true},
		{"negative", -1, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tok, err := cryptox.GenerateToken(tt.size)
			if tt.wantErr {
				require.Error(t, err)
				require.Empty(t, tok)
				return
			}
			require.NoError(t, err)
			require.Len(t, tok, tt.wantLen)
		})
	}
}

func TestPrefixedToken(t *testing.T) {
	t.Parallel()

	tok, err := cryptox.PrefixedToken("pk", cryptox.TokenSize128)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(tok, "pk_"))

	other, err := cryptox.PrefixedToken("pk", cryptox.TokenSize128)
	require.NoError(t, err)
	require.NotEqual(t, tok, other)
}

func TestFingerprintToken(t *testing.T) {
	t.Parallel()

	a := cryptox.FingerprintToken("token-1")
	require.Equal(t, a, cryptox.FingerprintToken("token-1"))
	require.NotEqual(t, a, cryptox.FingerprintToken("token-2"))
	require.Len(t, a, 43)
}
