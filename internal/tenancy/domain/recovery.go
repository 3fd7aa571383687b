package domain

import "github.com/aussiebroadwan/tenancy/pkg/cryptox"

const (
	RecoveryCodesCount = 8
	RecoveryCodeLength = 8
)

// RecoveryCodes are shown to the user once. Only their hashes are kept.
type RecoveryCodes struct {
	codes []string
}

// GenerateRecoveryCodes returns RecoveryCodesCount codes of the form
// "abcd-EFGH".
func GenerateRecoveryCodes() (RecoveryCodes, error) {
	codes := make([]string, RecoveryCodesCount)
	for i := range codes {
		first, err := cryptox.RandomAlphanumeric(RecoveryCodeLength / 2)
		if err != nil {
			return RecoveryCodes{}, Internal("generate recovery code", err)
		}
		second, err := cryptox.RandomAlphanumeric(RecoveryCodeLength / 2)
		if err != nil {
			return RecoveryCodes{}, Internal("generate recovery code", err)
		}
		codes[i] = first + "-" + second
	}
	return RecoveryCodes{codes: codes}, nil
}

// Hashed maps every code through h.
func (rc RecoveryCodes) Hashed(h PasswordHasher) ([]string, error) {
	hashes := make([]string, len(rc.codes))
	for i, c := range rc.codes {
		hash, err := h.Hash(c)
		if err != nil {
			return nil, Internal("hash recovery code", err)
		}
		hashes[i] = hash
	}
	return hashes, nil
}

func (rc RecoveryCodes) Strings() []string {
	return append([]string(nil), rc.codes...)
}
