package domain_test

import (
	"errors"
	"strings"
)

// reverseHasher is a cheap deterministic stand-in for argon2.
type reverseHasher struct{}

func (reverseHasher) Hash(secret string) (string, error) {
	return "h$" + reverse(secret), nil
}

func (reverseHasher) Verify(secret, hash string) (bool, error) {
	if !strings.HasPrefix(hash, "h$") {
		return false, errors.New("malformed hash")
	}
	return hash == "h$"+reverse(secret), nil
}

func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

func ptr[T any](v T) *T { return &v }
