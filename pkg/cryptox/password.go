package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/argon2"
)

var ErrInvalidHash = errors.New("cryptox: invalid hash format")

// Argon2Hasher hashes secrets into PHC-format Argon2id strings. Pepper is
// appended to every secret before hashing and must stay stable for the
// lifetime of the stored hashes.
type Argon2Hasher struct {
	Pepper string
}

// Hash generates a PHC-format Argon2id hash string including salt and parameters.
func (h Argon2Hasher) Hash(secret string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	hash := argon2.IDKey(
		[]byte(secret+h.Pepper),
		salt,
		iterations,
		memory,
		parallelism,
		keyLength,
	)
	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)

	return fmt.Sprintf(
		"$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		memory,
		iterations,
		parallelism,
		b64Salt,
		b64Hash,
	), nil
}

// Verify compares a plaintext secret against a PHC-style Argon2id hash. A
// mismatch is (false, nil); a malformed hash is an error.
func (h Argon2Hasher) Verify(secret, encodedHash string) (bool, error) {
	// ["", "argon2id", "v=19", "m=X,t=Y,p=Z", "salt", "hash"]
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return false, fmt.Errorf("%w: expected 6 parts", ErrInvalidHash)
	}
	if parts[1] != "argon2id" {
		return false, fmt.Errorf("%w: not argon2id", ErrInvalidHash)
	}
	if parts[2] != "v=19" {
		return false, fmt.Errorf("%w: wrong version", ErrInvalidHash)
	}

	var mem, iters uint32
	var par uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iters, &par); err != nil {
		return false, fmt.Errorf("%w: failed to parse parameters: %w", ErrInvalidHash, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, fmt.Errorf("%w: failed to decode salt: %w", ErrInvalidHash, err)
	}
	expectedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, fmt.Errorf("%w: failed to decode hash: %w", ErrInvalidHash, err)
	}

	computed := argon2.IDKey(
		[]byte(secret+h.Pepper),
		salt,
		iters,
		mem,
		par,
		uint32(len(expectedHash)), // #nosec G115 - If this overflows we have bigger problems
	)

	return subtle.ConstantTimeCompare(computed, expectedHash) == 1, nil
}

const (
	lowerChars   = "abcdefghijklmnopqrstuvwxyz"
	upperChars   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitChars   = "0123456789"
	specialChars = "!@#$%^&*-_=+?"
)

// GeneratePassword returns a random 16 character password with at least one
// lowercase, uppercase, digit and special character.
func GeneratePassword() (string, error) {
	const length = 16
	all := lowerChars + upperChars + digitChars + specialChars

	password := make([]byte, 0, length)
	for _, set := range []string{lowerChars, upperChars, digitChars, specialChars} {
		c, err := randomChar(set)
		if err != nil {
			return "", err
		}
		password = append(password, c)
	}
	for len(password) < length {
		c, err := randomChar(all)
		if err != nil {
			return "", err
		}
		password = append(password, c)
	}

	// Fisher-Yates so the guaranteed classes don't sit at fixed positions
	for i := len(password) - 1; i > 0; i-- {
		j, err := randomIndex(i + 1)
		if err != nil {
			return "", err
		}
		password[i], password[j] = password[j], password[i]
	}

	return string(password), nil
}

// RandomAlphanumeric returns n characters drawn uniformly from [A-Za-z0-9].
func RandomAlphanumeric(n int) (string, error) {
	const charset = upperChars + lowerChars + digitChars
	out := make([]byte, n)
	for i := range out {
		c, err := randomChar(charset)
		if err != nil {
			return "", err
		}
		out[i] = c
	}
	return string(out), nil
}

func randomChar(set string) (byte, error) {
	i, err := randomIndex(len(set))
	if err != nil {
		return 0, err
	}
	return set[i], nil
}

func randomIndex(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("cryptox: failed to read randomness: %w", err)
	}
	return int(v.Int64()), nil
}
