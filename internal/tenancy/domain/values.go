package domain

import (
	"strings"
	"unicode"

	"github.com/rivo/uniseg"
)

const (
	MaxNameLength        = 70
	MaxCompanyNameLength = 70
	MinPasswordLength    = 8
	MaxPasswordLength    = 70
	MaxRoleNameLength    = 64
	MaxMerchantIDLength  = 64
)

// Name is a validated display name.
type Name struct{ value string }

func NewName(raw string) (Name, error) {
	switch {
	case strings.TrimSpace(raw) == "":
		return Name{}, invalid("name", "must not be empty")
	case uniseg.GraphemeClusterCount(raw) > MaxNameLength:
		return Name{}, invalid("name", "too long")
	case strings.ContainsAny(raw, `/()"<>\{}`):
		return Name{}, invalid("name", "contains forbidden characters")
	}
	return Name{value: raw}, nil
}

// NameFromEmail uses the local part of the address as the display name.
func NameFromEmail(email string) (Name, error) {
	local, _, ok := strings.Cut(email, "@")
	if !ok {
		return Name{}, invalid("email", "missing @")
	}
	return NewName(local)
}

func (n Name) String() string { return n.value }

// Password is a plaintext secret that satisfies the password policy, or one
// generated by the system itself.
type Password struct{ secret string }

func NewPassword(raw string) (Password, error) {
	var upper, lower, digit, special, space bool
	for _, r := range raw {
		upper = upper || unicode.IsUpper(r)
		lower = lower || unicode.IsLower(r)
		digit = digit || unicode.IsNumber(r)
		special = special || !(unicode.IsLetter(r) || unicode.IsNumber(r))
		space = space || unicode.IsSpace(r)
	}

	n := uniseg.GraphemeClusterCount(raw)
	switch {
	case n < MinPasswordLength:
		return Password{}, invalid("password", "too short")
	case n > MaxPasswordLength:
		return Password{}, invalid("password", "too long")
	case space:
		return Password{}, invalid("password", "must not contain whitespace")
	case !(upper && lower && digit && special):
		return Password{}, invalid("password", "must contain upper and lower case letters, a digit and a special character")
	}
	return Password{secret: raw}, nil
}

// NewSystemPassword skips the policy for secrets the system generated
// itself, such as temporary passwords.
func NewSystemPassword(raw string) (Password, error) {
	if raw == "" {
		return Password{}, invalid("password", "must not be empty")
	}
	return Password{secret: raw}, nil
}

func (p Password) Secret() string { return p.secret }

// CompanyName is a trimmed company name.
type CompanyName struct{ value string }

func NewCompanyName(raw string) (CompanyName, error) {
	name := strings.TrimSpace(raw)
	switch {
	case name == "":
		return CompanyName{}, invalid("company_name", "must not be empty")
	case uniseg.GraphemeClusterCount(name) > MaxCompanyNameLength:
		return CompanyName{}, invalid("company_name", "too long")
	}
	for _, r := range name {
		if !(unicode.IsLetter(r) || unicode.IsNumber(r) || isASCIISpace(r) || r == '_') {
			return CompanyName{}, invalid("company_name", "contains forbidden characters")
		}
	}
	return CompanyName{value: name}, nil
}

func (c CompanyName) String() string { return c.value }

// NewMerchantID normalises a user supplied value (usually a company name)
// into a canonical merchant id.
func NewMerchantID(raw string) (string, error) {
	id := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), " ", "_")
	if id == "" {
		return "", invalid("merchant_id", "must not be empty")
	}
	for _, r := range id {
		if !(unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_') {
			return "", invalid("merchant_id", "contains forbidden characters")
		}
	}
	return ToCanonicalMerchantID(id)
}

// ToCanonicalMerchantID accepts ASCII letters, digits, '_' and '-' up to
// MaxMerchantIDLength bytes.
func ToCanonicalMerchantID(id string) (string, error) {
	if id == "" || len(id) > MaxMerchantIDLength {
		return "", invalid("merchant_id", "length out of range")
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-') {
			return "", invalid("merchant_id", "not a valid merchant id")
		}
	}
	return id, nil
}

// RoleName is a lowercased custom role name.
type RoleName struct{ value string }

func NewRoleName(raw string) (RoleName, error) {
	switch {
	case strings.TrimSpace(raw) == "":
		return RoleName{}, invalid("role_name", "must not be empty")
	case uniseg.GraphemeClusterCount(raw) > MaxRoleNameLength:
		return RoleName{}, invalid("role_name", "too long")
	case strings.Contains(raw, " "):
		return RoleName{}, invalid("role_name", "must not contain spaces")
	}
	return RoleName{value: strings.ToLower(raw)}, nil
}

func (r RoleName) String() string { return r.value }

func isASCIISpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\f', '\r':
		return true
	}
	return false
}
