package store

import "github.com/aussiebroadwan/tenancy/internal/tenancy/domain"

// PayloadKind says which role schema versions an insert writes.
type PayloadKind int

const (
	PayloadOnlyV1 PayloadKind = iota + 1
	PayloadOnlyV2
	PayloadV1AndV2
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadOnlyV1:
		return "only_v1"
	case PayloadOnlyV2:
		return "only_v2"
	case PayloadV1AndV2:
		return "v1_and_v2"
	}
	return "unknown"
}

// InsertUserRolePayload is built with OnlyV1, OnlyV2 or V1AndV2. The
// constructors stamp each row with its version.
type InsertUserRolePayload struct {
	kind PayloadKind
	rows []domain.UserRole
}

func OnlyV1(r domain.UserRole) InsertUserRolePayload {
	r.Version = domain.RoleVersionV1
	return InsertUserRolePayload{kind: PayloadOnlyV1, rows: []domain.UserRole{r}}
}

func OnlyV2(r domain.UserRole) InsertUserRolePayload {
	r.Version = domain.RoleVersionV2
	return InsertUserRolePayload{kind: PayloadOnlyV2, rows: []domain.UserRole{r}}
}

func V1AndV2(v1, v2 domain.UserRole) InsertUserRolePayload {
	v1.Version = domain.RoleVersionV1
	v2.Version = domain.RoleVersionV2
	return InsertUserRolePayload{kind: PayloadV1AndV2, rows: []domain.UserRole{v1, v2}}
}

func (p InsertUserRolePayload) Kind() PayloadKind { return p.kind }

// Rows returns a copy of the rows to write, V1 first.
func (p InsertUserRolePayload) Rows() []domain.UserRole {
	out := make([]domain.UserRole, len(p.rows))
	copy(out, p.rows)
	return out
}
