package domain

import "time"

type UserStatus string

const (
	UserStatusActive         UserStatus = "active"
	UserStatusInvitationSent UserStatus = "invitation_sent"
)

type TOTPStatus string

const (
	TOTPNotSet     TOTPStatus = "not_set"
	TOTPInProgress TOTPStatus = "in_progress"
	TOTPSet        TOTPStatus = "set"
)

// RoleVersion tags the schema a user role row was written under.
type RoleVersion string

const (
	RoleVersionV1 RoleVersion = "v1"
	RoleVersionV2 RoleVersion = "v2"
)

// EntityType names the scope a V2 user role is bound to.
type EntityType string

const (
	EntityOrganization EntityType = "organization"
	EntityMerchant     EntityType = "merchant"
	EntityProfile      EntityType = "profile"
	EntityInternal     EntityType = "internal"
)

func ParseEntityType(s string) (EntityType, bool) {
	switch e := EntityType(s); e {
	case EntityOrganization, EntityMerchant, EntityProfile, EntityInternal:
		return e, true
	}
	return "", false
}

// InternalMerchantID stands in for a merchant on roles held by platform
// staff. No merchant account with this id exists.
const InternalMerchantID = "internal_merchant"

type Organization struct {
	ID        string
	Name      *string
	CreatedAt time.Time
}

type User struct {
	ID                     string
	Name                   string
	Email                  string
	PasswordHash           *string // argon2 encoded
	IsVerified             bool
	TOTPStatus             TOTPStatus
	TOTPSecret             []byte // encrypted under the user's key store
	PreferredMerchantID    *string
	CreatedAt              time.Time
	LastModifiedAt         time.Time
	LastPasswordModifiedAt *time.Time
}

// UserRole binds a user to one scope at one schema version. V1 rows always
// carry a merchant; V2 rows carry an entity id and type.
type UserRole struct {
	ID             string
	UserID         string
	RoleID         string
	OrgID          string
	MerchantID     *string
	ProfileID      *string
	EntityID       *string
	EntityType     *EntityType
	Status         UserStatus
	CreatedBy      string
	LastModifiedBy string
	CreatedAt      time.Time
	LastModified   time.Time
	Version        RoleVersion
}

// UserKeyStore holds a user's data key encrypted under the master key.
// Rows are never updated once written.
type UserKeyStore struct {
	UserID       string
	EncryptedKey []byte
	CreatedAt    time.Time
}

type Invite struct {
	ID         string
	TokenHash  string
	UserID     string
	OrgID      string
	MerchantID string
	RoleID     string
	CreatedBy  string
	ExpiresAt  time.Time
	Used       bool
	UsedAt     *time.Time
	CreatedAt  time.Time
}

// RecoveryCodeHash is one stored recovery code. Codes are deleted when used.
type RecoveryCodeHash struct {
	ID        string
	UserID    string
	CodeHash  string
	CreatedAt time.Time
}
