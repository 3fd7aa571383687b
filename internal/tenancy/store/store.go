package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. It exposes sub-repositories so a Tx-scoped Store can hand
// out the same repositories bound to the transaction.
type Store interface {
	Organizations() Organizations
	Merchants() Merchants
	Users() Users
	UserRoles() UserRoles
	Roles() Roles
	UserKeyStores() UserKeyStores
	Invites() Invites
	RecoveryCodes() RecoveryCodes

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Organizations interface {
	// InsertOrganization fails with ErrAlreadyExists when the id is taken.
	InsertOrganization(ctx context.Context, o domain.Organization) error
	GetOrganization(ctx context.Context, id string) (domain.Organization, error)
}

type Merchants interface {
	InsertMerchant(ctx context.Context, m domain.MerchantAccount) error
	GetMerchant(ctx context.Context, id string) (domain.MerchantAccount, error)
	ListMerchantsByOrg(ctx context.Context, orgID string) ([]domain.MerchantAccount, error)

	// DeleteMerchant returns ErrNotFound when nothing was deleted.
	DeleteMerchant(ctx context.Context, id string) error
}

type Users interface {
	// InsertUser fails with ErrAlreadyExists when the id or email is taken.
	InsertUser(ctx context.Context, u domain.User) error
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail matches the lowercased address.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	UpdatePassword(ctx context.Context, userID, hash string, now time.Time) error
	UpdateTOTP(ctx context.Context, userID string, status domain.TOTPStatus, secret []byte, now time.Time) error
	MarkVerified(ctx context.Context, userID string, now time.Time) error
	SetPreferredMerchant(ctx context.Context, userID, merchantID string, now time.Time) error
}

type UserRoles interface {
	// Insert writes every row in the payload. A V1AndV2 payload is written
	// all-or-nothing and both rows are returned, V1 first.
	Insert(ctx context.Context, p InsertUserRolePayload) ([]domain.UserRole, error)

	// ListByUser returns the user's rows at version ordered by creation.
	ListByUser(ctx context.Context, userID string, version domain.RoleVersion) ([]domain.UserRole, error)

	// ActivateForUser flips every invitation_sent row of the user in orgID
	// to active.
	ActivateForUser(ctx context.Context, userID, orgID, modifiedBy string, now time.Time) (int64, error)
}

type Roles interface {
	// InsertRole fails with ErrAlreadyExists when the name is taken in the
	// organization.
	InsertRole(ctx context.Context, r domain.Role) error
	GetRole(ctx context.Context, id string) (domain.Role, error)
	ListRolesByOrg(ctx context.Context, orgID string) ([]domain.Role, error)
}

type UserKeyStores interface {
	GetByUserID(ctx context.Context, userID string) (domain.UserKeyStore, error)

	// Insert fails with ErrAlreadyExists when the user already has a key.
	Insert(ctx context.Context, ks domain.UserKeyStore) error
}

type Invites interface {
	InsertInvite(ctx context.Context, inv domain.Invite) error
	GetInviteByTokenHash(ctx context.Context, hash string) (domain.Invite, error)

	// MarkInviteUsed returns ErrNotFound when the invite is unknown or was
	// already used.
	MarkInviteUsed(ctx context.Context, id string, now time.Time) error

	// DeleteExpiredInvites removes invites that expired before now and
	// returns how many were removed.
	DeleteExpiredInvites(ctx context.Context, now time.Time) (int64, error)
}

type RecoveryCodes interface {
	// ReplaceRecoveryCodes drops every stored code for the user and stores
	// hashes in their place.
	ReplaceRecoveryCodes(ctx context.Context, userID string, hashes []string, now time.Time) error
	ListRecoveryCodes(ctx context.Context, userID string) ([]domain.RecoveryCodeHash, error)

	// DeleteRecoveryCode returns ErrNotFound when the code was already
	// consumed.
	DeleteRecoveryCode(ctx context.Context, id string) error
}
