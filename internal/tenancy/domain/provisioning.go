package domain

import (
	"time"

	"github.com/aussiebroadwan/tenancy/pkg/cryptox"
	"github.com/aussiebroadwan/tenancy/pkg/idx"
	"github.com/google/uuid"
)

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignUpWithMerchantIDRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	CompanyName string `json:"company_name"`
}

type ConnectAccountRequest struct {
	Email string `json:"email"`
}

type CreateInternalUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	RoleID   string `json:"role_id"`
}

type InviteUserRequest struct {
	Email  string `json:"email"`
	Name   string `json:"name"`
	RoleID string `json:"role_id"`
}

type UserMerchantCreateRequest struct {
	CompanyName string `json:"company_name"`
}

// Actor is the authenticated caller of a request.
type Actor struct {
	UserID     string
	OrgID      string
	MerchantID string
	ProfileID  string
	RoleID     string
}

type NewOrganization struct {
	ID   string
	Name *string
}

type NewUserMerchant struct {
	MerchantID  string
	CompanyName *CompanyName
	Org         NewOrganization
}

// AccountCreateRequest builds the merchant service request for version.
func (m NewUserMerchant) AccountCreateRequest(version PlatformVersion) MerchantAccountCreate {
	var name *string
	if m.CompanyName != nil {
		n := m.CompanyName.String()
		name = &n
	}

	if version == PlatformV2 {
		if name == nil {
			n := DefaultMerchantName
			name = &n
		}
		return MerchantAccountCreate{
			Version:        PlatformV2,
			OrganizationID: m.Org.ID,
			MerchantName:   name,
		}
	}

	return MerchantAccountCreate{
		Version:        PlatformV1,
		MerchantID:     m.MerchantID,
		OrganizationID: m.Org.ID,
		MerchantName:   name,
	}
}

// NewUser is a validated user about to be provisioned.
type NewUser struct {
	UserID   string
	Name     Name
	Email    Email
	Password *Password
	Merchant NewUserMerchant
}

// Record hashes the password and returns the row to insert.
func (n NewUser) Record(h PasswordHasher, now time.Time) (User, error) {
	u := User{
		ID:             n.UserID,
		Name:           n.Name.String(),
		Email:          n.Email.String(),
		IsVerified:     false,
		TOTPStatus:     TOTPNotSet,
		CreatedAt:      now,
		LastModifiedAt: now,
	}
	if n.Password != nil {
		hash, err := h.Hash(n.Password.Secret())
		if err != nil {
			return User{}, Internal("hash password", err)
		}
		u.PasswordHash = &hash
		u.LastPasswordModifiedAt = &now
	}
	return u, nil
}

// Builder turns request shapes into NewUser values under the deployment's
// policy.
type Builder struct {
	Emails *EmailParser

	// Production derives merchant ids from company names. Elsewhere a
	// time-derived id avoids collisions from repeated test signups.
	Production bool

	// EmailEnabled is false when no invite email can be delivered, in which
	// case invitees get a temporary password.
	EmailEnabled bool

	Now func() time.Time
}

func (b *Builder) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now().UTC()
}

func (b *Builder) timeDerivedMerchantID() string {
	return idx.PrefixedAt("merchant", b.now())
}

func newOrganization(name *string) NewOrganization {
	return NewOrganization{ID: idx.Prefixed("org"), Name: name}
}

func (b *Builder) SignUp(req SignUpRequest) (NewUser, error) {
	email, err := b.Emails.Parse(req.Email)
	if err != nil {
		return NewUser{}, err
	}
	name, err := NameFromEmail(email.String())
	if err != nil {
		return NewUser{}, err
	}
	password, err := NewPassword(req.Password)
	if err != nil {
		return NewUser{}, err
	}

	return NewUser{
		UserID:   uuid.NewString(),
		Name:     name,
		Email:    email,
		Password: &password,
		Merchant: NewUserMerchant{
			MerchantID: b.timeDerivedMerchantID(),
			Org:        newOrganization(nil),
		},
	}, nil
}

func (b *Builder) SignUpWithMerchantID(req SignUpWithMerchantIDRequest) (NewUser, error) {
	email, err := b.Emails.Parse(req.Email)
	if err != nil {
		return NewUser{}, err
	}
	name, err := NewName(req.Name)
	if err != nil {
		return NewUser{}, err
	}
	password, err := NewPassword(req.Password)
	if err != nil {
		return NewUser{}, err
	}
	company, err := NewCompanyName(req.CompanyName)
	if err != nil {
		return NewUser{}, err
	}
	merchantID, err := NewMerchantID(req.CompanyName)
	if err != nil {
		return NewUser{}, err
	}

	orgName := company.String()
	return NewUser{
		UserID:   uuid.NewString(),
		Name:     name,
		Email:    email,
		Password: &password,
		Merchant: NewUserMerchant{
			MerchantID:  merchantID,
			CompanyName: &company,
			Org:         newOrganization(&orgName),
		},
	}, nil
}

// ConnectAccount provisions a passwordless user.
func (b *Builder) ConnectAccount(req ConnectAccountRequest) (NewUser, error) {
	email, err := b.Emails.Parse(req.Email)
	if err != nil {
		return NewUser{}, err
	}
	name, err := NameFromEmail(email.String())
	if err != nil {
		return NewUser{}, err
	}

	return NewUser{
		UserID: uuid.NewString(),
		Name:   name,
		Email:  email,
		Merchant: NewUserMerchant{
			MerchantID: b.timeDerivedMerchantID(),
			Org:        newOrganization(nil),
		},
	}, nil
}

// CreateInternalUser places the user under orgID and the internal merchant
// sentinel.
func (b *Builder) CreateInternalUser(req CreateInternalUserRequest, orgID string) (NewUser, error) {
	email, err := b.Emails.Parse(req.Email)
	if err != nil {
		return NewUser{}, err
	}
	name, err := NewName(req.Name)
	if err != nil {
		return NewUser{}, err
	}
	password, err := NewPassword(req.Password)
	if err != nil {
		return NewUser{}, err
	}

	return NewUser{
		UserID:   uuid.NewString(),
		Name:     name,
		Email:    email,
		Password: &password,
		Merchant: NewUserMerchant{
			MerchantID: InternalMerchantID,
			Org:        NewOrganization{ID: orgID},
		},
	}, nil
}

// InviteUser places the invitee in the inviter's organization and merchant.
func (b *Builder) InviteUser(req InviteUserRequest, inviter Actor) (NewUser, error) {
	email, err := b.Emails.Parse(req.Email)
	if err != nil {
		return NewUser{}, err
	}
	name, err := NewName(req.Name)
	if err != nil {
		return NewUser{}, err
	}

	var password *Password
	if !b.EmailEnabled {
		temp, err := cryptox.GeneratePassword()
		if err != nil {
			return NewUser{}, Internal("generate temporary password", err)
		}
		p, err := NewPassword(temp)
		if err != nil {
			return NewUser{}, Internal("temporary password rejected", err)
		}
		password = &p
	}

	return NewUser{
		UserID:   uuid.NewString(),
		Name:     name,
		Email:    email,
		Password: password,
		Merchant: NewUserMerchant{
			MerchantID: inviter.MerchantID,
			Org:        NewOrganization{ID: inviter.OrgID},
		},
	}, nil
}

// UserMerchantCreate adds a merchant to an existing user in the caller's
// organization.
func (b *Builder) UserMerchantCreate(existing User, req UserMerchantCreateRequest, caller Actor) (NewUser, error) {
	company, err := NewCompanyName(req.CompanyName)
	if err != nil {
		return NewUser{}, err
	}

	merchantID := b.timeDerivedMerchantID()
	if b.Production {
		merchantID, err = NewMerchantID(req.CompanyName)
		if err != nil {
			return NewUser{}, err
		}
	}

	name, err := NewName(existing.Name)
	if err != nil {
		return NewUser{}, err
	}
	email, err := b.Emails.Parse(existing.Email)
	if err != nil {
		return NewUser{}, err
	}

	orgName := company.String()
	return NewUser{
		UserID: existing.ID,
		Name:   name,
		Email:  email,
		Merchant: NewUserMerchant{
			MerchantID:  merchantID,
			CompanyName: &company,
			Org:         NewOrganization{ID: caller.OrgID, Name: &orgName},
		},
	}, nil
}
