package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/userrole"
	"github.com/aussiebroadwan/tenancy/pkg/slogx"
)

// ProvisioningService creates users together with their organization,
// merchant and first role.
//
// The merchant and the user live in different stores as far as this service
// is concerned, so there is no transaction across them. When the user
// insert fails after the merchant was created, the merchant is deleted in
// the background on a best-effort basis.
type ProvisioningService struct {
	Store     store.Store
	Merchants MerchantManager
	Builder   *domain.Builder
	Hasher    domain.PasswordHasher
	Version   domain.PlatformVersion

	// RoleVersion selects how the initial org_admin role is written. Nil
	// writes both V1 and V2 rows.
	RoleVersion *domain.RoleVersion

	// InternalOrgID is the organization internal users are created in.
	InternalOrgID string

	Now func() time.Time

	wg sync.WaitGroup
}

// Provisioned is the result of a successful provisioning call.
type Provisioned struct {
	User     domain.User
	Merchant *domain.MerchantAccount
	Role     domain.UserRole
}

func (s *ProvisioningService) SignUp(ctx context.Context, req domain.SignUpRequest) (Provisioned, error) {
	nu, err := s.Builder.SignUp(req)
	if err != nil {
		return Provisioned{}, err
	}
	return s.provisionWithOrg(ctx, nu)
}

func (s *ProvisioningService) SignUpWithMerchantID(ctx context.Context, req domain.SignUpWithMerchantIDRequest) (Provisioned, error) {
	nu, err := s.Builder.SignUpWithMerchantID(req)
	if err != nil {
		return Provisioned{}, err
	}
	return s.provisionWithOrg(ctx, nu)
}

// ConnectAccount provisions a passwordless org admin.
func (s *ProvisioningService) ConnectAccount(ctx context.Context, req domain.ConnectAccountRequest) (Provisioned, error) {
	nu, err := s.Builder.ConnectAccount(req)
	if err != nil {
		return Provisioned{}, err
	}
	return s.provisionWithOrg(ctx, nu)
}

// CreateInternalUser creates a platform staff member holding an internal
// role. No merchant account is created for them.
func (s *ProvisioningService) CreateInternalUser(ctx context.Context, req domain.CreateInternalUserRequest) (Provisioned, error) {
	log := slogx.FromContext(ctx)

	role, ok := domain.PredefinedRole(req.RoleID)
	if !ok || !role.IsInternal {
		return Provisioned{}, fmt.Errorf("%w: %q is not an internal role", domain.ErrUnknownRole, req.RoleID)
	}

	nu, err := s.Builder.CreateInternalUser(req, s.InternalOrgID)
	if err != nil {
		return Provisioned{}, err
	}
	if err := s.checkUserAbsent(ctx, nu); err != nil {
		return Provisioned{}, err
	}

	// The internal organization is shared by every internal user.
	err = s.Store.Organizations().InsertOrganization(ctx, domain.Organization{ID: s.InternalOrgID, CreatedAt: s.now()})
	if err != nil && !errors.Is(err, store.ErrAlreadyExists) {
		return Provisioned{}, domain.Internal("insert internal organization", err)
	}

	user, err := s.insertUser(ctx, nu)
	if err != nil {
		return Provisioned{}, err
	}

	ur, err := userrole.New(user.ID, role.ID, domain.UserStatusActive, s.now()).
		AtInternal(s.InternalOrgID).
		InsertV1AndV2(ctx, s.Store.UserRoles())
	if err != nil {
		return Provisioned{}, domain.Internal("insert internal user role", err)
	}

	log.Info("internal user created", slog.String("user_id", user.ID), slog.String("role_id", role.ID))
	return Provisioned{User: user, Role: ur}, nil
}

// CreateUserMerchant adds a merchant to the caller's organization and gives
// the caller an org_admin V1 row for it.
func (s *ProvisioningService) CreateUserMerchant(ctx context.Context, caller domain.Actor, req domain.UserMerchantCreateRequest) (Provisioned, error) {
	existing, err := s.Store.Users().GetUserByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Provisioned{}, domain.ErrInvalidCredentials
		}
		return Provisioned{}, domain.Internal("fetch user", err)
	}

	nu, err := s.Builder.UserMerchantCreate(existing, req, caller)
	if err != nil {
		return Provisioned{}, err
	}

	merchant, err := s.createMerchant(ctx, nu)
	if err != nil {
		return Provisioned{}, err
	}

	ur, err := userrole.New(existing.ID, domain.RoleOrgAdmin, domain.UserStatusActive, s.now()).
		AtOrganization(caller.OrgID, merchant.ID).
		InsertV1(ctx, s.Store.UserRoles())
	if err != nil {
		s.compensate(ctx, merchant.ID, err)
		return Provisioned{}, domain.Internal("insert user role", err)
	}

	return Provisioned{User: existing, Merchant: &merchant, Role: ur}, nil
}

// Wait blocks until every background compensation has finished.
func (s *ProvisioningService) Wait() {
	s.wg.Wait()
}

func (s *ProvisioningService) provisionWithOrg(ctx context.Context, nu domain.NewUser) (Provisioned, error) {
	log := slogx.FromContext(ctx)

	// Fast path for a friendlier error. The unique constraints on insert
	// are what actually decide.
	if err := s.checkUserAbsent(ctx, nu); err != nil {
		return Provisioned{}, err
	}

	org := domain.Organization{ID: nu.Merchant.Org.ID, Name: nu.Merchant.Org.Name, CreatedAt: s.now()}
	if err := s.Store.Organizations().InsertOrganization(ctx, org); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return Provisioned{}, fmt.Errorf("organization %s: %w", org.ID, domain.ErrDuplicateOrganizationOrMerchant)
		}
		return Provisioned{}, domain.Internal("insert organization", err)
	}

	merchant, err := s.createMerchant(ctx, nu)
	if err != nil {
		return Provisioned{}, err
	}

	user, err := s.insertUser(ctx, nu)
	if err != nil {
		s.compensate(ctx, merchant.ID, err)
		return Provisioned{}, err
	}

	ur, err := s.attachOrgAdmin(ctx, user.ID, org.ID, merchant.ID)
	if err != nil {
		return Provisioned{}, err
	}

	log.Info("user provisioned",
		slog.String("user_id", user.ID),
		slog.String("org_id", org.ID),
		slog.String("merchant_id", merchant.ID),
	)
	return Provisioned{User: user, Merchant: &merchant, Role: ur}, nil
}

func (s *ProvisioningService) checkUserAbsent(ctx context.Context, nu domain.NewUser) error {
	_, err := s.Store.Users().GetUserByEmail(ctx, nu.Email.String())
	switch {
	case err == nil:
		return domain.ErrUserExists
	case errors.Is(err, store.ErrNotFound):
		return nil
	}
	return domain.Internal("fetch user by email", err)
}

func (s *ProvisioningService) createMerchant(ctx context.Context, nu domain.NewUser) (domain.MerchantAccount, error) {
	req := nu.Merchant.AccountCreateRequest(s.Version)

	if req.Version == domain.PlatformV1 {
		exists, err := s.Merchants.MerchantExists(ctx, req.MerchantID)
		if err != nil {
			return domain.MerchantAccount{}, err
		}
		if exists {
			return domain.MerchantAccount{}, fmt.Errorf("merchant %s: %w", req.MerchantID, domain.ErrDuplicateOrganizationOrMerchant)
		}
	}

	return s.Merchants.CreateMerchantAccount(ctx, req)
}

func (s *ProvisioningService) insertUser(ctx context.Context, nu domain.NewUser) (domain.User, error) {
	user, err := nu.Record(s.Hasher, s.now())
	if err != nil {
		return domain.User{}, err
	}

	if err := s.Store.Users().InsertUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, domain.ErrUserExists
		}
		return domain.User{}, domain.Internal("insert user", err)
	}
	return user, nil
}

func (s *ProvisioningService) attachOrgAdmin(ctx context.Context, userID, orgID, merchantID string) (domain.UserRole, error) {
	role := userrole.New(userID, domain.RoleOrgAdmin, domain.UserStatusActive, s.now()).
		AtOrganization(orgID, merchantID)

	var (
		ur  domain.UserRole
		err error
	)
	switch {
	case s.RoleVersion == nil:
		ur, err = role.InsertV1AndV2(ctx, s.Store.UserRoles())
	case *s.RoleVersion == domain.RoleVersionV1:
		ur, err = role.InsertV1(ctx, s.Store.UserRoles())
	default:
		ur, err = role.InsertV2(ctx, s.Store.UserRoles())
	}
	if err != nil {
		if errors.Is(err, domain.ErrInternal) {
			return domain.UserRole{}, err
		}
		return domain.UserRole{}, domain.Internal("insert user role", err)
	}
	return ur, nil
}

// compensate deletes merchantID in the background. Its outcome is logged and
// never replaces cause, which the caller returns.
func (s *ProvisioningService) compensate(ctx context.Context, merchantID string, cause error) {
	ctx = context.WithoutCancel(ctx)
	log := slogx.FromContext(ctx).With(slog.String("merchant_id", merchantID))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		if err := s.Merchants.DeleteMerchantAccount(ctx, merchantID); err != nil {
			log.Warn("failed to delete merchant after provisioning failure",
				slog.Any("error", err),
				slog.Any("cause", cause),
			)
			return
		}
		log.Info("deleted merchant after provisioning failure", slog.Any("cause", cause))
	}()
}

func (s *ProvisioningService) now() time.Time { return nowOr(s.Now) }
