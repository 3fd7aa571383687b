package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store"
	"github.com/aussiebroadwan/tenancy/pkg/cryptox"
	"github.com/aussiebroadwan/tenancy/pkg/idx"
	"github.com/aussiebroadwan/tenancy/pkg/slogx"
)

// MerchantService is the in-process merchant manager backed by the merchants
// table.
type MerchantService struct {
	Store store.Store
	Now   func() time.Time
}

var _ MerchantManager = (*MerchantService)(nil)

// CreateMerchantAccount inserts a merchant. v1 requests carry their own id;
// v2 requests get a generated one.
func (s *MerchantService) CreateMerchantAccount(ctx context.Context, req domain.MerchantAccountCreate) (domain.MerchantAccount, error) {
	log := slogx.FromContext(ctx)

	id := req.MerchantID
	switch req.Version {
	case domain.PlatformV2:
		id = idx.Prefixed("merchant")
	default:
		canonical, err := domain.ToCanonicalMerchantID(id)
		if err != nil {
			return domain.MerchantAccount{}, err
		}
		id = canonical
	}

	publishableKey := ""
	if req.PublishableKey != nil {
		publishableKey = *req.PublishableKey
	} else {
		pk, err := cryptox.PrefixedToken("pk", cryptox.TokenSize128)
		if err != nil {
			return domain.MerchantAccount{}, domain.Internal("generate publishable key", err)
		}
		publishableKey = pk
	}

	m := domain.MerchantAccount{
		ID:               id,
		OrgID:            req.OrganizationID,
		Name:             req.MerchantName,
		RoutingAlgorithm: req.RoutingAlgorithm,
		ReturnURL:        req.ReturnURL,
		WebhookURL:       req.WebhookURL,
		PublishableKey:   publishableKey,
		CreatedAt:        nowOr(s.Now),
	}

	if err := s.Store.Merchants().InsertMerchant(ctx, m); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.MerchantAccount{}, fmt.Errorf("merchant %s: %w", id, domain.ErrDuplicateOrganizationOrMerchant)
		}
		log.Error("failed to insert merchant", slog.String("merchant_id", id), slog.Any("error", err))
		return domain.MerchantAccount{}, domain.Internal("insert merchant", err)
	}

	log.Info("merchant created", slog.String("merchant_id", id), slog.String("org_id", m.OrgID))
	return m, nil
}

func (s *MerchantService) DeleteMerchantAccount(ctx context.Context, merchantID string) error {
	if err := s.Store.Merchants().DeleteMerchant(ctx, merchantID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return err
		}
		return domain.Internal("delete merchant", err)
	}
	return nil
}

func (s *MerchantService) MerchantExists(ctx context.Context, merchantID string) (bool, error) {
	_, err := s.Store.Merchants().GetMerchant(ctx, merchantID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, store.ErrNotFound):
		return false, nil
	}
	return false, domain.Internal("fetch merchant", err)
}
