// Package service orchestrates provisioning, sign-in, invites, roles and
// MFA on top of a store.Store.
package service

import (
	"context"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/pkg/jwtx"
)

// MerchantManager creates and removes merchant accounts. Provisioning only
// talks to merchants through it.
type MerchantManager interface {
	CreateMerchantAccount(ctx context.Context, req domain.MerchantAccountCreate) (domain.MerchantAccount, error)
	DeleteMerchantAccount(ctx context.Context, merchantID string) error
	MerchantExists(ctx context.Context, merchantID string) (bool, error)
}

// KeyTransferer hands a copy of a user's data key to an external key
// manager.
type KeyTransferer interface {
	TransferKey(ctx context.Context, identifier, encodedKey string) error
}

// TokenSigner issues session tokens.
type TokenSigner interface {
	Sign(claims jwtx.Claims) (string, error)
}

func nowOr(now func() time.Time) time.Time {
	if now != nil {
		return now()
	}
	return time.Now().UTC()
}
