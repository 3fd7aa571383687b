package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/service"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store/storetest"
	"github.com/aussiebroadwan/tenancy/pkg/cryptox"
	"github.com/aussiebroadwan/tenancy/pkg/idx"
	"github.com/aussiebroadwan/tenancy/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func insertInvite(t *testing.T, s store.Store, userID string, expiresAt time.Time) domain.Invite {
	t.Helper()
	token, err := cryptox.PrefixedToken("inv", cryptox.TokenSize256)
	require.NoError(t, err)

	inv := domain.Invite{
		ID:         idx.Prefixed("inv"),
		TokenHash:  cryptox.FingerprintToken(token),
		UserID:     userID,
		OrgID:      "org_1",
		MerchantID: "merchant_1",
		RoleID:     domain.RoleMerchantViewOnly,
		CreatedBy:  userID,
		ExpiresAt:  expiresAt,
		CreatedAt:  testNow,
	}
	require.NoError(t, s.Invites().InsertInvite(context.Background(), inv))
	return inv
}

func TestHousekeepingCleanup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStore(t)
	u := storetest.User(t, s)

	expired := insertInvite(t, s, u.ID, testNow.Add(-time.Minute))
	live := insertInvite(t, s, u.ID, testNow.Add(time.Hour))

	hk := service.NewHousekeepingService(s, slogx.Discard(), 0)
	hk.Now = clock
	require.Equal(t, time.Hour, hk.Interval)

	require.EqualValues(t, 1, hk.Cleanup(ctx))
	require.EqualValues(t, 0, hk.Cleanup(ctx))

	_, err := s.Invites().GetInviteByTokenHash(ctx, expired.TokenHash)
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.Invites().GetInviteByTokenHash(ctx, live.TokenHash)
	require.NoError(t, err)
}

func TestHousekeepingStartStop(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStore(t)
	u := storetest.User(t, s)
	expired := insertInvite(t, s, u.ID, time.Now().UTC().Add(-time.Hour))

	hk := service.NewHousekeepingService(s, slogx.Discard(), time.Hour)
	hk.Start()
	require.Eventually(t, func() bool {
		_, err := s.Invites().GetInviteByTokenHash(ctx, expired.TokenHash)
		return err != nil
	}, 2*time.Second, 10*time.Millisecond)
	hk.Stop()
}
