package service_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/service"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store/drivers/sqlite"
	"github.com/aussiebroadwan/tenancy/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return testNow }

func newStore(t *testing.T) store.Store {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())
	return s
}

// reverseHasher is a cheap deterministic stand-in for argon2.
type reverseHasher struct{}

func (reverseHasher) Hash(secret string) (string, error) {
	return "h$" + reverse(secret), nil
}

func (reverseHasher) Verify(secret, hash string) (bool, error) {
	if !strings.HasPrefix(hash, "h$") {
		return false, errors.New("malformed hash")
	}
	return hash == "h$"+reverse(secret), nil
}

func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

func newBuilder(production, emailEnabled bool) *domain.Builder {
	return &domain.Builder{
		Emails:       domain.NewEmailParser(domain.DefaultDomainBlocklist()),
		Production:   production,
		EmailEnabled: emailEnabled,
		Now:          clock,
	}
}

func newProvisioning(s store.Store, merchants service.MerchantManager) *service.ProvisioningService {
	if merchants == nil {
		merchants = &service.MerchantService{Store: s, Now: clock}
	}
	return &service.ProvisioningService{
		Store:         s,
		Merchants:     merchants,
		Builder:       newBuilder(true, true),
		Hasher:        reverseHasher{},
		Version:       domain.PlatformV1,
		InternalOrgID: "org_internal",
		Now:           clock,
	}
}

func newKeys(t *testing.T, s store.Store) *service.KeyStoreManager {
	t.Helper()
	master, err := cryptox.GenerateAES256Key()
	require.NoError(t, err)
	return &service.KeyStoreManager{Store: s, MasterKey: master, Now: clock}
}

// recordingMerchants wraps a MerchantManager and remembers deletes.
type recordingMerchants struct {
	service.MerchantManager
	deleteErr error

	mu      sync.Mutex
	deleted []string
}

func (r *recordingMerchants) DeleteMerchantAccount(ctx context.Context, id string) error {
	r.mu.Lock()
	r.deleted = append(r.deleted, id)
	r.mu.Unlock()

	if r.deleteErr != nil {
		return r.deleteErr
	}
	return r.MerchantManager.DeleteMerchantAccount(ctx, id)
}

func (r *recordingMerchants) Deleted() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.deleted...)
}

// blindStore hides existing users from email lookups so that only the
// unique constraint can catch a duplicate.
type blindStore struct {
	store.Store
}

func (b blindStore) Users() store.Users { return blindUsers{b.Store.Users()} }

type blindUsers struct {
	store.Users
}

func (blindUsers) GetUserByEmail(context.Context, string) (domain.User, error) {
	return domain.User{}, store.ErrNotFound
}
