package service_test

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store/storetest"
	"github.com/aussiebroadwan/tenancy/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

type recordingTransfer struct {
	err error

	mu    sync.Mutex
	calls map[string]string
}

func (r *recordingTransfer) TransferKey(_ context.Context, identifier, encodedKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.calls == nil {
		r.calls = map[string]string{}
	}
	r.calls[identifier] = encodedKey
	return r.err
}

// keyStoreFaults wraps the key store repo. missFirst turns the first lookup
// into a not-found; getErr fails every lookup.
type keyStoreFaults struct {
	store.Store
	missFirst bool
	getErr    error
	gets      *atomic.Int64
}

func (f keyStoreFaults) UserKeyStores() store.UserKeyStores {
	return faultyKeyStores{UserKeyStores: f.Store.UserKeyStores(), f: f}
}

type faultyKeyStores struct {
	store.UserKeyStores
	f keyStoreFaults
}

func (k faultyKeyStores) GetByUserID(ctx context.Context, userID string) (domain.UserKeyStore, error) {
	n := k.f.gets.Add(1)
	if k.f.getErr != nil {
		return domain.UserKeyStore{}, k.f.getErr
	}
	if k.f.missFirst && n == 1 {
		return domain.UserKeyStore{}, store.ErrNotFound
	}
	return k.UserKeyStores.GetByUserID(ctx, userID)
}

func TestGetOrCreateKeyStore_Idempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStore(t)
	u := storetest.User(t, s)

	transfer := &recordingTransfer{}
	keys := newKeys(t, s)
	keys.Transfer = transfer

	first, err := keys.GetOrCreateKeyStore(ctx, u.ID)
	require.NoError(t, err)
	second, err := keys.GetOrCreateKeyStore(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, first.EncryptedKey, second.EncryptedKey)

	// the transferred key is the one sealed under the master key
	require.Len(t, transfer.calls, 1)
	plain, err := cryptox.Decrypt(first.EncryptedKey, keys.MasterKey)
	require.NoError(t, err)
	require.Equal(t, base64.StdEncoding.EncodeToString(plain), transfer.calls[u.ID])
}

func TestGetOrCreateKeyStore_TransferFailureStoresNothing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStore(t)
	u := storetest.User(t, s)

	keys := newKeys(t, s)
	keys.Transfer = &recordingTransfer{err: errors.New("key manager down")}

	_, err := keys.GetOrCreateKeyStore(ctx, u.ID)
	require.ErrorIs(t, err, domain.ErrInternal)

	_, err = s.UserKeyStores().GetByUserID(ctx, u.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestGetOrCreateKeyStore_FetchErrorIsNotAbsence(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStore(t)
	u := storetest.User(t, s)

	keys := newKeys(t, keyStoreFaults{Store: s, getErr: errors.New("connection reset"), gets: &atomic.Int64{}})

	_, err := keys.GetOrCreateKeyStore(ctx, u.ID)
	require.ErrorIs(t, err, domain.ErrInternal)

	_, err = s.UserKeyStores().GetByUserID(ctx, u.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestGetOrCreateKeyStore_LoserReturnsWinner(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStore(t)
	u := storetest.User(t, s)

	winnerKeys := newKeys(t, s)
	winner, err := winnerKeys.GetOrCreateKeyStore(ctx, u.ID)
	require.NoError(t, err)

	gets := &atomic.Int64{}
	transfer := &recordingTransfer{}
	keys := newKeys(t, keyStoreFaults{Store: s, missFirst: true, gets: gets})
	keys.Transfer = transfer
	got, err := keys.GetOrCreateKeyStore(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, winner.EncryptedKey, got.EncryptedKey)
	require.EqualValues(t, 2, gets.Load())

	// The loser already handed its own key to the key manager.
	orphan, err := base64.StdEncoding.DecodeString(transfer.calls[u.ID])
	require.NoError(t, err)
	require.Len(t, orphan, cryptox.AES256KeySize)
	stored, err := cryptox.Decrypt(winner.EncryptedKey, winnerKeys.MasterKey)
	require.NoError(t, err)
	require.NotEqual(t, stored, orphan)
}

func TestGetOrCreateKeyStore_Concurrent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStore(t)
	u := storetest.User(t, s)
	keys := newKeys(t, s)

	const workers = 8
	results := make(chan []byte, workers)
	errs := make(chan error, workers)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ks, err := keys.GetOrCreateKeyStore(ctx, u.ID)
			if err != nil {
				errs <- err
				return
			}
			results <- ks.EncryptedKey
		}()
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	stored, err := s.UserKeyStores().GetByUserID(ctx, u.ID)
	require.NoError(t, err)
	for key := range results {
		require.Equal(t, stored.EncryptedKey, key)
	}
}

func TestDecryptTOTPSecret(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("no secret", func(t *testing.T) {
		t.Parallel()
		s := newStore(t)
		u := storetest.User(t, s)

		secret, err := newKeys(t, s).DecryptTOTPSecret(ctx, u)
		require.NoError(t, err)
		require.Nil(t, secret)

		// no key store is created on the way
		_, err = s.UserKeyStores().GetByUserID(ctx, u.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		s := newStore(t)
		u := storetest.User(t, s)
		keys := newKeys(t, s)

		sealed, err := keys.EncryptForUser(ctx, u.ID, []byte("JBSWY3DPEHPK3PXP"))
		require.NoError(t, err)
		u.TOTPSecret = sealed

		secret, err := keys.DecryptTOTPSecret(ctx, u)
		require.NoError(t, err)
		require.NotNil(t, secret)
		require.Equal(t, "JBSWY3DPEHPK3PXP", *secret)
	})

	t.Run("tampered", func(t *testing.T) {
		t.Parallel()
		s := newStore(t)
		u := storetest.User(t, s)
		keys := newKeys(t, s)

		sealed, err := keys.EncryptForUser(ctx, u.ID, []byte("JBSWY3DPEHPK3PXP"))
		require.NoError(t, err)
		sealed[len(sealed)-1] ^= 0xff
		u.TOTPSecret = sealed

		_, err = keys.DecryptTOTPSecret(ctx, u)
		require.ErrorIs(t, err, domain.ErrInternal)
	})

	t.Run("missing key store", func(t *testing.T) {
		t.Parallel()
		s := newStore(t)
		u := storetest.User(t, s)
		u.TOTPSecret = []byte("sealed elsewhere")

		_, err := newKeys(t, s).DecryptTOTPSecret(ctx, u)
		require.ErrorIs(t, err, domain.ErrInternal)
	})

	t.Run("wrong master key", func(t *testing.T) {
		t.Parallel()
		s := newStore(t)
		u := storetest.User(t, s)

		sealed, err := newKeys(t, s).EncryptForUser(ctx, u.ID, []byte("JBSWY3DPEHPK3PXP"))
		require.NoError(t, err)
		u.TOTPSecret = sealed

		_, err = newKeys(t, s).DecryptTOTPSecret(ctx, u)
		require.ErrorIs(t, err, domain.ErrInternal)
	})
}
