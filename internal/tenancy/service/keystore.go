package service

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store"
	"github.com/aussiebroadwan/tenancy/pkg/cryptox"
	"github.com/aussiebroadwan/tenancy/pkg/slogx"
)

// KeyStoreManager owns the per-user data keys. Keys are stored encrypted
// under MasterKey and never rewritten.
type KeyStoreManager struct {
	Store     store.Store
	MasterKey []byte

	// Transfer is optional; when set every new key is copied to it before
	// the key store row is written.
	Transfer KeyTransferer

	Now func() time.Time
}

// GetOrCreateKeyStore returns the user's key store, creating one when the
// user has none. A store error other than not-found is returned as is
// rather than treated as absence. When two callers race, the loser's insert
// conflicts and it returns the winner's row. The key is transferred before
// the insert, so the loser's unused key can remain in the key manager.
func (m *KeyStoreManager) GetOrCreateKeyStore(ctx context.Context, userID string) (domain.UserKeyStore, error) {
	ks, err := m.Store.UserKeyStores().GetByUserID(ctx, userID)
	if err == nil {
		return ks, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.UserKeyStore{}, domain.Internal("fetch key store", err)
	}

	key, err := cryptox.GenerateAES256Key()
	if err != nil {
		return domain.UserKeyStore{}, domain.Internal("generate user key", err)
	}

	if m.Transfer != nil {
		if err := m.Transfer.TransferKey(ctx, userID, base64.StdEncoding.EncodeToString(key)); err != nil {
			return domain.UserKeyStore{}, domain.Internal("transfer user key", err)
		}
	}

	encrypted, err := cryptox.Encrypt(key, m.MasterKey)
	if err != nil {
		return domain.UserKeyStore{}, domain.Internal("encrypt user key", err)
	}

	ks = domain.UserKeyStore{UserID: userID, EncryptedKey: encrypted, CreatedAt: nowOr(m.Now)}
	err = m.Store.UserKeyStores().Insert(ctx, ks)
	switch {
	case err == nil:
		slogx.FromContext(ctx).Debug("user key store created", slog.String("user_id", userID))
		return ks, nil
	case errors.Is(err, store.ErrAlreadyExists):
		winner, err := m.Store.UserKeyStores().GetByUserID(ctx, userID)
		if err != nil {
			return domain.UserKeyStore{}, domain.Internal("fetch key store after conflict", err)
		}
		return winner, nil
	}
	return domain.UserKeyStore{}, domain.Internal("insert key store", err)
}

// DecryptTOTPSecret returns nil when the user has no TOTP secret. A missing
// key store or a failed decrypt is an internal error, never absence.
func (m *KeyStoreManager) DecryptTOTPSecret(ctx context.Context, u domain.User) (*string, error) {
	if len(u.TOTPSecret) == 0 {
		return nil, nil
	}

	ks, err := m.Store.UserKeyStores().GetByUserID(ctx, u.ID)
	if err != nil {
		return nil, domain.Internal("fetch key store", err)
	}
	key, err := m.unwrap(ks)
	if err != nil {
		return nil, err
	}

	plain, err := cryptox.Decrypt(u.TOTPSecret, key)
	if err != nil {
		return nil, domain.Internal("decrypt totp secret", err)
	}
	secret := string(plain)
	return &secret, nil
}

// EncryptForUser seals plaintext under the user's data key, creating the key
// store on first use.
func (m *KeyStoreManager) EncryptForUser(ctx context.Context, userID string, plaintext []byte) ([]byte, error) {
	ks, err := m.GetOrCreateKeyStore(ctx, userID)
	if err != nil {
		return nil, err
	}
	key, err := m.unwrap(ks)
	if err != nil {
		return nil, err
	}

	out, err := cryptox.Encrypt(plaintext, key)
	if err != nil {
		return nil, domain.Internal("encrypt for user", err)
	}
	return out, nil
}

func (m *KeyStoreManager) unwrap(ks domain.UserKeyStore) ([]byte, error) {
	key, err := cryptox.Decrypt(ks.EncryptedKey, m.MasterKey)
	if err != nil {
		return nil, domain.Internal("decrypt user key", err)
	}
	return key, nil
}
