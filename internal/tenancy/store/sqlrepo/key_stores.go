package sqlrepo

import (
	"context"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
)

type keyStoresRepo struct {
	c conn
}

func (r *keyStoresRepo) GetByUserID(ctx context.Context, userID string) (domain.UserKeyStore, error) {
	var ks domain.UserKeyStore
	err := r.c.queryRow(ctx,
		`SELECT user_id, encrypted_key, created_at FROM user_key_stores WHERE user_id = ?`, userID,
	).Scan(&ks.UserID, &ks.EncryptedKey, &ks.CreatedAt)
	if err != nil {
		return domain.UserKeyStore{}, r.c.mapErr(err)
	}
	ks.CreatedAt = ks.CreatedAt.UTC()
	return ks, nil
}

func (r *keyStoresRepo) Insert(ctx context.Context, ks domain.UserKeyStore) error {
	_, err := r.c.exec(ctx,
		`INSERT INTO user_key_stores (user_id, encrypted_key, created_at) VALUES (?, ?, ?)`,
		ks.UserID, ks.EncryptedKey, ks.CreatedAt.UTC(),
	)
	return err
}
