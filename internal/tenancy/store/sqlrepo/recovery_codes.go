package sqlrepo

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/pkg/idx"
)

type recoveryCodesRepo struct {
	c  conn
	db *sql.DB // nil inside a caller's transaction
}

func (r *recoveryCodesRepo) ReplaceRecoveryCodes(ctx context.Context, userID string, hashes []string, now time.Time) error {
	return atomically(ctx, r.db, r.c, func(c conn) error {
		if _, err := c.exec(ctx, `DELETE FROM recovery_codes WHERE user_id = ?`, userID); err != nil {
			return err
		}
		for _, h := range hashes {
			if _, err := c.exec(ctx,
				`INSERT INTO recovery_codes (id, user_id, code_hash, created_at) VALUES (?, ?, ?, ?)`,
				idx.Prefixed("rc"), userID, h, now.UTC(),
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *recoveryCodesRepo) ListRecoveryCodes(ctx context.Context, userID string) ([]domain.RecoveryCodeHash, error) {
	rows, err := r.c.query(ctx,
		`SELECT id, user_id, code_hash, created_at FROM recovery_codes WHERE user_id = ? ORDER BY id`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RecoveryCodeHash
	for rows.Next() {
		var rc domain.RecoveryCodeHash
		if err := rows.Scan(&rc.ID, &rc.UserID, &rc.CodeHash, &rc.CreatedAt); err != nil {
			return nil, err
		}
		rc.CreatedAt = rc.CreatedAt.UTC()
		out = append(out, rc)
	}
	return out, rows.Err()
}

func (r *recoveryCodesRepo) DeleteRecoveryCode(ctx context.Context, id string) error {
	return r.c.execOne(ctx, `DELETE FROM recovery_codes WHERE id = ?`, id)
}
