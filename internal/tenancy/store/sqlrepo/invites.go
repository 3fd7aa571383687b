package sqlrepo

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
)

type invitesRepo struct {
	c conn
}

const inviteColumns = `id, token_hash, user_id, org_id, merchant_id, role_id, created_by, expires_at, used, used_at, created_at`

func (r *invitesRepo) InsertInvite(ctx context.Context, inv domain.Invite) error {
	_, err := r.c.exec(ctx,
		`INSERT INTO invites (`+inviteColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.TokenHash, inv.UserID, inv.OrgID, inv.MerchantID, inv.RoleID, inv.CreatedBy,
		inv.ExpiresAt.UTC(), inv.Used, mapOptionalTime(inv.UsedAt), inv.CreatedAt.UTC(),
	)
	return err
}

func (r *invitesRepo) GetInviteByTokenHash(ctx context.Context, hash string) (domain.Invite, error) {
	var (
		inv    domain.Invite
		usedAt sql.NullTime
	)
	err := r.c.queryRow(ctx,
		`SELECT `+inviteColumns+` FROM invites WHERE token_hash = ?`, hash,
	).Scan(
		&inv.ID, &inv.TokenHash, &inv.UserID, &inv.OrgID, &inv.MerchantID, &inv.RoleID, &inv.CreatedBy,
		&inv.ExpiresAt, &inv.Used, &usedAt, &inv.CreatedAt,
	)
	if err != nil {
		return domain.Invite{}, r.c.mapErr(err)
	}
	inv.UsedAt = mapNullTimePtr(usedAt)
	inv.ExpiresAt = inv.ExpiresAt.UTC()
	inv.CreatedAt = inv.CreatedAt.UTC()
	return inv, nil
}

func (r *invitesRepo) MarkInviteUsed(ctx context.Context, id string, now time.Time) error {
	return r.c.execOne(ctx,
		`UPDATE invites SET used = TRUE, used_at = ? WHERE id = ? AND used = FALSE`,
		now.UTC(), id,
	)
}

func (r *invitesRepo) DeleteExpiredInvites(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.c.exec(ctx, `DELETE FROM invites WHERE expires_at < ?`, now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
