package sqlrepo

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
)

type usersRepo struct {
	c conn
}

const userColumns = `user_id, name, email, password_hash, is_verified, totp_status, totp_secret,
	preferred_merchant_id, created_at, last_modified_at, last_password_modified_at`

func (r *usersRepo) InsertUser(ctx context.Context, u domain.User) error {
	_, err := r.c.exec(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, strings.ToLower(u.Email), mapOptionalString(u.PasswordHash), u.IsVerified,
		string(u.TOTPStatus), u.TOTPSecret, mapOptionalString(u.PreferredMerchantID),
		u.CreatedAt.UTC(), u.LastModifiedAt.UTC(), mapOptionalTime(u.LastPasswordModifiedAt),
	)
	return err
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = ?`, id)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, strings.ToLower(email))
}

func (r *usersRepo) get(ctx context.Context, query string, arg string) (domain.User, error) {
	var (
		u                    domain.User
		hash, preferred      sql.NullString
		totpStatus           string
		lastPasswordModified sql.NullTime
	)
	err := r.c.queryRow(ctx, query, arg).Scan(
		&u.ID, &u.Name, &u.Email, &hash, &u.IsVerified, &totpStatus, &u.TOTPSecret,
		&preferred, &u.CreatedAt, &u.LastModifiedAt, &lastPasswordModified,
	)
	if err != nil {
		return domain.User{}, r.c.mapErr(err)
	}
	u.PasswordHash = mapNullStringPtr(hash)
	u.PreferredMerchantID = mapNullStringPtr(preferred)
	u.TOTPStatus = domain.TOTPStatus(totpStatus)
	u.LastPasswordModifiedAt = mapNullTimePtr(lastPasswordModified)
	u.CreatedAt = u.CreatedAt.UTC()
	u.LastModifiedAt = u.LastModifiedAt.UTC()
	return u, nil
}

func (r *usersRepo) UpdatePassword(ctx context.Context, userID, hash string, now time.Time) error {
	return r.c.execOne(ctx,
		`UPDATE users SET password_hash = ?, last_password_modified_at = ?, last_modified_at = ? WHERE user_id = ?`,
		hash, now.UTC(), now.UTC(), userID,
	)
}

func (r *usersRepo) UpdateTOTP(ctx context.Context, userID string, status domain.TOTPStatus, secret []byte, now time.Time) error {
	return r.c.execOne(ctx,
		`UPDATE users SET totp_status = ?, totp_secret = ?, last_modified_at = ? WHERE user_id = ?`,
		string(status), secret, now.UTC(), userID,
	)
}

func (r *usersRepo) MarkVerified(ctx context.Context, userID string, now time.Time) error {
	return r.c.execOne(ctx,
		`UPDATE users SET is_verified = TRUE, last_modified_at = ? WHERE user_id = ?`,
		now.UTC(), userID,
	)
}

func (r *usersRepo) SetPreferredMerchant(ctx context.Context, userID, merchantID string, now time.Time) error {
	return r.c.execOne(ctx,
		`UPDATE users SET preferred_merchant_id = ?, last_modified_at = ? WHERE user_id = ?`,
		merchantID, now.UTC(), userID,
	)
}
