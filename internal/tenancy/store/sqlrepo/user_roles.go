package sqlrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store"
	"github.com/aussiebroadwan/tenancy/pkg/idx"
)

type userRolesRepo struct {
	c  conn
	db *sql.DB // nil inside a caller's transaction
}

const userRoleColumns = `id, user_id, role_id, org_id, merchant_id, profile_id, entity_id, entity_type,
	status, created_by, last_modified_by, created_at, last_modified, version`

var errEmptyPayload = errors.New("sqlrepo: empty user role payload")

func (r *userRolesRepo) Insert(ctx context.Context, p store.InsertUserRolePayload) ([]domain.UserRole, error) {
	rows := p.Rows()
	if len(rows) == 0 {
		return nil, errEmptyPayload
	}
	for i := range rows {
		if rows[i].ID == "" {
			rows[i].ID = idx.Prefixed("urole")
		}
	}

	err := atomically(ctx, r.db, r.c, func(c conn) error {
		for _, row := range rows {
			if err := insertUserRole(ctx, c, row); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func insertUserRole(ctx context.Context, c conn, ur domain.UserRole) error {
	var entityType sql.NullString
	if ur.EntityType != nil {
		entityType = sql.NullString{String: string(*ur.EntityType), Valid: true}
	}
	_, err := c.exec(ctx,
		`INSERT INTO user_roles (`+userRoleColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ur.ID, ur.UserID, ur.RoleID, ur.OrgID,
		mapOptionalString(ur.MerchantID), mapOptionalString(ur.ProfileID), mapOptionalString(ur.EntityID), entityType,
		string(ur.Status), ur.CreatedBy, ur.LastModifiedBy, ur.CreatedAt.UTC(), ur.LastModified.UTC(), string(ur.Version),
	)
	return err
}

func (r *userRolesRepo) ListByUser(ctx context.Context, userID string, version domain.RoleVersion) ([]domain.UserRole, error) {
	rows, err := r.c.query(ctx,
		`SELECT `+userRoleColumns+` FROM user_roles WHERE user_id = ? AND version = ? ORDER BY created_at, id`,
		userID, string(version),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.UserRole
	for rows.Next() {
		var (
			ur                                        domain.UserRole
			merchantID, profileID, entityID, entityTy sql.NullString
			status, ver                               string
		)
		if err := rows.Scan(
			&ur.ID, &ur.UserID, &ur.RoleID, &ur.OrgID, &merchantID, &profileID, &entityID, &entityTy,
			&status, &ur.CreatedBy, &ur.LastModifiedBy, &ur.CreatedAt, &ur.LastModified, &ver,
		); err != nil {
			return nil, err
		}
		ur.MerchantID = mapNullStringPtr(merchantID)
		ur.ProfileID = mapNullStringPtr(profileID)
		ur.EntityID = mapNullStringPtr(entityID)
		if entityTy.Valid {
			et := domain.EntityType(entityTy.String)
			ur.EntityType = &et
		}
		ur.Status = domain.UserStatus(status)
		ur.Version = domain.RoleVersion(ver)
		ur.CreatedAt = ur.CreatedAt.UTC()
		ur.LastModified = ur.LastModified.UTC()
		out = append(out, ur)
	}
	return out, rows.Err()
}

func (r *userRolesRepo) ActivateForUser(ctx context.Context, userID, orgID, modifiedBy string, now time.Time) (int64, error) {
	res, err := r.c.exec(ctx,
		`UPDATE user_roles SET status = ?, last_modified_by = ?, last_modified = ?
		 WHERE user_id = ? AND org_id = ? AND status = ?`,
		string(domain.UserStatusActive), modifiedBy, now.UTC(),
		userID, orgID, string(domain.UserStatusInvitationSent),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
