package sqlrepo

import (
	"context"
	"strings"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
)

type rolesRepo struct {
	c conn
}

const roleColumns = `role_id, role_name, org_id, scope, permission_groups, is_internal, created_by, created_at`

func (r *rolesRepo) InsertRole(ctx context.Context, role domain.Role) error {
	_, err := r.c.exec(ctx,
		`INSERT INTO roles (`+roleColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		role.ID, role.Name, role.OrgID, string(role.Scope), strings.Join(role.Groups, " "),
		role.IsInternal, role.CreatedBy, role.CreatedAt.UTC(),
	)
	return err
}

func (r *rolesRepo) GetRole(ctx context.Context, id string) (domain.Role, error) {
	role, err := scanRole(r.c.queryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE role_id = ?`, id))
	if err != nil {
		return domain.Role{}, r.c.mapErr(err)
	}
	return role, nil
}

func (r *rolesRepo) ListRolesByOrg(ctx context.Context, orgID string) ([]domain.Role, error) {
	rows, err := r.c.query(ctx,
		`SELECT `+roleColumns+` FROM roles WHERE org_id = ? ORDER BY role_name`, orgID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, role)
	}
	return out, rows.Err()
}

func scanRole(s scanner) (domain.Role, error) {
	var (
		role          domain.Role
		scope, groups string
	)
	if err := s.Scan(&role.ID, &role.Name, &role.OrgID, &scope, &groups, &role.IsInternal, &role.CreatedBy, &role.CreatedAt); err != nil {
		return domain.Role{}, err
	}
	role.Scope = domain.EntityType(scope)
	role.Groups = splitAndFilter(groups)
	role.CreatedAt = role.CreatedAt.UTC()
	return role, nil
}
