package sqlrepo

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
)

type organizationsRepo struct {
	c conn
}

func (r *organizationsRepo) InsertOrganization(ctx context.Context, o domain.Organization) error {
	_, err := r.c.exec(ctx,
		`INSERT INTO organizations (org_id, org_name, created_at) VALUES (?, ?, ?)`,
		o.ID, mapOptionalString(o.Name), o.CreatedAt.UTC(),
	)
	return err
}

func (r *organizationsRepo) GetOrganization(ctx context.Context, id string) (domain.Organization, error) {
	var (
		o    domain.Organization
		name sql.NullString
	)
	err := r.c.queryRow(ctx,
		`SELECT org_id, org_name, created_at FROM organizations WHERE org_id = ?`, id,
	).Scan(&o.ID, &name, &o.CreatedAt)
	if err != nil {
		return domain.Organization{}, r.c.mapErr(err)
	}
	o.Name = mapNullStringPtr(name)
	o.CreatedAt = o.CreatedAt.UTC()
	return o, nil
}
