package sqlrepo

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/enums"
)

type merchantsRepo struct {
	c conn
}

const merchantColumns = `merchant_id, org_id, merchant_name, routing_algorithm, return_url, webhook_url, publishable_key, created_at`

func (r *merchantsRepo) InsertMerchant(ctx context.Context, m domain.MerchantAccount) error {
	var routing sql.NullString
	if m.RoutingAlgorithm != nil {
		routing = sql.NullString{String: string(*m.RoutingAlgorithm), Valid: true}
	}
	_, err := r.c.exec(ctx,
		`INSERT INTO merchants (`+merchantColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.OrgID, mapOptionalString(m.Name), routing,
		mapOptionalString(m.ReturnURL), mapOptionalString(m.WebhookURL),
		m.PublishableKey, m.CreatedAt.UTC(),
	)
	return err
}

func (r *merchantsRepo) GetMerchant(ctx context.Context, id string) (domain.MerchantAccount, error) {
	m, err := scanMerchant(r.c.queryRow(ctx,
		`SELECT `+merchantColumns+` FROM merchants WHERE merchant_id = ?`, id,
	))
	if err != nil {
		return domain.MerchantAccount{}, r.c.mapErr(err)
	}
	return m, nil
}

func (r *merchantsRepo) ListMerchantsByOrg(ctx context.Context, orgID string) ([]domain.MerchantAccount, error) {
	rows, err := r.c.query(ctx,
		`SELECT `+merchantColumns+` FROM merchants WHERE org_id = ? ORDER BY created_at, merchant_id`, orgID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.MerchantAccount
	for rows.Next() {
		m, err := scanMerchant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *merchantsRepo) DeleteMerchant(ctx context.Context, id string) error {
	return r.c.execOne(ctx, `DELETE FROM merchants WHERE merchant_id = ?`, id)
}

func scanMerchant(s scanner) (domain.MerchantAccount, error) {
	var (
		m                                   domain.MerchantAccount
		name, routing, returnURL, webhookURL sql.NullString
	)
	if err := s.Scan(&m.ID, &m.OrgID, &name, &routing, &returnURL, &webhookURL, &m.PublishableKey, &m.CreatedAt); err != nil {
		return domain.MerchantAccount{}, err
	}
	m.Name = mapNullStringPtr(name)
	m.ReturnURL = mapNullStringPtr(returnURL)
	m.WebhookURL = mapNullStringPtr(webhookURL)
	if routing.Valid {
		algo := enums.RoutingAlgorithm(routing.String)
		m.RoutingAlgorithm = &algo
	}
	m.CreatedAt = m.CreatedAt.UTC()
	return m, nil
}
