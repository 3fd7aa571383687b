// Package sqlrepo implements store.Store on database/sql. Drivers supply a
// Dialect and their own migrations.
package sqlrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/store"
)

// Dialect covers the differences between the supported databases.
type Dialect interface {
	// Rebind rewrites '?' placeholders into the driver's form.
	Rebind(query string) string

	// IsUniqueViolation reports whether err came from a unique or primary
	// key constraint.
	IsUniqueViolation(err error) bool
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type conn struct {
	q querier
	d Dialect
}

func (c conn) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := c.q.ExecContext(ctx, c.d.Rebind(query), args...)
	if err != nil {
		return nil, c.mapErr(err)
	}
	return res, nil
}

// execOne fails with store.ErrNotFound when no row was touched.
func (c conn) execOne(ctx context.Context, query string, args ...any) error {
	res, err := c.exec(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (c conn) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return c.q.QueryRowContext(ctx, c.d.Rebind(query), args...)
}

func (c conn) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	rows, err := c.q.QueryContext(ctx, c.d.Rebind(query), args...)
	if err != nil {
		return nil, c.mapErr(err)
	}
	return rows, nil
}

func (c conn) mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return store.ErrNotFound
	case c.d.IsUniqueViolation(err):
		return fmt.Errorf("%w: %w", store.ErrAlreadyExists, err)
	}
	return err
}

// atomically runs fn in its own transaction when db is set, or directly on
// c when already inside the caller's transaction.
func atomically(ctx context.Context, db *sql.DB, c conn, fn func(c conn) error) error {
	if db == nil {
		return fn(c)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback() // safe to call even after commit
	}()

	if err := fn(conn{q: tx, d: c.d}); err != nil {
		return err
	}
	return tx.Commit()
}

// Store is the database/sql implementation shared by every driver. It does
// not know how to migrate; drivers wrap it and add ApplyMigrations.
type Store struct {
	db *sql.DB
	c  conn
}

func New(db *sql.DB, d Dialect) *Store {
	return &Store{db: db, c: conn{q: db, d: d}}
}

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &txStore{tx: tx, c: conn{q: tx, d: s.c.d}}, nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	// Ensure rollback is called if we panic or return early with error
	defer func() {
		_ = tx.Rollback() // safe to call even after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) Organizations() store.Organizations { return &organizationsRepo{c: s.c} }
func (s *Store) Merchants() store.Merchants         { return &merchantsRepo{c: s.c} }
func (s *Store) Users() store.Users                 { return &usersRepo{c: s.c} }
func (s *Store) UserRoles() store.UserRoles         { return &userRolesRepo{c: s.c, db: s.db} }
func (s *Store) Roles() store.Roles                 { return &rolesRepo{c: s.c} }
func (s *Store) UserKeyStores() store.UserKeyStores { return &keyStoresRepo{c: s.c} }
func (s *Store) Invites() store.Invites             { return &invitesRepo{c: s.c} }
func (s *Store) RecoveryCodes() store.RecoveryCodes { return &recoveryCodesRepo{c: s.c, db: s.db} }

type txStore struct {
	tx *sql.Tx
	c  conn
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // caller will commit/rollback and outer DB stays open

// Ping is a no-op for transactions; the connection is already established.
func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) ApplyMigrations() error { return nil } // migrations are applied before starting a tx

func (t *txStore) Organizations() store.Organizations { return &organizationsRepo{c: t.c} }
func (t *txStore) Merchants() store.Merchants         { return &merchantsRepo{c: t.c} }
func (t *txStore) Users() store.Users                 { return &usersRepo{c: t.c} }
func (t *txStore) UserRoles() store.UserRoles         { return &userRolesRepo{c: t.c} }
func (t *txStore) Roles() store.Roles                 { return &rolesRepo{c: t.c} }
func (t *txStore) UserKeyStores() store.UserKeyStores { return &keyStoresRepo{c: t.c} }
func (t *txStore) Invites() store.Invites             { return &invitesRepo{c: t.c} }
func (t *txStore) RecoveryCodes() store.RecoveryCodes { return &recoveryCodesRepo{c: t.c} }
