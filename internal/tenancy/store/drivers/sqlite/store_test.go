package sqlite_test

import (
	"testing"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/store/drivers/sqlite"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store/storetest"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func TestStore(t *testing.T) {
	t.Parallel()
	storetest.Run(t, newStore(t))
}

func TestApplyMigrationsIsIdempotent(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	require.NoError(t, s.ApplyMigrations())
}

func TestFileBackedStore(t *testing.T) {
	t.Parallel()

	path := t.TempDir() + "/tenancy.db"
	s, err := sqlite.NewStore(path)
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	require.NoError(t, s.Close())

	s, err = sqlite.NewStore(path)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.ApplyMigrations())

	org := storetest.Org(t, s)
	_, err = s.Organizations().GetOrganization(t.Context(), org.ID)
	require.NoError(t, err)
}
