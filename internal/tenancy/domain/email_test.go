package domain_test

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/stretchr/testify/require"
)

func TestEmailParser(t *testing.T) {
	t.Parallel()

	p := domain.NewEmailParser(domain.DefaultDomainBlocklist())

	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"valid", "jane@example.com", "jane@example.com", false},
		{"normalised", "  Jane@Example.COM ", "jane@example.com", false},
		{"blocked domain", "anyone@mailinator.com", "", true},
		{"blocked domain any case", "anyone@MAILINATOR.com", "", true},
		{"missing at", "jane.example.com", "", true},
		{"missing local", "@example.com", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, err := p.Parse(tt.raw)
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrValidation)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, e.String())
		})
	}
}

func TestEmailParser_BlockedReason(t *testing.T) {
	t.Parallel()

	p := domain.NewEmailParser(domain.DefaultDomainBlocklist())
	_, err := p.Parse("x@yopmail.com")

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "email", verr.Field)
	require.Contains(t, verr.Reason, "yopmail.com")
}

func TestLoadDomainBlocklist(t *testing.T) {
	t.Parallel()

	b, err := domain.LoadDomainBlocklist(strings.NewReader("# comment\n\nExample.org\n  spam.io  \n"))
	require.NoError(t, err)
	require.Equal(t, 2, b.Len())
	require.True(t, b.Contains("example.org"))
	require.True(t, b.Contains("SPAM.io"))
	require.False(t, b.Contains("comment"))

	var nilList *domain.DomainBlocklist
	require.False(t, nilList.Contains("example.org"))
}

func TestEmailParser_ConcurrentReaders(t *testing.T) {
	t.Parallel()

	p := domain.NewEmailParser(domain.DefaultDomainBlocklist())

	errs := make(chan error, 32)
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.Parse("jane@example.com")
			errs <- err
			_, err = p.Parse("jane@mailinator.com")
			if err == nil {
				errs <- errors.New("blocked domain accepted")
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
}
