//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"soulbound/internal/authority/store"
	"soulbound/pkg/domain"
	"soulbound/pkg/platform/sentinel"
	"soulbound/pkg/testutil/containers"
)

type PostgresAuthoritySuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
}

func TestPostgresAuthoritySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresAuthoritySuite))
}

func (s *PostgresAuthoritySuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = store.NewPostgres(s.postgres.Pool)
}

func (s *PostgresAuthoritySuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "registry_config"))
}

func admin(suffix byte) domain.Address {
	var a domain.Address
	a[0] = 0xad
	a[19] = suffix
	return a
}

func (s *PostgresAuthoritySuite) TestEmptySlotReadsNotFound() {
	_, err := s.store.Administrator(context.Background())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresAuthoritySuite) TestSeedIsIdempotent() {
	ctx := context.Background()

	s.Require().NoError(s.store.Seed(ctx, admin(1)))
	s.Require().NoError(s.store.Seed(ctx, admin(2)), "second seed is a no-op")

	got, err := s.store.Administrator(ctx)
	s.Require().NoError(err)
	s.Equal(admin(1), got)
}

func (s *PostgresAuthoritySuite) TestSeedDoesNotResurrectRenounced() {
	ctx := context.Background()

	s.Require().NoError(s.store.Seed(ctx, admin(1)))
	s.Require().NoError(s.store.SetAdministrator(ctx, domain.ZeroAddress))

	// A restart re-runs Seed; the zero slot must survive it.
	s.Require().NoError(s.store.Seed(ctx, admin(1)))

	got, err := s.store.Administrator(ctx)
	s.Require().NoError(err)
	s.Equal(domain.ZeroAddress, got)
}

func (s *PostgresAuthoritySuite) TestTransferPersists() {
	ctx := context.Background()

	s.Require().NoError(s.store.Seed(ctx, admin(1)))
	s.Require().NoError(s.store.SetAdministrator(ctx, admin(2)))

	got, err := s.store.Administrator(ctx)
	s.Require().NoError(err)
	s.Equal(admin(2), got)
}
