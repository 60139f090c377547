//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"soulbound/internal/registry/store"
	"soulbound/pkg/platform/sentinel"
	"soulbound/pkg/testutil/containers"
)

type PostgresRegistrySuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
}

func TestPostgresRegistrySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresRegistrySuite))
}

func (s *PostgresRegistrySuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = store.NewPostgres(s.postgres.Pool)
}

func (s *PostgresRegistrySuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "registry_config"))
}

func (s *PostgresRegistrySuite) TestUnsetReadsNotFound() {
	_, err := s.store.BaseLocator(context.Background())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresRegistrySuite) TestSetAndOverwrite() {
	ctx := context.Background()

	s.Require().NoError(s.store.SetBaseLocator(ctx, "https://tokens.example/"))
	got, err := s.store.BaseLocator(ctx)
	s.Require().NoError(err)
	s.Equal("https://tokens.example/", got)

	s.Require().NoError(s.store.SetBaseLocator(ctx, ""))
	got, err = s.store.BaseLocator(ctx)
	s.Require().NoError(err)
	s.Equal("", got, "an explicit empty base is stored, not treated as unset")
}
