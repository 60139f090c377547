package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"soulbound/internal/audit"
	authsvc "soulbound/internal/authority/service"
	authstore "soulbound/internal/authority/store"
	ledgersvc "soulbound/internal/ledger/service"
	ledgerstore "soulbound/internal/ledger/store"
	"soulbound/internal/registry/service"
	"soulbound/internal/registry/store"
	"soulbound/pkg/domain"
	"soulbound/pkg/requestcontext"
)

var (
	admin  = domain.MustParseAddress("0x0000000000000000000000000000000000000ad0")
	holder = domain.MustParseAddress("0x00000000000000000000000000000000000000aa")
)

type LocatorSuite struct {
	suite.Suite
	svc    *service.Service
	ledger *ledgersvc.Service
}

func (s *LocatorSuite) SetupTest() {
	authority := authsvc.New(authstore.NewMemory())
	s.Require().NoError(authority.Bootstrap(context.Background(), admin))

	s.ledger = ledgersvc.New(ledgerstore.NewMemory(), authority)
	s.svc = service.New(store.NewMemory(), authority, s.ledger)
}

func TestLocatorSuite(t *testing.T) {
	suite.Run(t, new(LocatorSuite))
}

func (s *LocatorSuite) as(caller domain.Address) context.Context {
	return requestcontext.WithCaller(context.Background(), caller)
}

func (s *LocatorSuite) TestBaseLocator() {
	s.Run("empty before first set", func() {
		base, err := s.svc.BaseLocator(context.Background())
		s.Require().NoError(err)
		s.Empty(base)
	})

	s.Run("administrator sets it", func() {
		s.Require().NoError(s.svc.SetBaseLocator(s.as(admin), "https://registry.example/tokens/"))
		base, err := s.svc.BaseLocator(context.Background())
		s.Require().NoError(err)
		s.Equal("https://registry.example/tokens/", base)
	})

	s.Run("non-administrator is rejected", func() {
		err := s.svc.SetBaseLocator(s.as(holder), "https://evil.example/")
		s.Require().ErrorIs(err, authsvc.ErrNotAdministrator)
	})

	s.Run("empty base is a valid overwrite", func() {
		s.Require().NoError(s.svc.SetBaseLocator(s.as(admin), ""))
		base, err := s.svc.BaseLocator(context.Background())
		s.Require().NoError(err)
		s.Empty(base)
	})
}

func (s *LocatorSuite) TestTokenLocator() {
	token, err := s.ledger.Mint(context.Background(), holder)
	s.Require().NoError(err)

	s.Run("unknown token has no locator", func() {
		_, err := s.svc.TokenLocator(context.Background(), 99)
		s.Require().ErrorIs(err, ledgersvc.ErrNotMinted)
	})

	s.Run("bare decimal id before the base is set", func() {
		locator, err := s.svc.TokenLocator(context.Background(), token.ID)
		s.Require().NoError(err)
		s.Equal("0", locator)
	})

	s.Run("base prefix plus decimal id", func() {
		s.Require().NoError(s.svc.SetBaseLocator(s.as(admin), "https://registry.example/tokens/"))
		locator, err := s.svc.TokenLocator(context.Background(), token.ID)
		s.Require().NoError(err)
		s.Equal("https://registry.example/tokens/0", locator)
	})

	s.Run("derived on read, so base changes apply retroactively", func() {
		s.Require().NoError(s.svc.SetBaseLocator(s.as(admin), "ipfs://meta/"))
		locator, err := s.svc.TokenLocator(context.Background(), token.ID)
		s.Require().NoError(err)
		s.Equal("ipfs://meta/0", locator)
	})
}

func (s *LocatorSuite) TestSetBaseLocatorAudited() {
	recorder := &recorderStub{}
	svc := service.New(store.NewMemory(), alwaysAdmin{}, s.ledger,
		service.WithRecorder(recorder),
	)
	s.Require().NoError(svc.SetBaseLocator(context.Background(), "https://registry.example/"))
	s.Require().Len(recorder.events, 1)
	s.Equal(audit.ActionBaseLocatorSet, recorder.events[0].Action)
}

type alwaysAdmin struct{}

func (alwaysAdmin) RequireAdministrator(_ context.Context) error { return nil }

type recorderStub struct {
	events []audit.Event
}

func (r *recorderStub) Emit(_ context.Context, event audit.Event) {
	r.events = append(r.events, event)
}
