package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/suite"

	authoritysvc "soulbound/internal/authority/service"
	ledgersvc "soulbound/internal/ledger/service"
	ledgerstore "soulbound/internal/ledger/store"
	"soulbound/internal/skills/service"
	"soulbound/internal/skills/store"
	"soulbound/pkg/domain"
	"soulbound/pkg/requestcontext"
)

var (
	admin    = domain.MustParseAddress("0x00000000000000000000000000000000000000ad")
	holder   = domain.MustParseAddress("0x00000000000000000000000000000000000000aa")
	stranger = domain.MustParseAddress("0x00000000000000000000000000000000000000ee")
)

type adminsStub struct {
	admin domain.Address
}

func (a adminsStub) RequireAdministrator(ctx context.Context) error {
	caller := requestcontext.Caller(ctx)
	if caller.IsZero() || caller != a.admin {
		return fmt.Errorf("caller %s: %w", caller, authoritysvc.ErrNotAdministrator)
	}
	return nil
}

type SkillsServiceSuite struct {
	suite.Suite
	svc    *service.Service
	ledger *ledgersvc.Service
}

func (s *SkillsServiceSuite) SetupTest() {
	s.ledger = ledgersvc.New(ledgerstore.NewMemory(), nil)
	s.svc = service.New(store.NewMemory(), adminsStub{admin: admin}, s.ledger)
}

func TestSkillsServiceSuite(t *testing.T) {
	suite.Run(t, new(SkillsServiceSuite))
}

func (s *SkillsServiceSuite) as(caller domain.Address) context.Context {
	return requestcontext.WithCaller(context.Background(), caller)
}

func (s *SkillsServiceSuite) TestCatalog() {
	s.Run("appends assign sequential positions", func() {
		speed, err := s.svc.AddSkill(s.as(admin), "speed")
		s.Require().NoError(err)
		s.Equal(domain.SkillID(0), speed.ID)

		added, err := s.svc.AddSkills(s.as(admin), []string{"strength", "stamina"})
		s.Require().NoError(err)
		s.Require().Len(added, 2)
		s.Equal(domain.SkillID(1), added[0].ID)
		s.Equal(domain.SkillID(2), added[1].ID)

		count, err := s.svc.SkillCount(context.Background())
		s.Require().NoError(err)
		s.Equal(uint64(3), count)
	})

	s.Run("edits rename in place", func() {
		_, err := s.svc.AddSkill(s.as(admin), "speeed")
		s.Require().NoError(err)

		s.Require().NoError(s.svc.EditSkill(s.as(admin), 0, "speed"))
		skill, err := s.svc.Skill(context.Background(), 0)
		s.Require().NoError(err)
		s.Equal("speed", skill.Name)
	})

	s.Run("edit past the end is out of range", func() {
		err := s.svc.EditSkill(s.as(admin), 99, "nope")
		s.Require().ErrorIs(err, service.ErrIndexOutOfRange)
	})

	s.Run("reads past the end are out of range", func() {
		_, err := s.svc.Skill(context.Background(), 99)
		s.Require().ErrorIs(err, service.ErrIndexOutOfRange)
	})

	s.Run("non-administrators cannot mutate", func() {
		_, err := s.svc.AddSkill(s.as(stranger), "hack")
		s.Require().ErrorIs(err, authoritysvc.ErrNotAdministrator)

		err = s.svc.EditSkill(context.Background(), 0, "hack")
		s.Require().ErrorIs(err, authoritysvc.ErrNotAdministrator)
	})
}

func (s *SkillsServiceSuite) TestSkillValues() {
	token, err := s.ledger.Mint(context.Background(), holder)
	s.Require().NoError(err)

	s.Run("defaults to the zero word", func() {
		amount, err := s.svc.SkillValue(context.Background(), token.ID, 7)
		s.Require().NoError(err)
		s.True(amount.IsZero())
	})

	s.Run("last write wins", func() {
		s.Require().NoError(s.svc.EditSkillValue(s.as(admin), token.ID, 0, uint256.NewInt(10)))
		s.Require().NoError(s.svc.EditSkillValue(s.as(admin), token.ID, 0, uint256.NewInt(25)))

		amount, err := s.svc.SkillValue(context.Background(), token.ID, 0)
		s.Require().NoError(err)
		s.Equal(uint256.NewInt(25), amount)
	})

	s.Run("explicit zero is indistinguishable from unset", func() {
		s.Require().NoError(s.svc.EditSkillValue(s.as(admin), token.ID, 1, uint256.NewInt(0)))
		amount, err := s.svc.SkillValue(context.Background(), token.ID, 1)
		s.Require().NoError(err)
		s.True(amount.IsZero())
	})

	s.Run("values may reference catalog positions that do not exist", func() {
		s.Require().NoError(s.svc.EditSkillValue(s.as(admin), token.ID, 500, uint256.NewInt(3)))
		amount, err := s.svc.SkillValue(context.Background(), token.ID, 500)
		s.Require().NoError(err)
		s.Equal(uint256.NewInt(3), amount)
	})

	s.Run("edits require a live token", func() {
		err := s.svc.EditSkillValue(s.as(admin), 99, 0, uint256.NewInt(1))
		s.Require().ErrorIs(err, ledgersvc.ErrNotMinted)
	})

	s.Run("edits require the administrator", func() {
		err := s.svc.EditSkillValue(s.as(stranger), token.ID, 0, uint256.NewInt(1))
		s.Require().ErrorIs(err, authoritysvc.ErrNotAdministrator)
	})

	s.Run("values survive burns", func() {
		s.Require().NoError(s.svc.EditSkillValue(s.as(admin), token.ID, 2, uint256.NewInt(42)))
		s.Require().NoError(s.ledger.Burn(s.as(holder), token.ID))

		amount, err := s.svc.SkillValue(context.Background(), token.ID, 2)
		s.Require().NoError(err)
		s.Equal(uint256.NewInt(42), amount)

		// But further edits are rejected: the token no longer exists.
		err = s.svc.EditSkillValue(s.as(admin), token.ID, 2, uint256.NewInt(1))
		s.Require().ErrorIs(err, ledgersvc.ErrNotMinted)
	})
}

func (s *SkillsServiceSuite) TestWriteMintedValues() {
	token, err := s.ledger.Mint(context.Background(), holder)
	s.Require().NoError(err)

	ids := []domain.SkillID{0, 1}
	amounts := []*uint256.Int{uint256.NewInt(10), uint256.NewInt(20)}
	s.Require().NoError(s.svc.WriteMintedValues(context.Background(), token.ID, ids, amounts))

	for i, id := range ids {
		amount, err := s.svc.SkillValue(context.Background(), token.ID, id)
		s.Require().NoError(err)
		s.Equal(amounts[i], amount)
	}
}
