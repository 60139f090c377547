// Package registry exercises the assembled HTTP surface end to end: the
// full router with in-memory stores, real services, real JWT auth, and
// real authority signatures.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcec"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/suite"

	authorityhandler "soulbound/internal/authority/handler"
	authoritysvc "soulbound/internal/authority/service"
	authoritystore "soulbound/internal/authority/store"
	"soulbound/internal/crypto"
	"soulbound/internal/issuance/codec"
	issuancehandler "soulbound/internal/issuance/handler"
	"soulbound/internal/issuance/reserve"
	issuancesvc "soulbound/internal/issuance/service"
	jwttoken "soulbound/internal/jwt_token"
	ledgerhandler "soulbound/internal/ledger/handler"
	ledgersvc "soulbound/internal/ledger/service"
	ledgerstore "soulbound/internal/ledger/store"
	registryhandler "soulbound/internal/registry/handler"
	registrysvc "soulbound/internal/registry/service"
	registrystore "soulbound/internal/registry/store"
	skillshandler "soulbound/internal/skills/handler"
	skillssvc "soulbound/internal/skills/service"
	skillsstore "soulbound/internal/skills/store"
	httptransport "soulbound/internal/transport/http"
	"soulbound/pkg/domain"
	txctx "soulbound/pkg/platform/tx"
)

type RegistryFlowSuite struct {
	suite.Suite
	router http.Handler
	jwt    *jwttoken.JWTService

	adminKey *btcec.PrivateKey
	admin    domain.Address
	alice    domain.Address
	bob      domain.Address
}

func TestRegistryFlowSuite(t *testing.T) {
	suite.Run(t, new(RegistryFlowSuite))
}

func (s *RegistryFlowSuite) SetupTest() {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	key, err := crypto.GenerateKey()
	s.Require().NoError(err)
	s.adminKey = key
	s.admin = crypto.AddressOf(key)
	s.alice = domain.MustParseAddress("0x00000000000000000000000000000000000a11ce")
	s.bob = domain.MustParseAddress("0x0000000000000000000000000000000000000b0b")

	authority := authoritysvc.New(authoritystore.NewMemory(), authoritysvc.WithLogger(log))
	s.Require().NoError(authority.Bootstrap(context.Background(), s.admin))

	ledger := ledgersvc.New(ledgerstore.NewMemory(), authority, ledgersvc.WithLogger(log))
	skills := skillssvc.New(skillsstore.NewMemory(), authority, ledger, skillssvc.WithLogger(log))
	locators := registrysvc.New(registrystore.NewMemory(), authority, ledger, registrysvc.WithLogger(log))
	issuance := issuancesvc.New(ledger, skills, authority, txctx.NewMutexRunner(),
		issuancesvc.WithLogger(log),
		issuancesvc.WithReserver(reserve.NewMemory()),
	)

	s.jwt = jwttoken.NewJWTService("flow-test-key", "soulbound-registry", "soulbound-registry")
	s.router = httptransport.NewRouter(httptransport.Handlers{
		Ledger:    ledgerhandler.New(ledger, locators, log),
		Issuance:  issuancehandler.New(issuance, log),
		Skills:    skillshandler.New(skills, log),
		Authority: authorityhandler.New(authority, log),
		Registry:  registryhandler.New(locators, log),
	}, httptransport.Options{
		Logger:    log,
		Validator: s.jwt,
	})
}

func (s *RegistryFlowSuite) do(method, path string, as domain.Address, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if !as.IsZero() {
		token, err := s.jwt.GenerateSignerToken(as, time.Hour)
		s.Require().NoError(err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func (s *RegistryFlowSuite) decode(rr *httptest.ResponseRecorder, dst any) {
	s.Require().NoError(json.NewDecoder(rr.Body).Decode(dst))
}

// mintBody signs a mint payload with the administrator key, the way the
// mintsign tool does.
func (s *RegistryFlowSuite) mintBody(to domain.Address, ids []uint64, values []string) map[string]any {
	skillIDs := make([]domain.SkillID, len(ids))
	for i, id := range ids {
		skillIDs[i] = domain.SkillID(id)
	}
	amounts := make([]*uint256.Int, len(values))
	for i, raw := range values {
		amount, err := uint256.FromDecimal(raw)
		s.Require().NoError(err)
		amounts[i] = amount
	}
	sig, err := crypto.Sign(codec.SignedHash(to, skillIDs, amounts), s.adminKey)
	s.Require().NoError(err)
	return map[string]any{
		"recipient":    to.Hex(),
		"skill_ids":    ids,
		"skill_values": values,
		"signature":    sig.Hex(),
	}
}

func (s *RegistryFlowSuite) TestCredentialLifecycle() {
	// The administrator defines the skill catalog.
	rr := s.do(http.MethodPost, "/v1/skills", s.admin, map[string]any{"names": []string{"strength", "wisdom"}})
	s.Require().Equal(http.StatusCreated, rr.Code, rr.Body.String())

	// A signed mint issues alice's credential with both values.
	rr = s.do(http.MethodPost, "/v1/tokens/mint", domain.ZeroAddress,
		s.mintBody(s.alice, []uint64{0, 1}, []string{"100", "250"}))
	s.Require().Equal(http.StatusCreated, rr.Code, rr.Body.String())
	var minted struct {
		TokenID domain.TokenID `json:"token_id"`
		Owner   domain.Address `json:"owner"`
	}
	s.decode(rr, &minted)
	s.Equal(domain.TokenID(0), minted.TokenID)
	s.Equal(s.alice, minted.Owner)

	// Public reads see the new state.
	rr = s.do(http.MethodGet, "/v1/tokens/0/owner", domain.ZeroAddress, nil)
	s.Require().Equal(http.StatusOK, rr.Code)
	var owner struct {
		Owner domain.Address `json:"owner"`
	}
	s.decode(rr, &owner)
	s.Equal(s.alice, owner.Owner)

	rr = s.do(http.MethodGet, "/v1/tokens/0/skills/1", domain.ZeroAddress, nil)
	s.Require().Equal(http.StatusOK, rr.Code)
	var value struct {
		Value string `json:"value"`
	}
	s.decode(rr, &value)
	s.Equal("250", value.Value)

	rr = s.do(http.MethodGet, "/v1/supply", domain.ZeroAddress, nil)
	s.Require().Equal(http.StatusOK, rr.Code)
	var supply struct {
		TotalIssued uint64 `json:"total_issued"`
	}
	s.decode(rr, &supply)
	s.Equal(uint64(1), supply.TotalIssued)

	// Even the owner cannot move a credential.
	rr = s.do(http.MethodPost, "/v1/tokens/0/transfer", s.alice,
		map[string]any{"from": s.alice.Hex(), "to": s.bob.Hex()})
	s.Require().Equal(http.StatusForbidden, rr.Code)
	var transferErr struct {
		Reason string `json:"reason"`
	}
	s.decode(rr, &transferErr)
	s.Equal("non_transferable", transferErr.Reason)

	// The administrator revokes it; the id is spent for good.
	rr = s.do(http.MethodPost, "/v1/tokens/0/burn", s.admin, nil)
	s.Require().Equal(http.StatusNoContent, rr.Code)

	rr = s.do(http.MethodGet, "/v1/tokens/0/owner", domain.ZeroAddress, nil)
	s.Require().Equal(http.StatusNotFound, rr.Code)

	rr = s.do(http.MethodPost, "/v1/tokens/mint", domain.ZeroAddress,
		s.mintBody(s.alice, nil, nil))
	s.Require().Equal(http.StatusCreated, rr.Code, rr.Body.String())
	s.decode(rr, &minted)
	s.Equal(domain.TokenID(1), minted.TokenID, "burned ids are never reissued")
}

func (s *RegistryFlowSuite) TestSecondMintForHolderConflicts() {
	rr := s.do(http.MethodPost, "/v1/tokens/mint", domain.ZeroAddress, s.mintBody(s.alice, nil, nil))
	s.Require().Equal(http.StatusCreated, rr.Code)

	rr = s.do(http.MethodPost, "/v1/tokens/mint", domain.ZeroAddress, s.mintBody(s.alice, nil, nil))
	s.Require().Equal(http.StatusConflict, rr.Code)
	var conflict struct {
		Reason string `json:"reason"`
	}
	s.decode(rr, &conflict)
	s.Equal("already_issued", conflict.Reason)
}

func (s *RegistryFlowSuite) TestTamperedMintRejected() {
	body := s.mintBody(s.alice, []uint64{0}, []string{"5"})
	body["recipient"] = s.bob.Hex()

	rr := s.do(http.MethodPost, "/v1/tokens/mint", domain.ZeroAddress, body)
	s.Require().Equal(http.StatusUnauthorized, rr.Code)

	rr = s.do(http.MethodGet, "/v1/addresses/"+s.bob.Hex()+"/balance", domain.ZeroAddress, nil)
	s.Require().Equal(http.StatusOK, rr.Code)
	var balance struct {
		Balance uint64 `json:"balance"`
	}
	s.decode(rr, &balance)
	s.Zero(balance.Balance, "a rejected mint must leave no trace")
}

func (s *RegistryFlowSuite) TestMutationsRequireSignerToken() {
	rr := s.do(http.MethodPost, "/v1/skills", domain.ZeroAddress, map[string]any{"name": "stealth"})
	s.Require().Equal(http.StatusUnauthorized, rr.Code)
}

func (s *RegistryFlowSuite) TestNonAdministratorForbidden() {
	rr := s.do(http.MethodPost, "/v1/skills", s.alice, map[string]any{"name": "stealth"})
	s.Require().Equal(http.StatusForbidden, rr.Code)
}

func (s *RegistryFlowSuite) TestLocatorFollowsBase() {
	rr := s.do(http.MethodPut, "/v1/config/base-locator", s.admin,
		map[string]any{"base_locator": "https://credentials.example/t/"})
	s.Require().Equal(http.StatusNoContent, rr.Code, rr.Body.String())

	rr = s.do(http.MethodPost, "/v1/tokens/mint", domain.ZeroAddress, s.mintBody(s.alice, nil, nil))
	s.Require().Equal(http.StatusCreated, rr.Code)

	rr = s.do(http.MethodGet, "/v1/tokens/0/locator", domain.ZeroAddress, nil)
	s.Require().Equal(http.StatusOK, rr.Code)
	var locator struct {
		Locator string `json:"locator"`
	}
	s.decode(rr, &locator)
	s.Equal("https://credentials.example/t/0", locator.Locator)
}

func (s *RegistryFlowSuite) TestAdministratorHandoverAndRenounce() {
	// Hand the slot to bob; the old administrator loses the gate.
	rr := s.do(http.MethodPost, "/v1/admin/transfer", s.admin,
		map[string]any{"new_administrator": s.bob.Hex()})
	s.Require().Equal(http.StatusNoContent, rr.Code)

	rr = s.do(http.MethodPost, "/v1/skills", s.admin, map[string]any{"name": "stealth"})
	s.Require().Equal(http.StatusForbidden, rr.Code)

	rr = s.do(http.MethodGet, "/v1/admin", domain.ZeroAddress, nil)
	s.Require().Equal(http.StatusOK, rr.Code)
	var admin struct {
		Administrator domain.Address `json:"administrator"`
	}
	s.decode(rr, &admin)
	s.Equal(s.bob, admin.Administrator)

	// The authority tracks the administrator, so the old key can no
	// longer authorize mints.
	rr = s.do(http.MethodPost, "/v1/tokens/mint", domain.ZeroAddress, s.mintBody(s.alice, nil, nil))
	s.Require().Equal(http.StatusUnauthorized, rr.Code)

	// Renouncing ends administration permanently, for bob included.
	rr = s.do(http.MethodPost, "/v1/admin/renounce", s.bob, nil)
	s.Require().Equal(http.StatusNoContent, rr.Code)

	rr = s.do(http.MethodPost, "/v1/admin/transfer", s.bob,
		map[string]any{"new_administrator": s.admin.Hex()})
	s.Require().Equal(http.StatusForbidden, rr.Code)

	rr = s.do(http.MethodGet, "/v1/admin", domain.ZeroAddress, nil)
	s.decode(rr, &admin)
	s.True(admin.Administrator.IsZero())
}

func (s *RegistryFlowSuite) TestHealthz() {
	rr := s.do(http.MethodGet, "/healthz", domain.ZeroAddress, nil)
	s.Require().Equal(http.StatusOK, rr.Code)
	s.Contains(rr.Body.String(), "ok")
}
