package handler_test

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authoritysvc "soulbound/internal/authority/service"
	authoritystore "soulbound/internal/authority/store"
	ledgersvc "soulbound/internal/ledger/service"
	ledgerstore "soulbound/internal/ledger/store"
	"soulbound/internal/skills/handler"
	skillssvc "soulbound/internal/skills/service"
	skillsstore "soulbound/internal/skills/store"
	"soulbound/pkg/domain"
	"soulbound/pkg/testutil"
)

var (
	admin   = domain.MustParseAddress("0x00000000000000000000000000000000000000ad")
	holder  = domain.MustParseAddress("0x00000000000000000000000000000000000000bb")
	someone = domain.MustParseAddress("0x00000000000000000000000000000000000000cc")
)

// harness mounts the skills handler over real services and in-memory
// stores; the caller address is injected per request instead of going
// through the signer middleware.
type harness struct {
	router chi.Router
	ledger *ledgersvc.Service
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	authority := authoritysvc.New(authoritystore.NewMemory())
	require.NoError(t, authority.Bootstrap(context.Background(), admin))
	ledger := ledgersvc.New(ledgerstore.NewMemory(), authority)
	skills := skillssvc.New(skillsstore.NewMemory(), authority, ledger)

	r := chi.NewRouter()
	h := handler.New(skills, slog.Default())
	h.RegisterPublic(r)
	h.RegisterProtected(r)
	return &harness{router: r, ledger: ledger}
}

func TestCatalogLifecycle(t *testing.T) {
	h := newHarness(t)

	testutil.Given(t, "an administrator-defined catalog", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/v1/skills",
			map[string]any{"names": []string{"speed", "strength"}})
		rec := testutil.DoRequest(h.router, testutil.WithCaller(req, admin))
		testutil.AssertStatus(t, rec, http.StatusCreated)
	})

	testutil.When(t, "the catalog is listed", func(t *testing.T) {
		rec := testutil.DoRequest(h.router, testutil.NewRequest(t, http.MethodGet, "/v1/skills"))
		testutil.AssertStatus(t, rec, http.StatusOK)

		type listResponse struct {
			Skills []struct {
				ID   uint64 `json:"id"`
				Name string `json:"name"`
			} `json:"skills"`
			Count int `json:"count"`
		}
		resp := testutil.UnmarshalResponse[listResponse](t, rec)
		require.Equal(t, 2, resp.Count)
		assert.Equal(t, "speed", resp.Skills[0].Name)
		assert.Equal(t, "strength", resp.Skills[1].Name)
	})

	testutil.Then(t, "positions resolve and renames stick", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPut, "/v1/skills/1",
			map[string]string{"name": "wisdom"})
		rec := testutil.DoRequest(h.router, testutil.WithCaller(req, admin))
		testutil.AssertStatus(t, rec, http.StatusNoContent)

		rec = testutil.DoRequest(h.router, testutil.NewRequest(t, http.MethodGet, "/v1/skills/1"))
		testutil.AssertStatus(t, rec, http.StatusOK)
		resp := testutil.UnmarshalResponse[struct {
			Name string `json:"name"`
		}](t, rec)
		assert.Equal(t, "wisdom", resp.Name)

		rec = testutil.DoRequest(h.router, testutil.NewRequest(t, http.MethodGet, "/v1/skills/9"))
		testutil.AssertStatus(t, rec, http.StatusNotFound)
		testutil.AssertErrorReason(t, rec, "index_out_of_range")
	})
}

func TestAttributeValues(t *testing.T) {
	h := newHarness(t)

	token, err := h.ledger.Mint(context.Background(), holder)
	require.NoError(t, err)
	valuePath := fmt.Sprintf("/v1/tokens/%s/skills/3", token.ID)

	req := testutil.NewJSONRequest(t, http.MethodPut, valuePath, map[string]string{"value": "250"})
	rec := testutil.DoRequest(h.router, testutil.WithCaller(req, admin))
	testutil.AssertStatus(t, rec, http.StatusNoContent)

	rec = testutil.DoRequest(h.router, testutil.NewRequest(t, http.MethodGet, valuePath))
	testutil.AssertStatus(t, rec, http.StatusOK)
	resp := testutil.UnmarshalResponse[struct {
		Value string `json:"value"`
	}](t, rec)
	assert.Equal(t, "250", resp.Value)

	// Never-written pairs read as the zero word.
	unwritten := fmt.Sprintf("/v1/tokens/%s/skills/7", token.ID)
	rec = testutil.DoRequest(h.router, testutil.NewRequest(t, http.MethodGet, unwritten))
	testutil.AssertStatus(t, rec, http.StatusOK)
	resp = testutil.UnmarshalResponse[struct {
		Value string `json:"value"`
	}](t, rec)
	assert.Equal(t, "0", resp.Value)

	req = testutil.NewJSONRequest(t, http.MethodPut, "/v1/tokens/99/skills/0",
		map[string]string{"value": "1"})
	rec = testutil.DoRequest(h.router, testutil.WithCaller(req, admin))
	testutil.AssertStatus(t, rec, http.StatusNotFound)
	testutil.AssertErrorReason(t, rec, "not_minted")
}

func TestMutationsAreAdministratorGated(t *testing.T) {
	h := newHarness(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/v1/skills",
		map[string]string{"name": "haste"})
	rec := testutil.DoRequest(h.router, testutil.WithCaller(req, someone))
	testutil.AssertStatus(t, rec, http.StatusForbidden)
	testutil.AssertErrorReason(t, rec, "not_administrator")

	rec = testutil.DoRequest(h.router,
		testutil.WithCaller(testutil.NewRequestWithBody(t, http.MethodPost, "/v1/skills", "{"), admin))
	testutil.AssertStatus(t, rec, http.StatusBadRequest)
}
