// Package registry defines the credential lifecycle step bindings.
package registry

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext is the slice of the harness these steps need.
type TestContext interface {
	AuthorityAddress() string
	NewHolder() string
	Holder() string
	RememberSkill(id uint64)
	SkillIDs() []uint64
	RememberToken(id uint64)
	TokenID() uint64
	Status() int
	ResponseField(field string) (any, error)
	Request(method, path, signer string, body any) error
	SignMint(recipient string, ids []uint64, values []string) (string, error)
}

// RegisterSteps binds the registry step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &registrySteps{tc: tc}

	ctx.Step(`^a fresh holder$`, steps.freshHolder)
	ctx.Step(`^the administrator defines the skills "([^"]*)"$`, steps.defineSkills)
	ctx.Step(`^the authority mints a credential with values "([^"]*)"$`, steps.mintWithValues)
	ctx.Step(`^the authority mints a bare credential$`, steps.mintBare)
	ctx.Step(`^someone replays the mint for a different recipient$`, steps.replayMint)
	ctx.Step(`^the holder transfers the credential to the authority$`, steps.transferToAuthority)
	ctx.Step(`^the administrator burns the credential$`, steps.burnCredential)
	ctx.Step(`^the holder looks up the credential owner$`, steps.lookupOwner)
	ctx.Step(`^skill (\d+) of the credential is read$`, steps.readSkillValue)

	ctx.Step(`^the response status is (\d+)$`, steps.assertStatus)
	ctx.Step(`^the failure reason is "([^"]*)"$`, steps.assertReason)
	ctx.Step(`^the credential belongs to the holder$`, steps.assertOwnedByHolder)
	ctx.Step(`^the value reads "([^"]*)"$`, steps.assertValue)
}

type registrySteps struct {
	tc TestContext
}

func (s *registrySteps) freshHolder() error {
	s.tc.NewHolder()
	return nil
}

func (s *registrySteps) defineSkills(csv string) error {
	names := strings.Split(csv, ",")
	err := s.tc.Request(http.MethodPost, "/v1/skills", s.tc.AuthorityAddress(),
		map[string]any{"names": names})
	if err != nil {
		return err
	}
	if s.tc.Status() != http.StatusCreated {
		return fmt.Errorf("defining skills: status %d", s.tc.Status())
	}

	raw, err := s.tc.ResponseField("skills")
	if err != nil {
		return err
	}
	items, ok := raw.([]any)
	if !ok {
		return fmt.Errorf("skills field is not a list: %v", raw)
	}
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			return fmt.Errorf("skill entry is not an object: %v", item)
		}
		id, err := asUint64(entry["id"])
		if err != nil {
			return err
		}
		s.tc.RememberSkill(id)
	}
	return nil
}

func (s *registrySteps) mintWithValues(csv string) error {
	values := strings.Split(csv, ",")
	ids := s.tc.SkillIDs()
	if len(ids) != len(values) {
		return fmt.Errorf("scenario defines %d skills but %d values", len(ids), len(values))
	}
	return s.submitMint(s.tc.Holder(), ids, values)
}

func (s *registrySteps) mintBare() error {
	return s.submitMint(s.tc.Holder(), nil, nil)
}

// replayMint reuses the last payload's signature for a different
// recipient, which must fail verification.
func (s *registrySteps) replayMint() error {
	sig, err := s.tc.SignMint(s.tc.Holder(), nil, nil)
	if err != nil {
		return err
	}
	other := s.tc.NewHolder()
	return s.tc.Request(http.MethodPost, "/v1/tokens/mint", "", map[string]any{
		"recipient":    other,
		"skill_ids":    []uint64{},
		"skill_values": []string{},
		"signature":    sig,
	})
}

func (s *registrySteps) submitMint(recipient string, ids []uint64, values []string) error {
	sig, err := s.tc.SignMint(recipient, ids, values)
	if err != nil {
		return err
	}
	if ids == nil {
		ids = []uint64{}
	}
	if values == nil {
		values = []string{}
	}
	err = s.tc.Request(http.MethodPost, "/v1/tokens/mint", "", map[string]any{
		"recipient":    recipient,
		"skill_ids":    ids,
		"skill_values": values,
		"signature":    sig,
	})
	if err != nil {
		return err
	}
	if s.tc.Status() == http.StatusCreated {
		raw, err := s.tc.ResponseField("token_id")
		if err != nil {
			return err
		}
		id, err := asUint64(raw)
		if err != nil {
			return err
		}
		s.tc.RememberToken(id)
	}
	return nil
}

func (s *registrySteps) transferToAuthority() error {
	path := fmt.Sprintf("/v1/tokens/%d/transfer", s.tc.TokenID())
	return s.tc.Request(http.MethodPost, path, s.tc.Holder(), map[string]any{
		"from": s.tc.Holder(),
		"to":   s.tc.AuthorityAddress(),
	})
}

func (s *registrySteps) burnCredential() error {
	path := fmt.Sprintf("/v1/tokens/%d/burn", s.tc.TokenID())
	return s.tc.Request(http.MethodPost, path, s.tc.AuthorityAddress(), nil)
}

func (s *registrySteps) lookupOwner() error {
	path := fmt.Sprintf("/v1/tokens/%d/owner", s.tc.TokenID())
	return s.tc.Request(http.MethodGet, path, "", nil)
}

func (s *registrySteps) readSkillValue(skillID int) error {
	path := fmt.Sprintf("/v1/tokens/%d/skills/%d", s.tc.TokenID(), skillID)
	return s.tc.Request(http.MethodGet, path, "", nil)
}

func (s *registrySteps) assertStatus(expected int) error {
	if s.tc.Status() != expected {
		return fmt.Errorf("expected status %d, got %d", expected, s.tc.Status())
	}
	return nil
}

func (s *registrySteps) assertReason(expected string) error {
	raw, err := s.tc.ResponseField("reason")
	if err != nil {
		return err
	}
	if raw != expected {
		return fmt.Errorf("expected reason %q, got %v", expected, raw)
	}
	return nil
}

func (s *registrySteps) assertOwnedByHolder() error {
	raw, err := s.tc.ResponseField("owner")
	if err != nil {
		return err
	}
	owner, ok := raw.(string)
	if !ok || !strings.EqualFold(owner, s.tc.Holder()) {
		return fmt.Errorf("expected owner %s, got %v", s.tc.Holder(), raw)
	}
	return nil
}

func (s *registrySteps) assertValue(expected string) error {
	raw, err := s.tc.ResponseField("value")
	if err != nil {
		return err
	}
	if raw != expected {
		return fmt.Errorf("expected value %q, got %v", expected, raw)
	}
	return nil
}

func asUint64(raw any) (uint64, error) {
	switch v := raw.(type) {
	case float64:
		return uint64(v), nil
	case json.Number:
		n, err := v.Int64()
		return uint64(n), err
	default:
		return 0, fmt.Errorf("not a number: %v", raw)
	}
}
