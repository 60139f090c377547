package e2e

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/cucumber/godog"
)

// The suite targets a running server. Configuration comes from the
// environment:
//
//	SOULBOUND_E2E_URL      base URL of the registry under test
//	SOULBOUND_E2E_KEY      hex scalar of the authority signing key
//	SOULBOUND_E2E_JWT_KEY  the server's bearer-token signing secret
//
// The authority key must belong to the configured administrator, since
// the scenarios exercise both the mint signature and the admin gate.
func TestFeatures(t *testing.T) {
	baseURL := os.Getenv("SOULBOUND_E2E_URL")
	if baseURL == "" {
		t.Skip("SOULBOUND_E2E_URL not set, skipping end-to-end suite")
	}

	tc, err := NewTestContext(baseURL, os.Getenv("SOULBOUND_E2E_KEY"), os.Getenv("SOULBOUND_E2E_JWT_KEY"))
	if err != nil {
		t.Fatalf("building test context: %v", err)
	}

	suite := godog.TestSuite{
		ScenarioInitializer: func(ctx *godog.ScenarioContext) {
			ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
				tc.Reset()
				return ctx, nil
			})
			RegisterSteps(ctx, tc)
		},
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal(fmt.Errorf("one or more scenarios failed"))
	}
}
