package e2e

import (
	"github.com/cucumber/godog"

	"soulbound/e2e/steps/registry"
)

// RegisterSteps binds every step package to the scenario context.
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	registry.RegisterSteps(ctx, tc)
}
