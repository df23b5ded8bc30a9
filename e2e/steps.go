package e2e

import (
	"github.com/cucumber/godog"

	"fiscalid/e2e/steps/common"
	"fiscalid/e2e/steps/profile"
	"fiscalid/e2e/steps/ratelimit"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	profile.RegisterSteps(ctx, tc)
	ratelimit.RegisterSteps(ctx, tc)
}
