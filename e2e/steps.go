package e2e

import (
	"github.com/cucumber/godog"

	"pixkeys/e2e/steps/common"
	"pixkeys/e2e/steps/pixkeys"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	pixkeys.RegisterSteps(ctx, tc)
}
