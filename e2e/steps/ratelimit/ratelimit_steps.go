package ratelimit

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cucumber/godog"

	"fiscalid/e2e/steps/common"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	SetClientIP(ip string)
	LastStatus() int
	LastBody() []byte
	LastHeader(name string) string
}

func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &ratelimitSteps{tc: tc}

	ctx.Step(`^I exhaust the registry lookup budget$`, steps.exhaustLookupBudget)
	ctx.Step(`^I request a registry lookup$`, steps.lookup)
	ctx.Step(`^the response should carry a Retry-After header$`, steps.retryAfterPresent)
}

type ratelimitSteps struct {
	tc TestContext
}

func (s *ratelimitSteps) lookup(ctx context.Context) error {
	return s.tc.POST(common.BasePath+"/contribuyente/validate", map[string]string{
		"dRuc":     "8-123-456",
		"dTipoRuc": "1",
	})
}

// exhaustLookupBudget reads the budget from X-RateLimit-Limit and spends what
// is left of it.
func (s *ratelimitSteps) exhaustLookupBudget(ctx context.Context) error {
	if err := s.lookup(ctx); err != nil {
		return err
	}
	if s.tc.LastStatus() == 429 {
		return nil
	}
	remaining, err := strconv.Atoi(s.tc.LastHeader("X-RateLimit-Remaining"))
	if err != nil {
		return fmt.Errorf("lookup response has no rate limit headers (status %d): %w", s.tc.LastStatus(), err)
	}
	for range remaining {
		if err := s.lookup(ctx); err != nil {
			return err
		}
		if s.tc.LastStatus() == 429 {
			return fmt.Errorf("budget ran out before X-RateLimit-Remaining reached zero")
		}
	}
	return nil
}

func (s *ratelimitSteps) retryAfterPresent(ctx context.Context) error {
	if s.tc.LastHeader("Retry-After") == "" {
		return fmt.Errorf("missing Retry-After header: %s", s.tc.LastBody())
	}
	return nil
}
