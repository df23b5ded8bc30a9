package common

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cucumber/godog"
)

// BasePath is where the storefront app proxy mounts the API.
const BasePath = "/apps/custom-invoice"

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(path string) error
	SetClientIP(ip string)
	LastStatus() int
	LastBody() []byte
	ResponseField(path string) (any, error)
}

func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	ctx.Step(`^the fiscalid service is running$`, steps.serviceIsRunning)
	ctx.Step(`^requests come from IP "([^"]*)"$`, steps.requestsComeFrom)
	ctx.Step(`^the response status should be (\d+)$`, steps.responseStatusShouldBe)
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, steps.fieldShouldEqual)
	ctx.Step(`^the response field "([^"]*)" should be (true|false)$`, steps.fieldShouldBeBool)
	ctx.Step(`^the response errors should include "([^"]*)"$`, steps.errorsShouldInclude)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) serviceIsRunning(ctx context.Context) error {
	if err := s.tc.GET("/health"); err != nil {
		return err
	}
	if s.tc.LastStatus() != 200 {
		return fmt.Errorf("health returned %d: %s", s.tc.LastStatus(), s.tc.LastBody())
	}
	return nil
}

func (s *commonSteps) requestsComeFrom(ctx context.Context, ip string) error {
	s.tc.SetClientIP(ip)
	return nil
}

func (s *commonSteps) responseStatusShouldBe(ctx context.Context, expected int) error {
	if got := s.tc.LastStatus(); got != expected {
		return fmt.Errorf("expected status %d, got %d: %s", expected, got, s.tc.LastBody())
	}
	return nil
}

func (s *commonSteps) fieldShouldEqual(ctx context.Context, field, expected string) error {
	v, err := s.tc.ResponseField(field)
	if err != nil {
		return err
	}
	if got := fmt.Sprint(v); got != expected {
		return fmt.Errorf("expected %s to be %q, got %q", field, expected, got)
	}
	return nil
}

func (s *commonSteps) fieldShouldBeBool(ctx context.Context, field, expected string) error {
	v, err := s.tc.ResponseField(field)
	if err != nil {
		return err
	}
	want, _ := strconv.ParseBool(expected)
	got, ok := v.(bool)
	if !ok || got != want {
		return fmt.Errorf("expected %s to be %s, got %v", field, expected, v)
	}
	return nil
}

func (s *commonSteps) errorsShouldInclude(ctx context.Context, message string) error {
	v, err := s.tc.ResponseField("errors")
	if err != nil {
		return err
	}
	list, _ := v.([]any)
	for _, e := range list {
		if e == message {
			return nil
		}
	}
	return fmt.Errorf("errors %v do not include %q", list, message)
}
