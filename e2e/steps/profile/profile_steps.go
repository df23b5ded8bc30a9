package profile

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/cucumber/godog"

	"fiscalid/e2e/steps/common"
)

type TestContext interface {
	POST(path string, body any) error
	GET(path string) error
	LastStatus() int
	LastBody() []byte
	ResponseField(path string) (any, error)
}

func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &profileSteps{tc: tc}

	ctx.Step(`^a new customer email$`, steps.newCustomerEmail)
	ctx.Step(`^I register a foreign customer with tax id "([^"]*)"$`, steps.registerForeign)
	ctx.Step(`^I register a final consumer with cedula "([^"]*)"$`, steps.registerFinalConsumer)
	ctx.Step(`^I register a customer without a customer type$`, steps.registerWithoutType)
	ctx.Step(`^I fetch the registered customer$`, steps.fetchRegistered)
	ctx.Step(`^I check whether the new customer email is taken$`, steps.checkEmail)
	ctx.Step(`^I try to change the registered customer's email$`, steps.changeEmail)
}

type profileSteps struct {
	tc         TestContext
	email      string
	customerID string
}

func (s *profileSteps) newCustomerEmail(ctx context.Context) error {
	s.email = fmt.Sprintf("e2e-%d@example.com", time.Now().UnixNano())
	return nil
}

func (s *profileSteps) baseForm(customerType string) map[string]any {
	return map[string]any{
		"first_name":    "Ana",
		"last_name":     "Gómez",
		"email":         s.email,
		"phone":         "61234567",
		"birth_date":    "1990-05-01",
		"gender":        "F",
		"customer_type": customerType,
	}
}

func (s *profileSteps) register(form map[string]any) error {
	if err := s.tc.POST(common.BasePath+"/customers/create", form); err != nil {
		return err
	}
	if s.tc.LastStatus() == 201 {
		id, err := s.tc.ResponseField("customer.id")
		if err != nil {
			return err
		}
		s.customerID = fmt.Sprint(id)
	}
	return nil
}

func (s *profileSteps) registerForeign(ctx context.Context, taxID string) error {
	form := s.baseForm("04")
	form["resides_in_panama"] = false
	form["tax_id"] = taxID
	return s.register(form)
}

// Final consumer lookups tolerate an unreachable registry.
func (s *profileSteps) registerFinalConsumer(ctx context.Context, cedula string) error {
	form := s.baseForm("02")
	form["resides_in_panama"] = true
	form["document_number"] = cedula
	form["province"] = "Panamá"
	form["district"] = "Panamá"
	form["corregimiento"] = "Bella Vista"
	return s.register(form)
}

func (s *profileSteps) registerWithoutType(ctx context.Context) error {
	return s.register(s.baseForm(""))
}

func (s *profileSteps) fetchRegistered(ctx context.Context) error {
	if s.customerID == "" {
		return fmt.Errorf("no customer was registered in this scenario")
	}
	return s.tc.GET(common.BasePath + "/customers/get?customer_id=" + url.QueryEscape(s.customerID))
}

func (s *profileSteps) checkEmail(ctx context.Context) error {
	return s.tc.POST(common.BasePath+"/customers/email-check", map[string]string{"email": s.email})
}

func (s *profileSteps) changeEmail(ctx context.Context) error {
	if s.customerID == "" {
		return fmt.Errorf("no customer was registered in this scenario")
	}
	form := s.baseForm("04")
	form["customer_id"] = s.customerID
	form["email"] = "other-" + s.email
	form["resides_in_panama"] = false
	form["tax_id"] = "AB1234567"
	return s.tc.POST(common.BasePath+"/customers/update", form)
}
