package handler

import (
	"maps"

	"fiscalid/internal/profile/service"
)

// Customer is the customer shape the storefront reads.
type Customer struct {
	ID         string            `json:"id"`
	Email      string            `json:"email"`
	FirstName  string            `json:"firstName"`
	LastName   string            `json:"lastName"`
	Phone      string            `json:"phone"`
	Metafields map[string]string `json:"metafields"`
}

// GetResponse answers the checkout gate.
type GetResponse struct {
	Complete      bool     `json:"complete"`
	MissingFields []string `json:"missingFields"`
	Customer      Customer `json:"customer"`
}

// WriteResponse is returned by create and update.
type WriteResponse struct {
	Success  bool      `json:"success"`
	Errors   []string  `json:"errors,omitempty"`
	Customer *Customer `json:"customer,omitempty"`
}

type EmailCheckResponse struct {
	Exists  bool   `json:"exists"`
	Message string `json:"message,omitempty"`
}

func toCustomer(v *service.View) Customer {
	n := v.Profile.Native
	metafields := make(map[string]string, len(v.Profile.Extended))
	maps.Copy(metafields, v.Profile.Extended)
	return Customer{
		ID:         n.ID.String(),
		Email:      n.Email,
		FirstName:  n.FirstName,
		LastName:   n.LastName,
		Phone:      n.Phone,
		Metafields: metafields,
	}
}

func toGetResponse(v *service.View) GetResponse {
	missing := v.Missing
	if missing == nil {
		missing = []string{}
	}
	return GetResponse{Complete: v.Complete, MissingFields: missing, Customer: toCustomer(v)}
}

func written(v *service.View) WriteResponse {
	c := toCustomer(v)
	return WriteResponse{Success: true, Customer: &c}
}
