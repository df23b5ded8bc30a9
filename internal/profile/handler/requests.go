package handler

import (
	"strings"

	"fiscalid/internal/profile/models"
	"fiscalid/internal/profile/validation"
)

// ProfileRequest is the storefront form, sent whole on create and update.
type ProfileRequest struct {
	CustomerID      string   `json:"customer_id"`
	FirstName       string   `json:"first_name"`
	LastName        string   `json:"last_name"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone"`
	BirthDate       string   `json:"birth_date"`
	Gender          string   `json:"gender"`
	CustomerType    string   `json:"customer_type"`
	ResidesInPanama *bool    `json:"resides_in_panama"`
	TaxID           string   `json:"tax_id"`
	DocumentNumber  string   `json:"document_number"`
	CheckDigit      string   `json:"customer_dv"`
	TaxpayerName    string   `json:"taxpayer_name"`
	TaxpayerKind    string   `json:"taxpayer_kind"`
	Province        string   `json:"province"`
	District        string   `json:"district"`
	Corregimiento   string   `json:"corregimiento"`
	LocationCode    string   `json:"location_code"`
	Pets            []string `json:"pets"`
}

// Normalize implements httputil.Normalizable. document_number is the older
// name of tax_id and only fills it when tax_id is blank.
func (r *ProfileRequest) Normalize() {
	r.CustomerID = strings.TrimSpace(r.CustomerID)
	r.TaxID = strings.TrimSpace(r.TaxID)
	if r.TaxID == "" {
		r.TaxID = strings.TrimSpace(r.DocumentNumber)
	}
}

// Fields maps the form onto catalog keys. Every field is present, blank or
// not, so a cleared input reads as a deletion. An omitted residency flag is
// left out and inferred from the customer type.
func (r *ProfileRequest) Fields() models.FieldValueMap {
	m := models.FieldValueMap{
		models.KeyFirstName:     r.FirstName,
		models.KeyLastName:      r.LastName,
		models.KeyEmail:         r.Email,
		models.KeyBirthday:      r.BirthDate,
		models.KeyGender:        r.Gender,
		models.KeyPhone:         r.Phone,
		models.KeyCustomerType:  r.CustomerType,
		models.KeyTaxID:         r.TaxID,
		models.KeyCheckDigit:    r.CheckDigit,
		models.KeyTaxpayerName:  r.TaxpayerName,
		models.KeyTaxpayerKind:  r.TaxpayerKind,
		models.KeyProvince:      r.Province,
		models.KeyDistrict:      r.District,
		models.KeyCorregimiento: r.Corregimiento,
		models.KeyLocationCode:  r.LocationCode,
		models.KeySegmentation:  validation.EncodeList(r.Pets),
	}
	if r.ResidesInPanama != nil {
		m[models.KeyResidesInPanama] = models.FormatResidency(*r.ResidesInPanama)
	}
	return m
}

// EmailCheckRequest is the body of POST /customers/email-check.
type EmailCheckRequest struct {
	Email string `json:"email"`
}

func (r *EmailCheckRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
}
