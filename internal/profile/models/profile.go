package models

import (
	"strings"
	"unicode"

	dErrors "fiscalid/pkg/domain-errors"
)

const ownerIDPrefix = "gid://shopify/Customer/"

// OwnerID identifies a customer record in the store.
type OwnerID string

// ParseOwnerID accepts either the full gid form or a raw id; raw ids keep
// only their digits.
func ParseOwnerID(raw string) (OwnerID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "Customer ID is required")
	}
	if strings.HasPrefix(raw, "gid://") {
		return OwnerID(raw), nil
	}
	digits := strings.Map(func(r rune) rune {
		if r <= unicode.MaxASCII && unicode.IsDigit(r) {
			return r
		}
		return -1
	}, raw)
	if digits == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "Invalid customer ID format")
	}
	return OwnerID(ownerIDPrefix + digits), nil
}

// NewOwnerID builds the gid form for a numeric store id.
func NewOwnerID(numeric string) OwnerID {
	return OwnerID(ownerIDPrefix + numeric)
}

func (id OwnerID) String() string { return string(id) }

// Native holds the fields kept on the customer record itself.
type Native struct {
	ID        OwnerID
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// Profile is the customer record plus its extended metafields.
type Profile struct {
	Native   Native
	Extended FieldValueMap
}

// Fields flattens the profile into one map keyed by catalog keys.
func (p Profile) Fields() FieldValueMap {
	m := p.Extended.Clone()
	m[KeyFirstName] = p.Native.FirstName
	m[KeyLastName] = p.Native.LastName
	m[KeyEmail] = p.Native.Email
	return m
}

// Classification re-derives the profile's classification from its fields.
func (p Profile) Classification() Classification {
	return ClassifyRecord(p.Extended)
}
