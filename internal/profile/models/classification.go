package models

import "strings"

// Classification is the effective customer category. It is never persisted;
// it is re-derived from the residency flag and the customer type code.
type Classification string

const (
	Taxpayer      Classification = "taxpayer"
	FinalConsumer Classification = "final_consumer"
	Foreign       Classification = "foreign"
	Unclassified  Classification = "unclassified"
)

// Raw customer type codes as stored in ex_customer_type.
const (
	TypeTaxpayer      = "01"
	TypeFinalConsumer = "02"
	TypeForeign       = "04"
)

// Classify derives the classification. Non-residents are always Foreign.
func Classify(residesInJurisdiction bool, declaredType string) Classification {
	if !residesInJurisdiction {
		return Foreign
	}
	switch strings.TrimSpace(declaredType) {
	case TypeTaxpayer:
		return Taxpayer
	case TypeFinalConsumer:
		return FinalConsumer
	default:
		return Unclassified
	}
}

// ClassifyRecord classifies a persisted or submitted field map. Records written
// before the residency flag existed carry only the type code, so residency is
// inferred from it: 04 is foreign, anything else resident.
func ClassifyRecord(m FieldValueMap) Classification {
	declared := m.Value(KeyCustomerType)
	resident, ok := ParseResidency(m.Value(KeyResidesInPanama))
	if !ok {
		resident = declared != TypeForeign
	}
	return Classify(resident, declared)
}

// ParseResidency reads the boolean residency flag. ok is false when unset.
func ParseResidency(raw string) (resident bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}

// FormatResidency is the stored form of the residency flag.
func FormatResidency(resident bool) string {
	if resident {
		return "true"
	}
	return "false"
}

func (c Classification) Known() bool {
	return c == Taxpayer || c == FinalConsumer || c == Foreign
}

// Resident reports whether c implies residence in Panamá. Unclassified reports false.
func (c Classification) Resident() bool {
	return c == Taxpayer || c == FinalConsumer
}

// TypeCode returns the ex_customer_type value for c, or "" when Unclassified.
func (c Classification) TypeCode() string {
	switch c {
	case Taxpayer:
		return TypeTaxpayer
	case FinalConsumer:
		return TypeFinalConsumer
	case Foreign:
		return TypeForeign
	default:
		return ""
	}
}

func (c Classification) String() string { return string(c) }
