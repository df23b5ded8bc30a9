// Package models holds the taxpayer registry lookup types.
package models

import "strings"

// Kind is the DGI taxpayer kind sent as dTipoRuc.
type Kind string

const (
	KindNatural Kind = "1"
	KindLegal   Kind = "2"
)

// ParseKind accepts only the two registry codes.
func ParseKind(raw string) (Kind, bool) {
	switch k := Kind(strings.TrimSpace(raw)); k {
	case KindNatural, KindLegal:
		return k, true
	default:
		return "", false
	}
}

type Outcome string

const (
	// NotAttempted means the inputs were incomplete and no call was made.
	NotAttempted     Outcome = "not_attempted"
	Verified         Outcome = "verified"
	NotRegistered    Outcome = "not_registered"
	MalformedInput   Outcome = "malformed_input"
	TransientFailure Outcome = "transient_failure"
)

// LookupResult is the interpreted registry answer.
type LookupResult struct {
	Outcome    Outcome `json:"outcome"`
	CheckDigit string  `json:"check_digit,omitempty"`
	LegalName  string  `json:"legal_name,omitempty"`
	// MissingSeparator hints that a NotRegistered number had no hyphen.
	MissingSeparator bool `json:"missing_separator,omitempty"`
	// FormatViolation marks a MalformedInput caused by a schema/pattern failure.
	FormatViolation bool `json:"format_violation,omitempty"`
	// Detail carries the registry's own message, for logs only.
	Detail string `json:"detail,omitempty"`
}

// Cacheable reports whether the result is a stable registry fact.
func (r LookupResult) Cacheable() bool {
	return r.Outcome == Verified || r.Outcome == NotRegistered
}

// Message is the customer-facing copy for the outcome.
func (r LookupResult) Message() string {
	switch r.Outcome {
	case Verified:
		return ""
	case NotRegistered:
		msg := "Los datos ingresados no figuran como contribuyente inscrito. Por favor, verifique los datos o seleccione otro tipo de cliente."
		if r.MissingSeparator {
			msg += " También verifique que el número incluya los guiones correspondientes."
		}
		return msg
	case MalformedInput:
		if r.FormatViolation {
			return "El formato de la cédula/RUC ingresado no es válido. Por favor, verifique que solo contenga números y guiones según corresponda."
		}
		return "El formato de la cédula/RUC ingresado no es válido. Por favor, verifique los datos e intente nuevamente."
	case TransientFailure:
		return MsgUnavailable
	default:
		return "Por favor, ingrese la cédula o RUC y el tipo de contribuyente para continuar."
	}
}

const (
	MsgUnavailable    = "No se pudo conectar con el servicio de validación. Por favor, intente nuevamente más tarde."
	MsgNotConfigured  = "El servicio de validación no está disponible en este momento. Por favor, intente más tarde."
	MsgNumberRequired = "Por favor, ingrese la cédula o RUC para continuar."
	MsgKindRequired   = "Por favor, seleccione el tipo de contribuyente (Natural o Jurídico)."
)

// Query identifies one lookup.
type Query struct {
	Number string
	Kind   Kind
}

// NormalizeNumber trims and uppercases an identity number before lookup.
func NormalizeNumber(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// Key is the cache and single-flight key.
func (q Query) Key() string {
	return string(q.Kind) + ":" + q.Number
}
