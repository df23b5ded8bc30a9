// Package validation holds the field-level format checks and normalizers.
// Every function here is pure; none performs I/O or returns a Go error.
package validation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"fiscalid/internal/profile/models"
	"fiscalid/pkg/email"
	pstrings "fiscalid/pkg/platform/strings"
)

// Result is the outcome of one or more checks. Errors are user-facing and ordered.
type Result struct {
	Valid  bool
	Errors []string
}

func ok() Result { return Result{Valid: true} }

func fail(msgs ...string) Result { return Result{Valid: false, Errors: msgs} }

func (r *Result) add(other Result) {
	if other.Valid {
		return
	}
	r.Valid = false
	r.Errors = append(r.Errors, other.Errors...)
}

const isoDateLayout = "2006-01-02"

var (
	nameChars = regexp.MustCompile(`^[\p{Latin}\s]+$`)

	// Resident identity shapes: provincial cédula (1-13), its AV/PI variants,
	// foreigner/naturalized/panameño-extranjero prefixes, and legal-entity RUC.
	residentIDPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^(?:[1-9]|1[0-3])-\d{1,4}-\d{1,6}$`),
		regexp.MustCompile(`^(?:[1-9]|1[0-3])(?:AV|PI)-\d{1,4}-\d{1,6}$`),
		regexp.MustCompile(`^(?:E|N|PE)-\d{1,4}-\d{1,6}$`),
		regexp.MustCompile(`^\d{3,10}-\d{1,4}-\d{1,7}$`),
	}
	foreignIDPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9-]{3,18}[A-Z0-9]$`)
)

func Email(value string) Result {
	if strings.TrimSpace(value) == "" {
		return fail("El email es requerido")
	}
	if !email.IsValid(value) {
		return fail("Formato de email inválido")
	}
	return ok()
}

// Name accepts Latin letters (accented included) and spaces only.
func Name(value string) Result {
	return nameAs("El nombre", value)
}

func nameAs(subject, value string) Result {
	v := NormalizeName(value)
	if v == "" {
		return fail(subject + " es requerido")
	}
	if !nameChars.MatchString(v) {
		return fail(subject + " solo puede contener letras y espacios")
	}
	return ok()
}

// Phone8 accepts exactly 8 ASCII digits once whitespace is removed.
// Hyphens are rejected rather than stripped.
func Phone8(value string) Result {
	v := NormalizePhone(value)
	if v == "" {
		return fail("El celular es requerido")
	}
	if strings.Contains(v, "-") {
		return fail("El celular no debe contener guiones")
	}
	for _, r := range v {
		if r < '0' || r > '9' {
			return fail("El celular solo puede contener números")
		}
	}
	if len(v) != 8 {
		return fail("El celular debe tener exactamente 8 dígitos")
	}
	return ok()
}

// ISODate parses YYYY-MM-DD and rejects dates after now's calendar day.
func ISODate(value string, now time.Time) Result {
	v := strings.TrimSpace(value)
	if v == "" {
		return fail("La fecha de nacimiento es requerida")
	}
	d, err := time.ParseInLocation(isoDateLayout, v, now.Location())
	if err != nil {
		return fail("Fecha inválida")
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if d.After(today) {
		return fail("La fecha de nacimiento no puede ser futura")
	}
	return ok()
}

// IdentityNumber checks the shape of a cédula/RUC for residents, or a
// passport/foreign id for Foreign customers.
func IdentityNumber(value string, c models.Classification) Result {
	v := NormalizeIdentity(value)
	if v == "" {
		return fail("El número de identificación es requerido")
	}
	if c == models.Foreign {
		if !foreignIDPattern.MatchString(v) {
			return fail("Formato de pasaporte o identificación inválido")
		}
		return ok()
	}
	for _, p := range residentIDPatterns {
		if p.MatchString(v) {
			return ok()
		}
	}
	return fail("Formato de cédula o RUC inválido. Use el formato con guiones, por ejemplo 8-123-456")
}

// Enum checks membership in allowed.
func Enum(value string, allowed []string) Result {
	if slices.Contains(allowed, strings.TrimSpace(value)) {
		return ok()
	}
	return fail(fmt.Sprintf("Valor inválido. Debe ser uno de: %s", strings.Join(allowed, ", ")))
}

// List checks a JSON array of strings, the stored form of list fields.
func List(value string) Result {
	if _, err := parseList(value); err != nil {
		return fail("Lista de valores inválida")
	}
	return ok()
}

// Province checks value against the embedded province catalog.
func Province(value string) Result {
	if _, found := Provinces().Canonical(value); !found {
		return fail("Provincia inválida")
	}
	return ok()
}

// enumMessages keeps the product copy for the enum fields users pick from.
var enumMessages = map[string]string{
	models.KeyGender:          "Género inválido. Debe ser M, F o X",
	models.KeyCustomerType:    "Tipo de cliente inválido",
	models.KeyTaxpayerKind:    "Tipo de Contribuyente inválido. Debe ser 1 (Natural) o 2 (Jurídico)",
	models.KeyResidesInPanama: "Indique si reside en Panamá",
}

// ValidateSubmission runs the format check for every non-blank field in m that
// applies under c. Missing required fields are the resolver's concern.
func ValidateSubmission(c models.Classification, m models.FieldValueMap, now time.Time) Result {
	res := ok()
	for _, f := range models.Catalog() {
		if m.Blank(f.Key) {
			continue
		}
		if !f.AppliesTo(c) {
			continue
		}
		res.add(validateField(f, c, m[f.Key], now))
	}
	return res
}

func validateField(f models.FieldSpec, c models.Classification, value string, now time.Time) Result {
	switch f.Kind {
	case models.KindName:
		subject := "El nombre"
		if f.Key == models.KeyLastName {
			subject = "El apellido"
		}
		return nameAs(subject, value)
	case models.KindEmail:
		return Email(value)
	case models.KindPhone8:
		return Phone8(value)
	case models.KindISODate:
		return ISODate(value, now)
	case models.KindIdentityNumber:
		return IdentityNumber(value, c)
	case models.KindList:
		return List(value)
	case models.KindEnumCode:
		if f.Key == models.KeyProvince {
			return Province(value)
		}
		if r := Enum(value, f.Allowed); !r.Valid {
			if msg, found := enumMessages[f.Key]; found {
				return fail(msg)
			}
			return r
		}
		return ok()
	default:
		if len([]rune(strings.TrimSpace(value))) > 255 {
			return fail(fmt.Sprintf("%s es demasiado largo", f.Label))
		}
		return ok()
	}
}

// NormalizeName trims, NFC-normalizes and collapses inner whitespace.
func NormalizeName(value string) string {
	return strings.Join(strings.Fields(norm.NFC.String(value)), " ")
}

// NormalizePhone removes all whitespace.
func NormalizePhone(value string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, value)
}

// NormalizeIdentity trims and uppercases an identity number.
func NormalizeIdentity(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}

// EncodeList stores tags as a JSON array, deduplicated case-insensitively.
// An empty list encodes to "" so the planner deletes the field.
func EncodeList(tags []string) string {
	tags = pstrings.DedupeFold(tags)
	if len(tags) == 0 {
		return ""
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return ""
	}
	return string(b)
}

// DecodeList reads a stored list value. Blank decodes to nil.
func DecodeList(value string) []string {
	tags, err := parseList(value)
	if err != nil {
		return nil
	}
	return tags
}

func parseList(value string) ([]string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return nil, nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(v), &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// Normalize returns a copy of m with every known field in its canonical stored form.
func Normalize(m models.FieldValueMap) models.FieldValueMap {
	out := make(models.FieldValueMap, len(m))
	for k, v := range m {
		f, known := models.Lookup(k)
		if !known {
			continue
		}
		out[k] = normalizeValue(f, v)
	}
	return out
}

func normalizeValue(f models.FieldSpec, v string) string {
	switch f.Kind {
	case models.KindName:
		return NormalizeName(v)
	case models.KindEmail:
		return email.Normalize(v)
	case models.KindPhone8:
		return NormalizePhone(v)
	case models.KindIdentityNumber:
		return NormalizeIdentity(v)
	case models.KindList:
		tags, err := parseList(v)
		if err != nil {
			return strings.TrimSpace(v)
		}
		return EncodeList(tags)
	case models.KindEnumCode:
		if f.Key == models.KeyProvince {
			if name, found := Provinces().Canonical(v); found {
				return name
			}
		}
		if f.Key == models.KeyGender {
			return strings.ToUpper(strings.TrimSpace(v))
		}
		if f.Key == models.KeyResidesInPanama {
			return strings.ToLower(strings.TrimSpace(v))
		}
		return strings.TrimSpace(v)
	default:
		return strings.Join(strings.Fields(v), " ")
	}
}
