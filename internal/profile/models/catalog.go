package models

import "slices"

// Namespace is the metafield namespace every extended field lives in.
const Namespace = "exchanger"

// Field keys. Native keys map onto the customer record; ex_* keys are metafields.
const (
	KeyFirstName       = "first_name"
	KeyLastName        = "last_name"
	KeyEmail           = "email"
	KeyBirthday        = "ex_birthday"
	KeyGender          = "ex_gender"
	KeyPhone           = "ex_phone"
	KeyCustomerType    = "ex_customer_type"
	KeyResidesInPanama = "ex_resides_in_panama"
	KeyTaxID           = "ex_tax_id"
	KeyCheckDigit      = "ex_customer_dv"
	KeyTaxpayerName    = "ex_taxpayer_name"
	KeyTaxpayerKind    = "ex_taxpayer_kind"
	KeyProvince        = "ex_province"
	KeyDistrict        = "ex_district"
	KeyCorregimiento   = "ex_corregimiento"
	KeyLocationCode    = "ex_customer_location_code"
	KeySegmentation    = "ex_segmentation"
)

type Kind string

const (
	KindText           Kind = "text"
	KindName           Kind = "name"
	KindEmail          Kind = "email"
	KindPhone8         Kind = "phone8"
	KindISODate        Kind = "isoDate"
	KindEnumCode       Kind = "enumCode"
	KindIdentityNumber Kind = "identityNumber"
	KindList           Kind = "list"
)

// StoreType is the metafield type handed to the record store.
type StoreType string

const (
	StoreText    StoreType = "single_line_text_field"
	StoreDate    StoreType = "date"
	StoreBoolean StoreType = "boolean"
	StoreList    StoreType = "list.single_line_text_field"
)

type Storage int

const (
	StorageNative Storage = iota
	StorageExtended
)

// FieldSpec describes one profile field.
type FieldSpec struct {
	Key              string
	Kind             Kind
	StoreType        StoreType
	Label            string
	Storage          Storage
	RequiredFor      []Classification
	OptionalFor      []Classification
	ImmutableOnceSet bool
	// Allowed lists the accepted codes for enumCode fields without a catalog of their own.
	Allowed []string
}

var (
	everyone     = []Classification{Taxpayer, FinalConsumer, Foreign, Unclassified}
	allResidents = []Classification{Taxpayer, FinalConsumer, Foreign}
)

// catalog order drives both the resolver's and the planner's output order.
var catalog = []FieldSpec{
	{Key: KeyFirstName, Kind: KindName, StoreType: StoreText, Label: "Nombre", Storage: StorageNative, RequiredFor: everyone},
	{Key: KeyLastName, Kind: KindName, StoreType: StoreText, Label: "Apellido", Storage: StorageNative, RequiredFor: everyone},
	{Key: KeyEmail, Kind: KindEmail, StoreType: StoreText, Label: "Email", Storage: StorageNative, RequiredFor: everyone, ImmutableOnceSet: true},
	{Key: KeyBirthday, Kind: KindISODate, StoreType: StoreDate, Label: "Fecha de nacimiento", Storage: StorageExtended, RequiredFor: everyone},
	{Key: KeyGender, Kind: KindEnumCode, StoreType: StoreText, Label: "Género", Storage: StorageExtended, RequiredFor: everyone, Allowed: []string{"M", "F", "X"}},
	{Key: KeyPhone, Kind: KindPhone8, StoreType: StoreText, Label: "Celular", Storage: StorageExtended, RequiredFor: everyone},
	{Key: KeyCustomerType, Kind: KindEnumCode, StoreType: StoreText, Label: "Tipo de cliente", Storage: StorageExtended, RequiredFor: everyone, Allowed: []string{TypeTaxpayer, TypeFinalConsumer, TypeForeign}},
	{Key: KeyResidesInPanama, Kind: KindEnumCode, StoreType: StoreBoolean, Label: "Reside en Panamá", Storage: StorageExtended, OptionalFor: everyone, Allowed: []string{"true", "false"}},
	{Key: KeyTaxID, Kind: KindIdentityNumber, StoreType: StoreText, Label: "Cédula, RUC o pasaporte", Storage: StorageExtended, RequiredFor: allResidents, ImmutableOnceSet: true},
	{Key: KeyCheckDigit, Kind: KindText, StoreType: StoreText, Label: "DV", Storage: StorageExtended, RequiredFor: []Classification{Taxpayer}},
	{Key: KeyTaxpayerName, Kind: KindText, StoreType: StoreText, Label: "Razón Social", Storage: StorageExtended, RequiredFor: []Classification{Taxpayer}, OptionalFor: []Classification{FinalConsumer}},
	{Key: KeyTaxpayerKind, Kind: KindEnumCode, StoreType: StoreText, Label: "Tipo de Contribuyente", Storage: StorageExtended, RequiredFor: []Classification{Taxpayer, FinalConsumer}, Allowed: []string{"1", "2"}},
	{Key: KeyProvince, Kind: KindEnumCode, StoreType: StoreText, Label: "Provincia", Storage: StorageExtended, RequiredFor: []Classification{Taxpayer}},
	{Key: KeyDistrict, Kind: KindText, StoreType: StoreText, Label: "Distrito", Storage: StorageExtended, RequiredFor: []Classification{Taxpayer}},
	{Key: KeyCorregimiento, Kind: KindText, StoreType: StoreText, Label: "Corregimiento", Storage: StorageExtended, RequiredFor: []Classification{Taxpayer}},
	{Key: KeyLocationCode, Kind: KindText, StoreType: StoreText, Label: "Código de ubicación", Storage: StorageExtended, OptionalFor: []Classification{Taxpayer}},
	{Key: KeySegmentation, Kind: KindList, StoreType: StoreList, Label: "Segmentación", Storage: StorageExtended, OptionalFor: everyone},
}

var byKey = func() map[string]FieldSpec {
	m := make(map[string]FieldSpec, len(catalog))
	for _, f := range catalog {
		m[f.Key] = f
	}
	return m
}()

// Catalog returns the field table in its canonical order.
func Catalog() []FieldSpec {
	return slices.Clone(catalog)
}

func Lookup(key string) (FieldSpec, bool) {
	f, ok := byKey[key]
	return f, ok
}

// Label returns the user-facing label for key, or the key itself.
func Label(key string) string {
	if f, ok := byKey[key]; ok {
		return f.Label
	}
	return key
}

func (f FieldSpec) RequiredUnder(c Classification) bool {
	return slices.Contains(f.RequiredFor, c)
}

func (f FieldSpec) OptionalUnder(c Classification) bool {
	return slices.Contains(f.OptionalFor, c)
}

// AppliesTo reports whether f may carry a value under c.
func (f FieldSpec) AppliesTo(c Classification) bool {
	return f.RequiredUnder(c) || f.OptionalUnder(c)
}

// RequiredKeys lists the keys required under c, in catalog order.
func RequiredKeys(c Classification) []string {
	var keys []string
	for _, f := range catalog {
		if f.RequiredUnder(c) {
			keys = append(keys, f.Key)
		}
	}
	return keys
}
