package reconcile

import "fmt"

// Reason classifies why a submission was refused as a whole.
type Reason string

const (
	ReasonImmutableField         Reason = "immutable_field_conflict"
	ReasonResidencyLock          Reason = "residency_lock_conflict"
	ReasonClassificationRequired Reason = "classification_required"
)

// Rejection is returned instead of a plan. Nothing from a rejected submission
// may be written.
type Rejection struct {
	Reason Reason
	// Field is set for ReasonImmutableField.
	Field string
}

func (r *Rejection) Error() string {
	if r.Field != "" {
		return fmt.Sprintf("%s: %s", r.Reason, r.Field)
	}
	return string(r.Reason)
}

// Message is the customer-facing copy. Conflicts cannot be fixed by the
// customer, so they point to support.
func (r *Rejection) Message() string {
	switch r.Reason {
	case ReasonImmutableField:
		return immutableMessages[r.Field] + supportSuffix
	case ReasonResidencyLock:
		return "No se puede cambiar si resides en Panamá o no." + supportSuffix
	default:
		return "Tipo de cliente es requerido"
	}
}

const supportSuffix = " Si necesita cambiarlo, contacte a soporte."

var immutableMessages = map[string]string{
	"email":     "El email no puede ser modificado.",
	"ex_tax_id": "El número de identificación no puede ser modificado.",
}
