// Package reconcile turns a submitted profile into the minimal set of store
// mutations, enforcing the immutability and residency rules first.
package reconcile

import (
	"fiscalid/internal/profile/models"
	"fiscalid/pkg/email"
)

// CheckConstraints applies the rejection rules alone, so callers can refuse a
// submission before doing any remote work.
//
// Both maps are flattened profiles (native and extended keys together).
func CheckConstraints(persisted, submitted models.FieldValueMap, oldClass, newClass models.Classification) error {
	for _, f := range models.Catalog() {
		if !f.ImmutableOnceSet {
			continue
		}
		prev := persisted.Value(f.Key)
		next := submitted.Value(f.Key)
		// A blank submission keeps the persisted value.
		if prev == "" || next == "" {
			continue
		}
		if !sameValue(f, prev, next) {
			return &Rejection{Reason: ReasonImmutableField, Field: f.Key}
		}
	}

	if oldClass.Known() && newClass.Known() && oldClass.Resident() != newClass.Resident() {
		return &Rejection{Reason: ReasonResidencyLock}
	}
	if !newClass.Known() {
		return &Rejection{Reason: ReasonClassificationRequired}
	}
	return nil
}

// Plan computes the set/delete operations that move persisted to submitted
// under newClass. Only extended fields are planned; native fields are the
// caller's job.
//
// Applicable fields with a changed non-blank value are set; applicable fields
// submitted blank are deleted when a value is stored. Fields that do not apply
// under newClass are deleted whenever a stale value is stored, whether or not
// the submission mentions them. Immutable fields submitted blank are kept.
func Plan(persisted, submitted models.FieldValueMap, oldClass, newClass models.Classification) (models.SyncPlan, error) {
	if err := CheckConstraints(persisted, submitted, oldClass, newClass); err != nil {
		return models.SyncPlan{}, err
	}

	var plan models.SyncPlan
	for _, f := range models.Catalog() {
		if f.Storage != models.StorageExtended {
			continue
		}
		prev := persisted.Value(f.Key)
		next := submitted.Value(f.Key)

		if !f.AppliesTo(newClass) {
			if prev != "" {
				plan.DeleteOps = append(plan.DeleteOps, f.Key)
			}
			continue
		}

		switch {
		case next != "":
			if next != prev {
				plan.SetOps = append(plan.SetOps, models.SetOp{Key: f.Key, Type: f.StoreType, Value: next})
			}
		case f.ImmutableOnceSet:
			// kept
		case prev != "":
			plan.DeleteOps = append(plan.DeleteOps, f.Key)
		}
	}
	return plan, nil
}

func sameValue(f models.FieldSpec, a, b string) bool {
	if f.Kind == models.KindEmail {
		return email.Equal(a, b)
	}
	return a == b
}
