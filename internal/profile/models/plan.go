package models

// SetOp writes one metafield.
type SetOp struct {
	Key   string
	Type  StoreType
	Value string
}

// SyncPlan is the set of store mutations for one submission. A key never
// appears in both SetOps and DeleteOps.
type SyncPlan struct {
	SetOps    []SetOp
	DeleteOps []string
}

func (p SyncPlan) Empty() bool {
	return len(p.SetOps) == 0 && len(p.DeleteOps) == 0
}

func (p SyncPlan) SetKeys() []string {
	keys := make([]string, 0, len(p.SetOps))
	for _, op := range p.SetOps {
		keys = append(keys, op.Key)
	}
	return keys
}

// ApplyTo returns persisted as it would look after the plan runs.
func (p SyncPlan) ApplyTo(persisted FieldValueMap) FieldValueMap {
	out := persisted.Clone()
	for _, op := range p.SetOps {
		out[op.Key] = op.Value
	}
	for _, k := range p.DeleteOps {
		delete(out, k)
	}
	return out
}
