// Package recordstore persists customers and their namespaced metafields.
package recordstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"fiscalid/internal/profile/models"
	"fiscalid/pkg/platform/sentinel"
)

var (
	ErrCustomerNotFound = fmt.Errorf("customer: %w", sentinel.ErrNotFound)
	ErrEmailTaken       = fmt.Errorf("customer email: %w", sentinel.ErrConflict)
)

// MetafieldStore reads and writes extended fields.
type MetafieldStore interface {
	Get(ctx context.Context, owner models.OwnerID, namespace string) (models.FieldValueMap, error)
	// Set writes every op or none. Rejected values come back as *BatchError.
	Set(ctx context.Context, owner models.OwnerID, namespace string, ops []models.SetOp) error
	// Delete removes keys; keys that do not exist are ignored.
	Delete(ctx context.Context, owner models.OwnerID, namespace string, keys []string) error
}

// CustomerStore reads and writes native customer fields.
type CustomerStore interface {
	GetCustomer(ctx context.Context, id models.OwnerID) (models.Native, error)
	// CreateCustomer assigns the id. Email is written only here.
	CreateCustomer(ctx context.Context, n models.Native) (models.Native, error)
	// UpdateNative writes first name, last name and phone.
	UpdateNative(ctx context.Context, n models.Native) error
	// DeleteCustomer removes the customer and its metafields. A missing id is
	// not an error.
	DeleteCustomer(ctx context.Context, id models.OwnerID) error
	FindByEmail(ctx context.Context, email string) (models.Native, error)
}

// UserError is one rejected metafield value.
type UserError struct {
	Key     string `json:"key"`
	Message string `json:"message"`
}

// BatchError reports the values a Set refused.
type BatchError struct {
	Errors []UserError
}

func (e *BatchError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, ue := range e.Errors {
		parts = append(parts, ue.Key+": "+ue.Message)
	}
	return "metafields rejected: " + strings.Join(parts, "; ")
}

// checkOps applies the store's type rules to a batch.
func checkOps(ops []models.SetOp) error {
	var errs []UserError
	for _, op := range ops {
		if msg := checkValue(op); msg != "" {
			errs = append(errs, UserError{Key: op.Key, Message: msg})
		}
	}
	if len(errs) > 0 {
		return &BatchError{Errors: errs}
	}
	return nil
}

func checkValue(op models.SetOp) string {
	if strings.TrimSpace(op.Key) == "" {
		return "Key can't be blank"
	}
	if strings.TrimSpace(op.Value) == "" {
		return "Value can't be blank"
	}
	switch op.Type {
	case models.StoreText:
		if strings.ContainsAny(op.Value, "\r\n") {
			return "Value must be a single line"
		}
	case models.StoreDate:
		if _, err := time.Parse(time.DateOnly, op.Value); err != nil {
			return "Value must be a date in YYYY-MM-DD format"
		}
	case models.StoreBoolean:
		if op.Value != "true" && op.Value != "false" {
			return "Value must be true or false"
		}
	case models.StoreList:
		var items []string
		if err := json.Unmarshal([]byte(op.Value), &items); err != nil {
			return "Value must be a JSON list of strings"
		}
	default:
		return "Type is not supported"
	}
	return ""
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
