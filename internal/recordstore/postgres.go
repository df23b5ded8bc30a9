package recordstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/lib/pq"

	"fiscalid/internal/profile/models"
	"fiscalid/pkg/platform/tx"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// PostgresStore persists customers and metafields with lib/pq.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetCustomer(ctx context.Context, id models.OwnerID) (models.Native, error) {
	return s.scanCustomer(ctx, `SELECT id, email, first_name, last_name, phone FROM customers WHERE id = $1`, string(id))
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (models.Native, error) {
	return s.scanCustomer(ctx, `SELECT id, email, first_name, last_name, phone FROM customers WHERE lower(email) = $1`, normalizeEmail(email))
}

func (s *PostgresStore) scanCustomer(ctx context.Context, query string, arg string) (models.Native, error) {
	var n models.Native
	var id string
	err := tx.QuerierFor(ctx, s.db).QueryRowContext(ctx, query, arg).
		Scan(&id, &n.Email, &n.FirstName, &n.LastName, &n.Phone)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Native{}, ErrCustomerNotFound
	}
	if err != nil {
		return models.Native{}, fmt.Errorf("get customer: %w", err)
	}
	n.ID = models.OwnerID(id)
	return n, nil
}

func (s *PostgresStore) CreateCustomer(ctx context.Context, n models.Native) (models.Native, error) {
	q := tx.QuerierFor(ctx, s.db)
	var seq int64
	if err := q.QueryRowContext(ctx, `SELECT nextval('customer_id_seq')`).Scan(&seq); err != nil {
		return models.Native{}, fmt.Errorf("allocate customer id: %w", err)
	}
	n.ID = models.NewOwnerID(strconv.FormatInt(seq, 10))
	n.Email = normalizeEmail(n.Email)

	_, err := q.ExecContext(ctx,
		`INSERT INTO customers (id, email, first_name, last_name, phone) VALUES ($1, $2, $3, $4, $5)`,
		string(n.ID), n.Email, n.FirstName, n.LastName, n.Phone,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return models.Native{}, ErrEmailTaken
		}
		return models.Native{}, fmt.Errorf("insert customer: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) UpdateNative(ctx context.Context, n models.Native) error {
	res, err := tx.QuerierFor(ctx, s.db).ExecContext(ctx,
		`UPDATE customers SET first_name = $2, last_name = $3, phone = $4, updated_at = now() WHERE id = $1`,
		string(n.ID), n.FirstName, n.LastName, n.Phone,
	)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrCustomerNotFound
	}
	return nil
}

// DeleteCustomer relies on the metafields foreign key to cascade.
func (s *PostgresStore) DeleteCustomer(ctx context.Context, id models.OwnerID) error {
	if _, err := tx.QuerierFor(ctx, s.db).ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, string(id)); err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, owner models.OwnerID, namespace string) (models.FieldValueMap, error) {
	if _, err := s.GetCustomer(ctx, owner); err != nil {
		return nil, err
	}
	rows, err := tx.QuerierFor(ctx, s.db).QueryContext(ctx,
		`SELECT key, value FROM metafields WHERE owner_id = $1 AND namespace = $2`,
		string(owner), namespace,
	)
	if err != nil {
		return nil, fmt.Errorf("query metafields: %w", err)
	}
	defer rows.Close()

	out := make(models.FieldValueMap)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan metafield: %w", err)
		}
		out[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate metafields: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Set(ctx context.Context, owner models.OwnerID, namespace string, ops []models.SetOp) error {
	if err := checkOps(ops); err != nil {
		return err
	}
	return tx.RunInTx(ctx, s.db, func(ctx context.Context) error {
		q := tx.QuerierFor(ctx, s.db)
		for _, op := range ops {
			_, err := q.ExecContext(ctx, `
				INSERT INTO metafields (owner_id, namespace, key, type, value)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (owner_id, namespace, key)
				DO UPDATE SET type = EXCLUDED.type, value = EXCLUDED.value, updated_at = now()`,
				string(owner), namespace, op.Key, string(op.Type), op.Value,
			)
			if err != nil {
				var pqErr *pq.Error
				if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
					return ErrCustomerNotFound
				}
				return fmt.Errorf("upsert metafield %s: %w", op.Key, err)
			}
		}
		return nil
	})
}

func (s *PostgresStore) Delete(ctx context.Context, owner models.OwnerID, namespace string, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := tx.QuerierFor(ctx, s.db).ExecContext(ctx,
		`DELETE FROM metafields WHERE owner_id = $1 AND namespace = $2 AND key = ANY($3)`,
		string(owner), namespace, pq.Array(keys),
	)
	if err != nil {
		return fmt.Errorf("delete metafields: %w", err)
	}
	return nil
}
