package recordstore

import (
	"context"
	"strconv"
	"sync"

	"fiscalid/internal/profile/models"
)

type metafield struct {
	kind  models.StoreType
	value string
}

// MemoryStore keeps customers and metafields in process memory.
type MemoryStore struct {
	mu         sync.RWMutex
	nextID     int64
	customers  map[models.OwnerID]models.Native
	byEmail    map[string]models.OwnerID
	metafields map[models.OwnerID]map[string]map[string]metafield
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:     1000,
		customers:  make(map[models.OwnerID]models.Native),
		byEmail:    make(map[string]models.OwnerID),
		metafields: make(map[models.OwnerID]map[string]map[string]metafield),
	}
}

func (s *MemoryStore) GetCustomer(_ context.Context, id models.OwnerID) (models.Native, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.customers[id]
	if !ok {
		return models.Native{}, ErrCustomerNotFound
	}
	return n, nil
}

func (s *MemoryStore) CreateCustomer(_ context.Context, n models.Native) (models.Native, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := normalizeEmail(n.Email)
	if _, taken := s.byEmail[email]; taken {
		return models.Native{}, ErrEmailTaken
	}
	s.nextID++
	n.ID = models.NewOwnerID(strconv.FormatInt(s.nextID, 10))
	n.Email = email
	s.customers[n.ID] = n
	s.byEmail[email] = n.ID
	return n, nil
}

func (s *MemoryStore) UpdateNative(_ context.Context, n models.Native) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.customers[n.ID]
	if !ok {
		return ErrCustomerNotFound
	}
	cur.FirstName = n.FirstName
	cur.LastName = n.LastName
	cur.Phone = n.Phone
	s.customers[n.ID] = cur
	return nil
}

func (s *MemoryStore) DeleteCustomer(_ context.Context, id models.OwnerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.customers[id]; ok {
		delete(s.byEmail, n.Email)
	}
	delete(s.customers, id)
	delete(s.metafields, id)
	return nil
}

func (s *MemoryStore) FindByEmail(_ context.Context, email string) (models.Native, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[normalizeEmail(email)]
	if !ok {
		return models.Native{}, ErrCustomerNotFound
	}
	return s.customers[id], nil
}

func (s *MemoryStore) Get(_ context.Context, owner models.OwnerID, namespace string) (models.FieldValueMap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.customers[owner]; !ok {
		return nil, ErrCustomerNotFound
	}
	out := make(models.FieldValueMap)
	for k, mf := range s.metafields[owner][namespace] {
		out[k] = mf.value
	}
	return out, nil
}

func (s *MemoryStore) Set(_ context.Context, owner models.OwnerID, namespace string, ops []models.SetOp) error {
	if err := checkOps(ops); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.customers[owner]; !ok {
		return ErrCustomerNotFound
	}
	byNS, ok := s.metafields[owner]
	if !ok {
		byNS = make(map[string]map[string]metafield)
		s.metafields[owner] = byNS
	}
	fields, ok := byNS[namespace]
	if !ok {
		fields = make(map[string]metafield)
		byNS[namespace] = fields
	}
	for _, op := range ops {
		fields[op.Key] = metafield{kind: op.Type, value: op.Value}
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, owner models.OwnerID, namespace string, keys []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fields := s.metafields[owner][namespace]
	for _, k := range keys {
		delete(fields, k)
	}
	return nil
}
