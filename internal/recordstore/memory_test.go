package recordstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"fiscalid/internal/profile/models"
	"fiscalid/pkg/platform/sentinel"
)

//go:generate mockgen -source=store.go -destination=mocks/mocks.go -package=mocks MetafieldStore,CustomerStore
type MemoryStoreSuite struct {
	suite.Suite
	ctx   context.Context
	store *MemoryStore
	owner models.OwnerID
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewMemoryStore()
	n, err := s.store.CreateCustomer(s.ctx, models.Native{Email: " Ana@Example.com ", FirstName: "Ana", LastName: "Pérez"})
	s.Require().NoError(err)
	s.owner = n.ID
}

// =============================================================================
// Customers
// =============================================================================

func (s *MemoryStoreSuite) TestCreateAssignsGidAndNormalizesEmail() {
	n, err := s.store.GetCustomer(s.ctx, s.owner)
	s.Require().NoError(err)
	s.Equal("ana@example.com", n.Email)
	s.Contains(n.ID.String(), "gid://shopify/Customer/")
}

func (s *MemoryStoreSuite) TestCreateRejectsTakenEmail() {
	_, err := s.store.CreateCustomer(s.ctx, models.Native{Email: "ANA@example.com"})
	s.True(errors.Is(err, sentinel.ErrConflict))
}

func (s *MemoryStoreSuite) TestFindByEmailIgnoresCase() {
	n, err := s.store.FindByEmail(s.ctx, "ana@EXAMPLE.com")
	s.Require().NoError(err)
	s.Equal(s.owner, n.ID)

	_, err = s.store.FindByEmail(s.ctx, "nobody@example.com")
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *MemoryStoreSuite) TestUpdateNativeKeepsEmail() {
	err := s.store.UpdateNative(s.ctx, models.Native{ID: s.owner, FirstName: "Ana María", LastName: "Pérez", Email: "other@example.com"})
	s.Require().NoError(err)

	n, err := s.store.GetCustomer(s.ctx, s.owner)
	s.Require().NoError(err)
	s.Equal("Ana María", n.FirstName)
	s.Equal("ana@example.com", n.Email)
}

func (s *MemoryStoreSuite) TestUnknownCustomer() {
	_, err := s.store.GetCustomer(s.ctx, models.NewOwnerID("1"))
	s.ErrorIs(err, ErrCustomerNotFound)
	s.ErrorIs(s.store.UpdateNative(s.ctx, models.Native{ID: models.NewOwnerID("1")}), ErrCustomerNotFound)
}

func (s *MemoryStoreSuite) TestDeleteCustomerFreesEmail() {
	s.Require().NoError(s.store.Set(s.ctx, s.owner, models.Namespace, []models.SetOp{
		{Key: models.KeyGender, Type: models.StoreText, Value: "F"},
	}))

	s.Require().NoError(s.store.DeleteCustomer(s.ctx, s.owner))
	_, err := s.store.GetCustomer(s.ctx, s.owner)
	s.ErrorIs(err, ErrCustomerNotFound)
	_, err = s.store.Get(s.ctx, s.owner, models.Namespace)
	s.ErrorIs(err, ErrCustomerNotFound)

	n, err := s.store.CreateCustomer(s.ctx, models.Native{Email: "ana@example.com"})
	s.Require().NoError(err)
	got, err := s.store.Get(s.ctx, n.ID, models.Namespace)
	s.Require().NoError(err)
	s.Empty(got)

	s.NoError(s.store.DeleteCustomer(s.ctx, s.owner), "deleting twice is harmless")
}

// =============================================================================
// Metafields
// =============================================================================

func (s *MemoryStoreSuite) TestSetGetDelete() {
	ops := []models.SetOp{
		{Key: models.KeyBirthday, Type: models.StoreDate, Value: "1990-05-01"},
		{Key: models.KeyResidesInPanama, Type: models.StoreBoolean, Value: "true"},
		{Key: models.KeySegmentation, Type: models.StoreList, Value: `["Perro"]`},
	}
	s.Require().NoError(s.store.Set(s.ctx, s.owner, models.Namespace, ops))

	got, err := s.store.Get(s.ctx, s.owner, models.Namespace)
	s.Require().NoError(err)
	s.Equal(models.FieldValueMap{
		models.KeyBirthday:        "1990-05-01",
		models.KeyResidesInPanama: "true",
		models.KeySegmentation:    `["Perro"]`,
	}, got)

	s.Require().NoError(s.store.Delete(s.ctx, s.owner, models.Namespace, []string{models.KeyBirthday, "missing"}))
	got, err = s.store.Get(s.ctx, s.owner, models.Namespace)
	s.Require().NoError(err)
	s.NotContains(got, models.KeyBirthday)
}

func (s *MemoryStoreSuite) TestNamespacesAreIsolated() {
	s.Require().NoError(s.store.Set(s.ctx, s.owner, "other", []models.SetOp{{Key: "k", Type: models.StoreText, Value: "v"}}))

	got, err := s.store.Get(s.ctx, s.owner, models.Namespace)
	s.Require().NoError(err)
	s.Empty(got)
}

func (s *MemoryStoreSuite) TestSetIsAllOrNothing() {
	ops := []models.SetOp{
		{Key: models.KeyGender, Type: models.StoreText, Value: "F"},
		{Key: models.KeyBirthday, Type: models.StoreDate, Value: "01/05/1990"},
		{Key: models.KeyResidesInPanama, Type: models.StoreBoolean, Value: "si"},
	}
	err := s.store.Set(s.ctx, s.owner, models.Namespace, ops)

	var batch *BatchError
	s.Require().ErrorAs(err, &batch)
	s.Len(batch.Errors, 2)
	s.Equal(models.KeyBirthday, batch.Errors[0].Key)
	s.Equal(models.KeyResidesInPanama, batch.Errors[1].Key)

	got, err := s.store.Get(s.ctx, s.owner, models.Namespace)
	s.Require().NoError(err)
	s.Empty(got, "no op from a rejected batch is written")
}

func (s *MemoryStoreSuite) TestSetRejectsBlankAndBadList() {
	err := s.store.Set(s.ctx, s.owner, models.Namespace, []models.SetOp{
		{Key: models.KeyPhone, Type: models.StoreText, Value: "  "},
		{Key: models.KeySegmentation, Type: models.StoreList, Value: "Perro"},
	})
	var batch *BatchError
	s.Require().ErrorAs(err, &batch)
	s.Equal("Value can't be blank", batch.Errors[0].Message)
	s.Equal(models.KeySegmentation, batch.Errors[1].Key)
}

func (s *MemoryStoreSuite) TestSetUnknownOwner() {
	err := s.store.Set(s.ctx, models.NewOwnerID("1"), models.Namespace, []models.SetOp{{Key: "k", Type: models.StoreText, Value: "v"}})
	s.ErrorIs(err, ErrCustomerNotFound)
}
