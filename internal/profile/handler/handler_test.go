package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"fiscalid/internal/profile/handler/mocks"
	"fiscalid/internal/profile/models"
	"fiscalid/internal/profile/service"
	dErrors "fiscalid/pkg/domain-errors"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service
type HandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	s.router = chi.NewRouter()
	New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(s.router)
}

func (s *HandlerSuite) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](s *HandlerSuite, w *httptest.ResponseRecorder) T {
	var out T
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

const owner = models.OwnerID("gid://shopify/Customer/1001")

func taxpayerView() *service.View {
	return &service.View{
		Profile: models.Profile{
			Native: models.Native{ID: owner, Email: "juan@example.com", FirstName: "Juan", LastName: "Pérez"},
			Extended: models.FieldValueMap{
				models.KeyCustomerType: models.TypeTaxpayer,
				models.KeyCheckDigit:   "07",
			},
		},
		Classification: models.Taxpayer,
		Missing:        []string{models.KeyProvince},
	}
}

// =============================================================================
// GET /customers/get
// =============================================================================

func (s *HandlerSuite) TestGetNormalizesRawID() {
	s.service.EXPECT().Get(gomock.Any(), owner).Return(taxpayerView(), nil)

	w := s.do(http.MethodGet, "/customers/get?customer_id=1001", "")
	s.Equal(http.StatusOK, w.Code)

	resp := decode[GetResponse](s, w)
	s.False(resp.Complete)
	s.Equal([]string{models.KeyProvince}, resp.MissingFields)
	s.Equal(owner.String(), resp.Customer.ID)
	s.Equal("07", resp.Customer.Metafields[models.KeyCheckDigit])
}

func (s *HandlerSuite) TestGetCompleteHasEmptyMissingList() {
	v := taxpayerView()
	v.Missing = nil
	v.Complete = true
	s.service.EXPECT().Get(gomock.Any(), owner).Return(v, nil)

	w := s.do(http.MethodGet, "/customers/get?id="+owner.String(), "")
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"missingFields":[]`)
}

func (s *HandlerSuite) TestGetRequiresCustomerID() {
	w := s.do(http.MethodGet, "/customers/get", "")
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/customers/get?customer_id=abc", "")
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), "Invalid customer ID format")
}

func (s *HandlerSuite) TestGetUnknownCustomer() {
	s.service.EXPECT().Get(gomock.Any(), owner).
		Return(nil, dErrors.New(dErrors.CodeNotFound, "Cliente no encontrado"))

	w := s.do(http.MethodGet, "/customers/get?customer_id=1001", "")
	s.Equal(http.StatusNotFound, w.Code)
	s.Contains(w.Body.String(), "Cliente no encontrado")
}

// =============================================================================
// POST /customers/create and /customers/update
// =============================================================================

func (s *HandlerSuite) TestCreateMapsFormOntoCatalogKeys() {
	s.service.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, fields models.FieldValueMap) (*service.View, error) {
			s.Equal("Juan", fields[models.KeyFirstName])
			s.Equal("1990-05-01", fields[models.KeyBirthday])
			s.Equal("8-123-456", fields[models.KeyTaxID], "document_number fills tax_id")
			s.Equal("true", fields[models.KeyResidesInPanama])
			s.Equal(`["Perro","Gato"]`, fields[models.KeySegmentation])
			s.Contains(fields, models.KeyProvince, "blank inputs are still submitted")
			return taxpayerView(), nil
		})

	body := `{
		"first_name":"Juan","last_name":"Pérez","email":"juan@example.com",
		"birth_date":"1990-05-01","gender":"M","phone":"61234567",
		"customer_type":"01","resides_in_panama":true,
		"document_number":"8-123-456","taxpayer_kind":"1",
		"pets":["Perro","perro ","Gato"]
	}`
	w := s.do(http.MethodPost, "/customers/create", body)
	s.Equal(http.StatusCreated, w.Code)

	resp := decode[WriteResponse](s, w)
	s.True(resp.Success)
	s.Require().NotNil(resp.Customer)
	s.Equal(owner.String(), resp.Customer.ID)
}

func (s *HandlerSuite) TestCreateValidationErrorsAreListed() {
	s.service.EXPECT().Create(gomock.Any(), gomock.Any()).
		Return(nil, dErrors.Validation([]string{"Provincia es requerido", "Distrito es requerido"}))

	w := s.do(http.MethodPost, "/customers/create", `{"customer_type":"01"}`)
	s.Equal(http.StatusBadRequest, w.Code)

	resp := decode[WriteResponse](s, w)
	s.False(resp.Success)
	s.Equal([]string{"Provincia es requerido", "Distrito es requerido"}, resp.Errors)
	s.Nil(resp.Customer)
}

func (s *HandlerSuite) TestMalformedBody() {
	w := s.do(http.MethodPost, "/customers/create", `{"first_name":`)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerSuite) TestUpdateRequiresCustomerID() {
	w := s.do(http.MethodPost, "/customers/update", `{"first_name":"Juan"}`)
	s.Equal(http.StatusBadRequest, w.Code)

	resp := decode[WriteResponse](s, w)
	s.Equal([]string{"Customer ID is required"}, resp.Errors)
}

func (s *HandlerSuite) TestUpdateConflictIs409() {
	s.service.EXPECT().Update(gomock.Any(), owner, gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeConflict, "El email no puede ser modificado. Si necesita cambiarlo, contacte a soporte."))

	w := s.do(http.MethodPost, "/customers/update", `{"customer_id":"1001","email":"x@example.com"}`)
	s.Equal(http.StatusConflict, w.Code)

	resp := decode[WriteResponse](s, w)
	s.False(resp.Success)
	s.Contains(resp.Errors[0], "contacte a soporte")
}

func (s *HandlerSuite) TestUpdateUnavailableIs503() {
	s.service.EXPECT().Update(gomock.Any(), owner, gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeUnavailable, "No se pudieron guardar los datos. Por favor, intente nuevamente."))

	w := s.do(http.MethodPost, "/customers/update", `{"customer_id":"gid://shopify/Customer/1001"}`)
	s.Equal(http.StatusServiceUnavailable, w.Code)
}

func (s *HandlerSuite) TestUpdateOmittedResidencyIsNotSubmitted() {
	s.service.EXPECT().Update(gomock.Any(), owner, gomock.Any()).
		DoAndReturn(func(_ any, _ models.OwnerID, fields models.FieldValueMap) (*service.View, error) {
			s.NotContains(fields, models.KeyResidesInPanama)
			s.Equal("", fields[models.KeySegmentation])
			return taxpayerView(), nil
		})

	w := s.do(http.MethodPost, "/customers/update", `{"customer_id":"1001","customer_type":"01"}`)
	s.Equal(http.StatusOK, w.Code)
}

// =============================================================================
// POST /customers/email-check
// =============================================================================

func (s *HandlerSuite) TestEmailCheck() {
	s.service.EXPECT().EmailExists(gomock.Any(), "juan@example.com").
		Return(&service.EmailCheck{Exists: true, Message: "Este email ya está registrado"}, nil)

	w := s.do(http.MethodPost, "/customers/email-check", `{"email":" juan@example.com "}`)
	s.Equal(http.StatusOK, w.Code)

	resp := decode[EmailCheckResponse](s, w)
	s.True(resp.Exists)
	s.Equal("Este email ya está registrado", resp.Message)
}

func (s *HandlerSuite) TestEmailCheckAvailableOmitsMessage() {
	s.service.EXPECT().EmailExists(gomock.Any(), "nadie@example.com").
		Return(&service.EmailCheck{Exists: false, Message: "Email disponible"}, nil)

	w := s.do(http.MethodPost, "/customers/email-check", `{"email":"nadie@example.com"}`)
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"exists":false}`, w.Body.String())
}

func (s *HandlerSuite) TestEmailCheckRequiresEmail() {
	w := s.do(http.MethodPost, "/customers/email-check", `{"email":"  "}`)
	s.Equal(http.StatusBadRequest, w.Code)
}

// =============================================================================
// Write guards
// =============================================================================

func (s *HandlerSuite) TestWriteGuardsSkipReads() {
	deny := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})
	}
	s.router = chi.NewRouter()
	New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)), WithWriteGuards(deny)).Register(s.router)
	s.service.EXPECT().Get(gomock.Any(), owner).Return(taxpayerView(), nil)

	s.Equal(http.StatusOK, s.do(http.MethodGet, "/customers/get?customer_id=1001", "").Code)
	s.Equal(http.StatusTooManyRequests, s.do(http.MethodPost, "/customers/create", `{}`).Code)
	s.Equal(http.StatusTooManyRequests, s.do(http.MethodPost, "/customers/email-check", `{"email":"a@b.co"}`).Code)
}
