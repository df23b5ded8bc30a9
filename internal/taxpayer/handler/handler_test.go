package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"fiscalid/internal/taxpayer/handler/mocks"
	"fiscalid/internal/taxpayer/models"
	"fiscalid/internal/taxpayer/service"
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

func (s *HandlerSuite) post(body string) (*httptest.ResponseRecorder, ValidateResponse) {
	req := httptest.NewRequest(http.MethodPost, "/contribuyente/validate", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp ValidateResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

// =============================================================================
// Input checks
// =============================================================================

func (s *HandlerSuite) TestMissingNumber() {
	w, resp := s.post(`{"dRuc":"  ","dTipoRuc":"1"}`)
	s.Equal(http.StatusBadRequest, w.Code)
	s.False(resp.Success)
	s.Equal(models.MsgNumberRequired, resp.Error)
}

func (s *HandlerSuite) TestMissingKind() {
	w, resp := s.post(`{"dRuc":"8-123-456"}`)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(models.MsgKindRequired, resp.Error)
}

func (s *HandlerSuite) TestMalformedBody() {
	w, _ := s.post(`{`)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), "bad_request")
}

// =============================================================================
// Outcomes
// =============================================================================

func (s *HandlerSuite) TestVerified() {
	s.service.EXPECT().Validate(gomock.Any(), "8-123-456", "1").
		Return(models.LookupResult{Outcome: models.Verified, CheckDigit: "07", LegalName: "JUAN PEREZ"}, nil)

	w, resp := s.post(`{"dRuc":" 8-123-456 ","dTipoRuc":"1"}`)
	s.Equal(http.StatusOK, w.Code)
	s.True(resp.Success)
	s.Require().NotNil(resp.Data)
	s.Equal("07", resp.Data.CheckDigit)
	s.Equal("JUAN PEREZ", resp.Data.Name)
	s.JSONEq(`{"success":true,"data":{"dDV":"07","dNomb":"JUAN PEREZ"}}`, w.Body.String())
}

func (s *HandlerSuite) TestNotRegisteredWithHyphenHint() {
	s.service.EXPECT().Validate(gomock.Any(), "8123456", "1").
		Return(models.LookupResult{Outcome: models.NotRegistered, MissingSeparator: true}, nil)

	w, resp := s.post(`{"dRuc":"8123456","dTipoRuc":"1"}`)
	s.Equal(http.StatusOK, w.Code)
	s.False(resp.Success)
	s.Contains(resp.Error, "no figuran como contribuyente inscrito")
	s.Contains(resp.Error, "guiones")
}

func (s *HandlerSuite) TestMalformedInput() {
	s.service.EXPECT().Validate(gomock.Any(), gomock.Any(), "2").
		Return(models.LookupResult{Outcome: models.MalformedInput, FormatViolation: true}, nil)

	w, resp := s.post(`{"dRuc":"ABC","dTipoRuc":"2"}`)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(resp.Error, "solo contenga números y guiones")
}

func (s *HandlerSuite) TestTransientIsUnavailable() {
	s.service.EXPECT().Validate(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(models.LookupResult{Outcome: models.TransientFailure}, nil)

	w, resp := s.post(`{"dRuc":"8-1-1","dTipoRuc":"1"}`)
	s.Equal(http.StatusServiceUnavailable, w.Code)
	s.Equal(models.MsgUnavailable, resp.Error)
}

func (s *HandlerSuite) TestNotConfiguredIsNeverInvalidInput() {
	s.service.EXPECT().Validate(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(models.LookupResult{}, service.ErrNotConfigured)

	w, resp := s.post(`{"dRuc":"8-1-1","dTipoRuc":"1"}`)
	s.Equal(http.StatusServiceUnavailable, w.Code)
	s.Equal(models.MsgNotConfigured, resp.Error)
	s.NotContains(w.Body.String(), "api key")
}

func (s *HandlerSuite) TestUnexpectedErrorHidesDetails() {
	s.service.EXPECT().Validate(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(models.LookupResult{}, errors.New("dial tcp 10.0.0.1: refused"))

	w, _ := s.post(`{"dRuc":"8-1-1","dTipoRuc":"1"}`)
	s.Equal(http.StatusInternalServerError, w.Code)
	s.NotContains(w.Body.String(), "10.0.0.1")
}

func (s *HandlerSuite) TestGuardsRunBeforeValidation() {
	deny := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})
	}
	s.router = chi.NewRouter()
	New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)), WithGuards(deny)).Register(s.router)

	w, _ := s.post(`{"dRuc":"8-123-456","dTipoRuc":"1"}`)
	s.Equal(http.StatusTooManyRequests, w.Code)
}
