package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/ledgerhq/ledgercore/internal/apperrors"
	"github.com/ledgerhq/ledgercore/internal/core/domain"
	portssvc "github.com/ledgerhq/ledgercore/internal/core/ports/services"
	"github.com/ledgerhq/ledgercore/internal/dto"
	"github.com/ledgerhq/ledgercore/internal/middleware"
)

type mockPeriodSvc struct {
	mock.Mock
}

func (m *mockPeriodSvc) CreatePeriod(ctx context.Context, organizationID string, req dto.CreatePeriodRequest, actorID string) (*domain.Period, error) {
	args := m.Called(ctx, organizationID, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Period), args.Error(1)
}

func (m *mockPeriodSvc) GetPeriodByID(ctx context.Context, organizationID, periodID string) (*domain.Period, error) {
	args := m.Called(ctx, organizationID, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Period), args.Error(1)
}

func (m *mockPeriodSvc) ListPeriods(ctx context.Context, organizationID string) (*dto.ListPeriodsResponse, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListPeriodsResponse), args.Error(1)
}

func (m *mockPeriodSvc) TransitionPeriod(ctx context.Context, organizationID, periodID string, req dto.TransitionPeriodRequest, actorID string) (*domain.Period, error) {
	args := m.Called(ctx, organizationID, periodID, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Period), args.Error(1)
}

func (m *mockPeriodSvc) UpdatePeriod(ctx context.Context, organizationID, periodID string, req dto.UpdatePeriodRequest, actorID string) (*domain.Period, error) {
	args := m.Called(ctx, organizationID, periodID, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Period), args.Error(1)
}

var _ portssvc.PeriodSvc = (*mockPeriodSvc)(nil)

type PeriodHandlerTestSuite struct {
	suite.Suite
	router    *gin.Engine
	svc       *mockPeriodSvc
	jwtSecret string
}

func (s *PeriodHandlerTestSuite) generateToken(organizationID, actorID string) string {
	claims := jwt.MapClaims{
		"sub":            actorID,
		"organizationID": organizationID,
		"exp":            jwt.NewNumericDate(time.Now().Add(time.Hour)).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	s.Require().NoError(err)
	return signed
}

func (s *PeriodHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()
	s.jwtSecret = "test-secret-key-that-is-long-enough"
	s.svc = new(mockPeriodSvc)

	v1 := s.router.Group("/api/v1", middleware.TenantContext(s.jwtSecret))
	registerPeriodRoutes(v1, s.svc)
}

func (s *PeriodHandlerTestSuite) TestCreatePeriod_Success() {
	body := dto.CreatePeriodRequest{
		Name:      "January 2026",
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
	}
	created := &domain.Period{PeriodID: "p-1", Name: body.Name, Status: domain.PeriodOpen}
	s.svc.On("CreatePeriod", mock.Anything, "org-1", body, "actor-1").Return(created, nil).Once()

	payload, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/periods", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.generateToken("org-1", "actor-1"))

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusCreated, w.Code)
	var resp dto.PeriodResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("p-1", resp.PeriodID)
	s.svc.AssertExpectations(s.T())
}

func (s *PeriodHandlerTestSuite) TestCreatePeriod_MissingAuth() {
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/periods", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusUnauthorized, w.Code)
	s.svc.AssertNotCalled(s.T(), "CreatePeriod", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *PeriodHandlerTestSuite) TestCreatePeriod_ServiceError() {
	body := dto.CreatePeriodRequest{
		Name:      "January 2026",
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
	}
	s.svc.On("CreatePeriod", mock.Anything, "org-1", body, "actor-1").
		Return(nil, apperrors.BusinessRule("period overlaps an existing period", nil)).Once()

	payload, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/periods", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.generateToken("org-1", "actor-1"))

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusConflict, w.Code)
}

func (s *PeriodHandlerTestSuite) TestGetPeriod_NotFound() {
	s.svc.On("GetPeriodByID", mock.Anything, "org-1", "p-missing").
		Return(nil, apperrors.NotFound("period not found", nil)).Once()

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/periods/p-missing", nil)
	req.Header.Set("Authorization", "Bearer "+s.generateToken("org-1", "actor-1"))

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusNotFound, w.Code)
}

func (s *PeriodHandlerTestSuite) TestTransitionPeriod_Success() {
	transitioned := &domain.Period{PeriodID: "p-1", Status: domain.PeriodClosing}
	reqBody := dto.TransitionPeriodRequest{Status: domain.PeriodClosing}
	s.svc.On("TransitionPeriod", mock.Anything, "org-1", "p-1", reqBody, "actor-1").Return(transitioned, nil).Once()

	payload, _ := json.Marshal(reqBody)
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/periods/p-1/transition", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.generateToken("org-1", "actor-1"))

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)
	var resp dto.PeriodResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal(domain.PeriodClosing, resp.Status)
}

func TestPeriodHandler(t *testing.T) {
	suite.Run(t, new(PeriodHandlerTestSuite))
}
