package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"selfcc/care-app/internal/adaptation"
	"selfcc/care-app/internal/catalog"
	"selfcc/care-app/internal/domain"
	"selfcc/care-app/internal/repository/memory"
	"selfcc/care-app/internal/service"
	"selfcc/care-app/internal/shell"
)

// fallbackAdapter always applies the local safety reduction.
type fallbackAdapter struct{}

func (fallbackAdapter) Adapt(_ context.Context, exercises []domain.Exercise, _ domain.SessionFeedback) adaptation.Result {
	return adaptation.Fallback(exercises)
}

type testServer struct {
	router *gin.Engine
	token  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cat, err := catalog.Default()
	require.NoError(t, err)
	users := memory.NewUserRepository()
	authService := service.NewAuthService(users, "test-secret", time.Hour)
	careService := service.NewCareService(memory.NewCarePlanRepository(), users, cat, fallbackAdapter{}, service.CareOptions{
		OverlayDismiss: time.Millisecond,
	})
	t.Cleanup(careService.Close)

	router := gin.New()
	router.Use(RequestLogger(zap.NewNop()))
	SetupRoutes(router, authService, careService)

	s := &testServer{router: router}
	w := s.do(t, http.MethodPost, "/api/v1/auth/register", gin.H{"name": "Maria", "email": "maria@example.com", "password": "password1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var login LoginResponse
	w = s.do(t, http.MethodPost, "/api/v1/auth/login", gin.H{"email": "maria@example.com", "password": "password1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	s.token = login.Token
	return s
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)
	s.token = ""

	w := s.do(t, http.MethodGet, "/api/v1/app", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	s.token = "garbage"
	w = s.do(t, http.MethodGet, "/api/v1/app", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNavigate(t *testing.T) {
	s := newTestServer(t)

	snap := decode[service.AppSnapshot](t, s.do(t, http.MethodGet, "/api/v1/app", nil))
	assert.Equal(t, shell.KindDashboard, snap.View)
	assert.Equal(t, 1, snap.WeekNumber)

	w := s.do(t, http.MethodPut, "/api/v1/app/view", gin.H{"view": "buddies"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, shell.KindBuddies, decode[service.AppSnapshot](t, w).View)

	w = s.do(t, http.MethodPut, "/api/v1/app/view", gin.H{"view": "exercise-view"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScreens(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/plan", nil)
	require.Equal(t, http.StatusOK, w.Code)
	plan := decode[domain.CarePlan](t, w)
	assert.Equal(t, 1, plan.WeekNumber)
	assert.Len(t, plan.Exercises, 6)

	w = s.do(t, http.MethodGet, "/api/v1/buddies", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.Buddy](t, w), 3)

	w = s.do(t, http.MethodGet, "/api/v1/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Maria", decode[service.Dashboard](t, w).UserName)

	w = s.do(t, http.MethodGet, "/api/v1/progress", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]domain.ProgressEntry](t, w))
}

func TestSessionFlow(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/session", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/session", gin.H{"mode": "diagram"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	snap := decode[service.SessionSnapshot](t, w)
	assert.Equal(t, "diagram", string(snap.Mode))

	w = s.do(t, http.MethodPatch, "/api/v1/session/feedback", gin.H{"color": "GREEN"})
	assert.Equal(t, http.StatusConflict, w.Code, "no feedback while playing")

	for i := 0; i < snap.Total; i++ {
		w = s.do(t, http.MethodPost, "/api/v1/session/next", nil)
		require.Equal(t, http.StatusOK, w.Code)
	}
	w = s.do(t, http.MethodPost, "/api/v1/session/next", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/session/submit", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "color is required")

	w = s.do(t, http.MethodPatch, "/api/v1/session/feedback", gin.H{"color": "PURPLE"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(t, http.MethodPatch, "/api/v1/session/feedback", gin.H{"painLevel": 12})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPatch, "/api/v1/session/feedback", gin.H{"color": "RED", "painLevel": 7, "easeRating": 3, "comments": "knee hurt"})
	require.Equal(t, http.StatusOK, w.Code)
	snap = decode[service.SessionSnapshot](t, w)
	assert.True(t, snap.CanSubmit)
	assert.Equal(t, 7, snap.Feedback.PainLevel)

	w = s.do(t, http.MethodPost, "/api/v1/session/breaks", gin.H{"delta": 1})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[service.SessionSnapshot](t, w).Feedback.BreaksTaken)
	w = s.do(t, http.MethodPost, "/api/v1/session/breaks", gin.H{"delta": 3})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/session/submit", nil)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	assert.NotNil(t, decode[service.AppSnapshot](t, w).Generating)

	require.Eventually(t, func() bool {
		var snap service.AppSnapshot
		w := s.do(t, http.MethodGet, "/api/v1/app", nil)
		if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
			return false
		}
		return snap.Generating == nil && snap.WeekNumber == 2
	}, 2*time.Second, 5*time.Millisecond)

	plan := decode[domain.CarePlan](t, s.do(t, http.MethodGet, "/api/v1/plan", nil))
	assert.Equal(t, adaptation.FallbackRationale, plan.Rationale)
	assert.Equal(t, 10, plan.Exercises[0].Reps)

	progress := decode[[]domain.ProgressEntry](t, s.do(t, http.MethodGet, "/api/v1/progress", nil))
	require.Len(t, progress, 1)
	assert.Equal(t, "Great Effort", progress[0].Label)
	assert.Equal(t, 90, progress[0].Percent)

	history := decode[[]domain.CarePlan](t, s.do(t, http.MethodGet, "/api/v1/plans", nil))
	assert.Len(t, history, 2)
}

func TestCancelSession(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/session", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "video", string(decode[service.SessionSnapshot](t, w).Mode))

	w = s.do(t, http.MethodPost, "/api/v1/session/cancel", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, shell.KindPlan, decode[service.AppSnapshot](t, w).View)
}
