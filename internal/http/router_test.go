package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpH "github.com/yungbote/eduverse-backend/internal/http/handlers"
	httpMW "github.com/yungbote/eduverse-backend/internal/http/middleware"
	"github.com/yungbote/eduverse-backend/internal/observability"
	pkgerrors "github.com/yungbote/eduverse-backend/internal/pkg/errors"
	"github.com/yungbote/eduverse-backend/internal/pkg/logger"
	"github.com/yungbote/eduverse-backend/internal/services"
)

type rejectingAuth struct {
	services.AuthService
}

func (rejectingAuth) SetContextFromToken(ctx context.Context, _ string) (context.Context, error) {
	return ctx, pkgerrors.ErrUnauthorized
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(RouterConfig{
		Log:            logger.Nop(),
		Metrics:        observability.NewMetrics(),
		MetricsEnabled: true,
		AuthMiddleware: httpMW.NewAuthMiddleware(logger.Nop(), rejectingAuth{}),
		AuthHandler:    httpH.NewAuthHandler(rejectingAuth{}),
		HealthHandler:  httpH.NewHealthHandler(logger.Nop(), nil),
	})
}

func TestRouterPublicAndProtectedRoutes(t *testing.T) {
	r := newTestRouter()

	cases := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/healthcheck", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/api/accounts", http.StatusOK},
		{http.MethodGet, "/api/accounts/protected", http.StatusUnauthorized},
		{http.MethodGet, "/protected-endpoint", http.StatusUnauthorized},
		{http.MethodGet, "/nope", http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestRouterSetsTraceHeaders(t *testing.T) {
	r := newTestRouter()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(httpMW.HeaderTraceID))
	assert.NotEmpty(t, w.Header().Get(httpMW.HeaderRequestID))
}

func TestServerRunStopsOnCancel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := NewServer(RouterConfig{Log: logger.Nop()})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, "127.0.0.1:0") }()
	cancel()
	assert.NoError(t, <-done)
}
