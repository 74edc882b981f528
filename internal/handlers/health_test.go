package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func healthy() HealthChecker { return pingFunc(func(context.Context) error { return nil }) }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		db         HealthChecker
		cache      HealthChecker
		wantCode   int
		wantStatus string
		wantErr    string
		wantChecks map[string]string
	}{
		{
			name:       "database only",
			db:         healthy(),
			wantCode:   http.StatusOK,
			wantStatus: "ok",
			wantChecks: map[string]string{"database": "ok", "redis": "not configured"},
		},
		{
			name:       "all healthy",
			db:         healthy(),
			cache:      healthy(),
			wantCode:   http.StatusOK,
			wantStatus: "ok",
			wantChecks: map[string]string{"database": "ok", "redis": "ok"},
		},
		{
			name:       "database down",
			db:         pingFunc(func(context.Context) error { return errors.New("down") }),
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "degraded",
			wantErr:    "SERVICE_UNAVAILABLE",
			wantChecks: map[string]string{"database": "error", "redis": "not configured"},
		},
		{
			name:       "redis down",
			db:         healthy(),
			cache:      pingFunc(func(context.Context) error { return errors.New("down") }),
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "degraded",
			wantErr:    "SERVICE_UNAVAILABLE",
			wantChecks: map[string]string{"database": "ok", "redis": "error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			r := gin.New()
			r.GET("/health", NewHealthHandler(tt.db, tt.cache).Health)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantCode, w.Code)

			var response struct {
				Status string            `json:"status"`
				Code   string            `json:"code"`
				Checks map[string]string `json:"checks"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tt.wantStatus, response.Status)
			assert.Equal(t, tt.wantErr, response.Code)
			assert.Equal(t, tt.wantChecks, response.Checks)
		})
	}
}
