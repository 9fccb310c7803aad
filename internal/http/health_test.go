package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct {
	err error
}

func (f fakePinger) Ping() error { return f.err }

func healthRouter(db Pinger) *gin.Engine {
	router := gin.New()
	h := NewHealthController(db, "1.2.3")
	router.GET("/health", h.Status)
	router.GET("/ping", h.Ping)
	return router
}

func TestHealthController_Status(t *testing.T) {
	tests := []struct {
		name       string
		db         Pinger
		wantCode   int
		wantStatus string
		wantCheck  string
	}{
		{"healthy", fakePinger{}, http.StatusOK, "healthy", "ok"},
		{"database down", fakePinger{err: errors.New("closed")}, http.StatusServiceUnavailable, "unhealthy", "error: closed"},
		{"no database", nil, http.StatusOK, "healthy", "not configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(healthRouter(tt.db), http.MethodGet, "/health")
			assert.Equal(t, tt.wantCode, rr.Code)

			var resp HealthResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Equal(t, "1.2.3", resp.Version)
			assert.Equal(t, tt.wantCheck, resp.Checks["database"])
		})
	}
}

func TestHealthController_Ping(t *testing.T) {
	rr := serve(healthRouter(nil), http.MethodGet, "/ping")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"pong"}`, rr.Body.String())
}
