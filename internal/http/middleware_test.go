package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	router := gin.New()
	router.Use(RequestLogger(zap.New(core)))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/boom", func(c *gin.Context) {
		respondInternalError(c, errors.New("kaput"), "boom handler")
	})

	t.Run("generates request id", func(t *testing.T) {
		rr := serve(router, http.MethodGet, "/ok")
		_, err := uuid.Parse(rr.Header().Get(RequestIDHeader))
		assert.NoError(t, err)
	})

	t.Run("reuses valid request id", func(t *testing.T) {
		id := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/ok", nil)
		req.Header.Set(RequestIDHeader, id)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, id, rr.Header().Get(RequestIDHeader))
	})

	t.Run("replaces garbage request id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ok", nil)
		req.Header.Set(RequestIDHeader, "<script>")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.NotEqual(t, "<script>", rr.Header().Get(RequestIDHeader))
	})

	t.Run("internal errors logged with request id", func(t *testing.T) {
		logs.TakeAll()
		rr := serve(router, http.MethodGet, "/boom")
		require.Equal(t, http.StatusInternalServerError, rr.Code)

		errorLogs := logs.FilterMessage("internal error").All()
		require.Len(t, errorLogs, 1)
		fields := errorLogs[0].ContextMap()
		assert.Equal(t, "boom handler", fields["context"])
		assert.Equal(t, rr.Header().Get(RequestIDHeader), fields["request_id"])

		access := logs.FilterMessage("request").All()
		require.Len(t, access, 1)
		assert.Equal(t, zapcore.ErrorLevel, access[0].Level)
		assert.Equal(t, int64(http.StatusInternalServerError), access[0].ContextMap()["status"])
	})
}

func TestRequestLogger_NilLogger(t *testing.T) {
	router := gin.New()
	router.Use(RequestLogger(nil))
	router.GET("/ok", func(c *gin.Context) {
		requestLogger(c).Info("handled")
		c.Status(http.StatusNoContent)
	})

	rr := serve(router, http.MethodGet, "/ok")
	assert.Equal(t, http.StatusNoContent, rr.Code)
}
