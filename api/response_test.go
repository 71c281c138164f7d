package api

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendlens/analytics"
	"spendlens/middleware"
)

func TestResponse_CarriesRequestID(t *testing.T) {
	router := gin.New()
	router.Use(middleware.RequestID())
	router.GET("/ok", func(c *gin.Context) { Success(c, gin.H{"n": 1}) })
	router.GET("/missing", func(c *gin.Context) { NotFound(c, "记录不存在") })

	for _, path := range []string{"/ok", "/missing"} {
		req := httptest.NewRequest("GET", path, nil)
		req.Header.Set("X-Request-ID", "req-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		var resp Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), path)
		assert.Equal(t, "req-123", resp.RequestID, path)
		assert.Equal(t, w.Code, resp.Code, path)
	}
}

func TestResponse_NoRequestIDWithoutMiddleware(t *testing.T) {
	router := gin.New()
	router.GET("/ok", func(c *gin.Context) { Success(c, nil) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/ok", nil))

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	_, ok := resp["request_id"]
	assert.False(t, ok)
	assert.Equal(t, "success", resp["message"])
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"参数非法", fmt.Errorf("%w: month must be between 1 and 12", analytics.ErrInvalidArgument), 400, "invalid argument: month must be between 1 and 12"},
		{"内部错误", assert.AnError, 500, assert.AnError.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/x", func(c *gin.Context) { respondError(c, tt.err, "失败") })

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest("GET", "/x", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			var resp Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantMsg, resp.Message)
		})
	}
}
