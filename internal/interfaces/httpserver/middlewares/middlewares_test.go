package middlewares

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecovery_BodyFollowsRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.Use(RequestID(), Recovery(zerolog.Nop()))
	boom := func(c *gin.Context) { panic("boom") }
	engine.POST("/v1/chat", boom)
	engine.POST("/api/upload", boom)

	tests := []struct {
		path string
		key  string
		want string
	}{
		{"/v1/chat", "response", "Something went wrong. Please try again."},
		{"/api/upload", "error", "Failed to process upload"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, tt.path, nil))

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, map[string]string{tt.key: tt.want}, body)
		})
	}
}

func TestCORS_CredentialsOnlyForExplicitOrigins(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name            string
		origins         []string
		wantCredentials string
	}{
		{"unset means wildcard", nil, ""},
		{"wildcard", []string{"*"}, ""},
		{"explicit origin", []string{"https://chat.example.com"}, "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := gin.New()
			engine.Use(CORSWithConfig(DefaultCORSConfig(tt.origins)))
			engine.GET("/v1/audio/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodGet, "/v1/audio/aud_x", nil)
			req.Header.Set("Origin", "https://chat.example.com")
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)

			assert.Equal(t, "https://chat.example.com", w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantCredentials, w.Header().Get("Access-Control-Allow-Credentials"))
		})
	}

	forced := DefaultCORSConfig([]string{"*"})
	forced.AllowCredentials = true
	engine := gin.New()
	engine.Use(CORSWithConfig(forced))
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRequestID_KeepsPrintableIncomingID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.Use(RequestID())
	engine.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(CorrelationIDHeader, "corr-42")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, "corr-42", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "bad id")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.NotEqual(t, "bad id", w.Body.String())
	assert.Len(t, w.Body.String(), 36)
}
