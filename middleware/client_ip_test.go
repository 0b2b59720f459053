package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"carebook/config"
)

func requestContext(remoteAddr string, headers map[string]string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.RemoteAddr = remoteAddr
	for k, v := range headers {
		c.Request.Header.Set(k, v)
	}
	return c
}

func TestGetClientIPWithTrustedProxy(t *testing.T) {
	prev := config.AppConfig.TrustProxyHeaders
	config.AppConfig.TrustProxyHeaders = true
	defer func() { config.AppConfig.TrustProxyHeaders = prev }()

	c := requestContext("10.0.0.1:4321", map[string]string{
		"X-Forwarded-For": "203.0.113.7, 10.0.0.1",
	})
	assert.Equal(t, "203.0.113.7", getClientIP(c))

	c = requestContext("10.0.0.1:4321", map[string]string{
		"X-Real-IP": "203.0.113.8",
	})
	assert.Equal(t, "203.0.113.8", getClientIP(c))
}

func TestGetClientIPIgnoresHeadersWithoutTrustedProxy(t *testing.T) {
	prev := config.AppConfig.TrustProxyHeaders
	config.AppConfig.TrustProxyHeaders = false
	defer func() { config.AppConfig.TrustProxyHeaders = prev }()

	c := requestContext("192.0.2.5:9999", map[string]string{
		"X-Forwarded-For": "203.0.113.7",
		"X-Real-IP":       "203.0.113.8",
	})
	assert.Equal(t, "192.0.2.5", getClientIP(c))
}

func TestGetClientIPFallsBackToRemoteAddr(t *testing.T) {
	prev := config.AppConfig.TrustProxyHeaders
	config.AppConfig.TrustProxyHeaders = true
	defer func() { config.AppConfig.TrustProxyHeaders = prev }()

	c := requestContext("192.0.2.5:9999", nil)
	assert.Equal(t, "192.0.2.5", getClientIP(c))

	// RemoteAddr without a port is returned as-is.
	c = requestContext("192.0.2.6", nil)
	assert.Equal(t, "192.0.2.6", getClientIP(c))
}
