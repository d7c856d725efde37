package middleware

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func swaggerRouter(cfg SwaggerConfig) *gin.Engine {
	router := gin.New()
	docs := router.Group("/swagger", SwaggerProtection(cfg))
	docs.GET("/*any", func(c *gin.Context) {
		c.String(http.StatusOK, "docs")
	})
	return router
}

func serveFrom(router http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSwaggerProtection(t *testing.T) {
	tests := []struct {
		name   string
		cfg    SwaggerConfig
		remote string
		status int
	}{
		{"disabled", SwaggerConfig{Enabled: false}, "127.0.0.1:1234", http.StatusNotFound},
		{"open", SwaggerConfig{Enabled: true}, "203.0.113.9:1234", http.StatusOK},
		{"exact ip", SwaggerConfig{Enabled: true, AllowedIPs: []string{"127.0.0.1"}}, "127.0.0.1:1234", http.StatusOK},
		{"cidr", SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.0/8"}}, "10.1.2.3:1234", http.StatusOK},
		{"outside list", SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.0/8", "127.0.0.1"}}, "192.168.1.5:1234", http.StatusForbidden},
		{"garbage entries only", SwaggerConfig{Enabled: true, AllowedIPs: []string{"not-an-ip"}}, "127.0.0.1:1234", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, serveFrom(swaggerRouter(tt.cfg), tt.remote).Code)
		})
	}
}

func TestAllowList(t *testing.T) {
	l := parseAllowList([]string{" 127.0.0.1 ", "::1", "192.168.0.0/16", "bogus/99"})
	assert.Len(t, l.ips, 2)
	assert.Len(t, l.nets, 1)
	assert.True(t, l.contains(net.ParseIP("::1")))
	assert.True(t, l.contains(net.ParseIP("192.168.44.1")))
	assert.False(t, l.contains(net.ParseIP("8.8.8.8")))
	assert.False(t, l.contains(nil))
}
