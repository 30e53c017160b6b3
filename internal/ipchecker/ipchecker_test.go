package ipchecker

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	checker, err := New("")
	require.NoError(t, err)
	assert.True(t, checker.IsTrustedSubnetEmpty())
	assert.False(t, checker.Check(net.ParseIP("10.0.0.1")))

	_, err = New("not-a-cidr")
	assert.Error(t, err)
}

func TestGetClientIP(t *testing.T) {
	checker, err := New("10.0.0.0/8")
	require.NoError(t, err)

	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		expected   string
	}{
		{"x-real-ip", map[string]string{"X-Real-IP": "10.1.2.3"}, "192.0.2.1:1234", "10.1.2.3"},
		{"x-forwarded-for", map[string]string{"X-Forwarded-For": "10.9.9.9, 192.0.2.7"}, "192.0.2.1:1234", "10.9.9.9"},
		{"remote addr", nil, "192.0.2.1:1234", "192.0.2.1"},
		{"garbage header falls back", map[string]string{"X-Forwarded-For": "garbage"}, "192.0.2.1:1234", "192.0.2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			ip, err := checker.GetClientIP(req)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ip.String())
		})
	}
}

func TestTrustedOnly(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name           string
		subnet         string
		remoteAddr     string
		expectedStatus int
	}{
		{"disabled", "", "203.0.113.5:80", http.StatusOK},
		{"inside", "127.0.0.0/8", "127.0.0.1:5555", http.StatusOK},
		{"outside", "10.0.0.0/8", "203.0.113.5:80", http.StatusForbidden},
		{"unparsable remote", "10.0.0.0/8", "nonsense", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker, err := New(tt.subnet)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			req.RemoteAddr = tt.remoteAddr
			rec := httptest.NewRecorder()

			checker.TrustedOnly(ok).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}
