package controller_test

import (
	"net/http"
	"net/http/httptest"
	"rightfit/pkg/controller"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTrustedProxies(t *testing.T) {
	proxies, err := controller.ParseTrustedProxies([]string{"10.0.0.0/8", " 192.168.1.1 ", "", "::1"})
	require.NoError(t, err)
	require.Len(t, proxies, 3)
	require.Equal(t, "192.168.1.1/32", proxies[1].String())

	_, err = controller.ParseTrustedProxies([]string{"proxy.internal"})
	require.Error(t, err)
	_, err = controller.ParseTrustedProxies([]string{"10.0.0.0/33"})
	require.Error(t, err)
}

func TestTrustedProxies_ClientIP(t *testing.T) {
	proxies, err := controller.ParseTrustedProxies([]string{"10.0.0.0/8"})
	require.NoError(t, err)

	tests := map[string]struct {
		remote  string
		headers map[string]string
		want    string
	}{
		"direct client": {
			remote: "203.0.113.9:4000",
			want:   "203.0.113.9",
		},
		"untrusted peer cannot forward": {
			remote:  "203.0.113.9:4000",
			headers: map[string]string{"X-Forwarded-For": "1.2.3.4", "X-Real-IP": "5.6.7.8"},
			want:    "203.0.113.9",
		},
		"rightmost untrusted hop": {
			remote:  "10.0.0.2:4000",
			headers: map[string]string{"X-Forwarded-For": "1.2.3.4, 198.51.100.1, 10.0.0.5"},
			want:    "198.51.100.1",
		},
		"every hop trusted": {
			remote:  "10.0.0.2:4000",
			headers: map[string]string{"X-Forwarded-For": "10.1.1.1, 10.0.0.5"},
			want:    "10.0.0.2",
		},
		"garbage hop stops the walk": {
			remote:  "10.0.0.2:4000",
			headers: map[string]string{"X-Forwarded-For": "1.2.3.4, not-an-ip"},
			want:    "10.0.0.2",
		},
		"real ip from trusted peer": {
			remote:  "10.0.0.2:4000",
			headers: map[string]string{"X-Real-IP": "198.51.100.7"},
			want:    "198.51.100.7",
		},
		"unparsable remote addr": {
			remote: "not-an-addr",
			want:   "not-an-addr",
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			require.Equal(t, tt.want, proxies.ClientIP(req))
		})
	}
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:4000"
	req.Header.Set("X-Forwarded-For", "1.2.3.4")
	require.Equal(t, "203.0.113.9", controller.GetClientIP(req), "headers are ignored without the middleware")

	var got string
	h := controller.WithClientIP(nil)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = controller.GetClientIP(r)
	}))
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.Equal(t, "203.0.113.9", got)
}
