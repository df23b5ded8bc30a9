package metadata

import (
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fiscalid/pkg/requestcontext"
)

func TestClientIPFromRequest(t *testing.T) {
	proxies := []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}

	tests := []struct {
		name    string
		trusted []netip.Prefix
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "forwarded through trusted proxy", trusted: proxies, headers: map[string]string{"X-Forwarded-For": "203.0.113.9"}, remote: "10.0.0.1:443", want: "203.0.113.9"},
		{name: "spoofed hop left of the real client", trusted: proxies, headers: map[string]string{"X-Forwarded-For": "198.51.100.66, 203.0.113.9"}, remote: "10.0.0.1:443", want: "203.0.113.9"},
		{name: "chain of trusted proxies", trusted: proxies, headers: map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.7"}, remote: "10.0.0.1:443", want: "203.0.113.9"},
		{name: "real ip header from trusted proxy", trusted: proxies, headers: map[string]string{"X-Real-IP": " 198.51.100.4 "}, remote: "10.0.0.1:443", want: "198.51.100.4"},
		{name: "forwarded header from untrusted peer", trusted: proxies, headers: map[string]string{"X-Forwarded-For": "203.0.113.9"}, remote: "192.0.2.10:5555", want: "192.0.2.10"},
		{name: "no trusted proxies configured", headers: map[string]string{"X-Forwarded-For": "203.0.113.9", "X-Real-IP": "198.51.100.4"}, remote: "10.0.0.1:443", want: "10.0.0.1"},
		{name: "remote addr ipv4", remote: "192.0.2.10:5555", want: "192.0.2.10"},
		{name: "remote addr ipv6", remote: "[::1]:8080", want: "::1"},
		{name: "no remote addr", want: "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIPFromRequest(r, tt.trusted))
		})
	}
}

func TestParseTrustedProxies(t *testing.T) {
	got, err := ParseTrustedProxies([]string{"10.1.2.3/8", " 127.0.0.1 ", "::1", ""})
	require.NoError(t, err)
	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("127.0.0.1/32"),
		netip.MustParsePrefix("::1/128"),
	}, got)

	_, err = ParseTrustedProxies([]string{"proxy.internal"})
	assert.Error(t, err)
	_, err = ParseTrustedProxies([]string{"10.0.0.0/99"})
	assert.Error(t, err)
}

func TestClientMetadataMiddleware(t *testing.T) {
	var gotIP, gotUA string
	h := ClientMetadata(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIP = requestcontext.ClientIP(r.Context())
		gotUA = requestcontext.UserAgent(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.1:1234"
	r.Header.Set("User-Agent", "checkout")
	r.Header.Set("X-Forwarded-For", "203.0.113.9")
	h.ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, "192.0.2.1", gotIP)
	assert.Equal(t, "checkout", gotUA)
}
