package config

import (
	"crypto/tls"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loykin/apiscope/internal/common"
	"github.com/loykin/apiscope/pkg/value"
)

func TestNew_Defaults(t *testing.T) {
	s := New()
	assert.True(t, s.FollowRedirects)
	assert.True(t, s.PrintEnabled)
	assert.Equal(t, 30000, s.ConnectTimeout)
	assert.Equal(t, 30000, s.ReadTimeout)
	assert.Equal(t, "TLS", s.SSL.Algorithm)
	assert.True(t, s.SSL.TrustAll)
	assert.False(t, s.SSL.Enabled)
	assert.Empty(t, s.ClientClass)
	assert.Nil(t, s.ClientInstance)
	assert.Empty(t, s.Charset)
	assert.True(t, s.Headers.IsNull())
	assert.Equal(t, 30*time.Second, s.ConnectTimeoutDuration())
	assert.Equal(t, 30*time.Second, s.ReadTimeoutDuration())
	require.NoError(t, s.Validate())
}

func TestClone_IsIndependent(t *testing.T) {
	s := New()
	s.Headers = value.New(map[string]any{"X-Trace": "1"})
	s.UserDefined = map[string]any{"nested": map[string]any{"k": "v"}}
	s.SSL.KeyStore = "a.pem"
	instance := &struct{}{}
	s.SetClientInstance(instance)

	c := s.Clone()
	c.Headers.Raw().(map[string]any)["X-Trace"] = "2"
	c.UserDefined["nested"].(map[string]any)["k"] = "changed"
	c.SSL.KeyStore = "b.pem"
	c.ConnectTimeout = 1

	assert.Equal(t, "1", s.Headers.Get("X-Trace").AsString())
	assert.Equal(t, "v", s.UserDefined["nested"].(map[string]any)["k"])
	assert.Equal(t, "a.pem", s.SSL.KeyStore)
	assert.Equal(t, 30000, s.ConnectTimeout)
	assert.Same(t, instance, c.ClientInstance)
}

func TestClientSelector_MutuallyExclusive(t *testing.T) {
	s := New()
	s.SetClientInstance("opaque")
	s.SetClientClass(" custom ")
	assert.Equal(t, "custom", s.ClientClass)
	assert.Nil(t, s.ClientInstance)

	s.SetClientInstance("opaque")
	assert.Empty(t, s.ClientClass)
	assert.Equal(t, "opaque", s.ClientInstance)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *Set)
		wantErr bool
	}{
		{"defaults", func(s *Set) {}, false},
		{"negative connect timeout", func(s *Set) { s.ConnectTimeout = -1 }, true},
		{"negative read timeout", func(s *Set) { s.ReadTimeout = -5 }, true},
		{"max int32 timeout", func(s *Set) { s.ConnectTimeout = 1<<31 - 1 }, false},
		{"timeout beyond int32", func(s *Set) { s.ReadTimeout = 1 << 31 }, true},
		{"valid proxy", func(s *Set) { s.Proxy.URI = "http://proxy:3128" }, false},
		{"proxy without scheme", func(s *Set) { s.Proxy.URI = "proxy" }, true},
		{"pem key store", func(s *Set) { s.SSL.KeyStoreType = "PEM" }, false},
		{"jks key store", func(s *Set) { s.SSL.KeyStoreType = "jks" }, true},
		{"pkcs12 trust store", func(s *Set) { s.SSL.TrustStoreType = "pkcs12" }, true},
		{"tls 1.3", func(s *Set) { s.SSL.Algorithm = "TLSv1.3" }, false},
		{"bogus algorithm", func(s *Set) { s.SSL.Algorithm = "ROT13" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			tt.mutate(s)
			err := s.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTLSVersions(t *testing.T) {
	minV, maxV, ok := TLSVersions("TLS")
	require.True(t, ok)
	assert.Equal(t, uint16(tls.VersionTLS12), minV)
	assert.Zero(t, maxV)

	minV, maxV, ok = TLSVersions("tlsv1.3")
	require.True(t, ok)
	assert.Equal(t, uint16(tls.VersionTLS13), minV)
	assert.Equal(t, uint16(tls.VersionTLS13), maxV)

	_, _, ok = TLSVersions("SSLv3")
	assert.False(t, ok)
}

func TestCanonicalCharset(t *testing.T) {
	name, err := CanonicalCharset("UTF8")
	require.NoError(t, err)
	assert.Equal(t, "utf-8", name)

	_, err = CanonicalCharset("no-such-charset")
	assert.Error(t, err)
}

func TestMasked_HidesSecrets(t *testing.T) {
	s := New()
	s.SSL.KeyStorePassword = "changeit"
	s.Proxy = ProxySettings{URI: "http://bob:pw@proxy:3128", Username: "bob", Password: "pw"}

	view := s.Masked()
	ssl := view["ssl"].(map[string]any)
	proxy := view["proxy"].(map[string]any)
	assert.Equal(t, common.MaskedValue, ssl["keyStorePassword"])
	assert.Equal(t, "", ssl["trustStorePassword"])
	assert.Equal(t, common.MaskedValue, proxy["password"])
	assert.Equal(t, "bob", proxy["username"])
	assert.NotContains(t, proxy["uri"], ":pw@")
	assert.Equal(t, "resty", view["httpClientClass"])
	assert.Equal(t, false, view["httpClientInstance"])
}
