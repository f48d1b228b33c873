// Package config holds the configuration set that drives an execution
// context's HTTP client.
package config

import (
	"crypto/tls"
	"strings"
	"time"

	"github.com/loykin/apiscope/internal/common"
	"github.com/loykin/apiscope/internal/constants"
	"github.com/loykin/apiscope/pkg/value"
)

// SSLSettings describes the TLS material used by the client.
type SSLSettings struct {
	Enabled            bool   `mapstructure:"enabled"`
	Algorithm          string `mapstructure:"algorithm" validate:"omitempty,tls_algorithm"`
	KeyStore           string `mapstructure:"keyStore"`
	KeyStorePassword   string `mapstructure:"keyStorePassword"`
	KeyStoreType       string `mapstructure:"keyStoreType" validate:"omitempty,store_type"`
	TrustStore         string `mapstructure:"trustStore"`
	TrustStorePassword string `mapstructure:"trustStorePassword"`
	TrustStoreType     string `mapstructure:"trustStoreType" validate:"omitempty,store_type"`
	TrustAll           bool   `mapstructure:"trustAll"`
}

// ProxySettings describes an outbound HTTP proxy.
type ProxySettings struct {
	URI      string `mapstructure:"uri" validate:"omitempty,proxy_uri"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// Set is the flat set of every client-affecting option.
type Set struct {
	Headers         value.Value
	Cookies         value.Value
	ResponseHeaders value.Value
	AfterScenario   value.Value
	AfterFeature    value.Value

	CorsEnabled       bool
	LogPrettyRequest  bool
	LogPrettyResponse bool
	PrintEnabled      bool

	// At most one of ClientClass and ClientInstance is set.
	ClientClass    string
	ClientInstance any

	// Charset is the canonical encoding name; empty means unset.
	Charset string

	SSL             SSLSettings
	FollowRedirects bool
	ConnectTimeout  int `validate:"gte=0,lte=2147483647"`
	ReadTimeout     int `validate:"gte=0,lte=2147483647"`
	Proxy           ProxySettings
	UserDefined     map[string]any
}

// New returns a set with default values.
func New() *Set {
	return &Set{
		PrintEnabled:    true,
		FollowRedirects: true,
		ConnectTimeout:  constants.DefaultConnectTimeout,
		ReadTimeout:     constants.DefaultReadTimeout,
		SSL: SSLSettings{
			Algorithm: constants.DefaultSSLAlgorithm,
			TrustAll:  true,
		},
	}
}

// Clone copy-constructs the set. Values and maps are deep copied; the client
// instance is shared.
func (s *Set) Clone() *Set {
	if s == nil {
		return New()
	}
	out := *s
	out.Headers = value.Copy(s.Headers)
	out.Cookies = value.Copy(s.Cookies)
	out.ResponseHeaders = value.Copy(s.ResponseHeaders)
	out.AfterScenario = value.Copy(s.AfterScenario)
	out.AfterFeature = value.Copy(s.AfterFeature)
	if s.UserDefined != nil {
		out.UserDefined, _ = value.Copy(value.New(s.UserDefined)).Raw().(map[string]any)
	}
	return &out
}

// SetClientClass selects a registered client class and drops any instance
// override.
func (s *Set) SetClientClass(name string) {
	s.ClientClass = strings.TrimSpace(name)
	s.ClientInstance = nil
}

// SetClientInstance installs a client instance override and drops the class
// selector.
func (s *Set) SetClientInstance(c any) {
	s.ClientInstance = c
	s.ClientClass = ""
}

// ConnectTimeoutDuration returns the connect timeout as a duration.
func (s *Set) ConnectTimeoutDuration() time.Duration {
	return time.Duration(s.ConnectTimeout) * time.Millisecond
}

// ReadTimeoutDuration returns the read timeout as a duration.
func (s *Set) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Millisecond
}

// TLSVersions maps an SSL algorithm name to TLS version bounds. A zero max
// means no upper bound.
func TLSVersions(algorithm string) (minVersion, maxVersion uint16, ok bool) {
	switch strings.ToUpper(strings.TrimSpace(algorithm)) {
	case "", "TLS", "SSL":
		return tls.VersionTLS12, 0, true
	case "TLSV1", "TLSV1.0":
		return tls.VersionTLS10, tls.VersionTLS10, true
	case "TLSV1.1":
		return tls.VersionTLS11, tls.VersionTLS11, true
	case "TLSV1.2":
		return tls.VersionTLS12, tls.VersionTLS12, true
	case "TLSV1.3":
		return tls.VersionTLS13, tls.VersionTLS13, true
	}
	return 0, 0, false
}

// Masked returns a dumpable view of the set with secrets masked.
func (s *Set) Masked() map[string]any {
	client := s.ClientClass
	if client == "" && s.ClientInstance == nil {
		client = constants.DefaultClientClass
	}
	view := map[string]any{
		"headers":            s.Headers.Plain(),
		"cookies":            s.Cookies.Plain(),
		"responseHeaders":    s.ResponseHeaders.Plain(),
		"cors":               s.CorsEnabled,
		"logPrettyRequest":   s.LogPrettyRequest,
		"logPrettyResponse":  s.LogPrettyResponse,
		"printEnabled":       s.PrintEnabled,
		"httpClientClass":    client,
		"httpClientInstance": s.ClientInstance != nil,
		"charset":            s.Charset,
		"ssl": map[string]any{
			"enabled":            s.SSL.Enabled,
			"algorithm":          s.SSL.Algorithm,
			"keyStore":           s.SSL.KeyStore,
			"keyStorePassword":   s.SSL.KeyStorePassword,
			"keyStoreType":       s.SSL.KeyStoreType,
			"trustStore":         s.SSL.TrustStore,
			"trustStorePassword": s.SSL.TrustStorePassword,
			"trustStoreType":     s.SSL.TrustStoreType,
			"trustAll":           s.SSL.TrustAll,
		},
		"followRedirects": s.FollowRedirects,
		"connectTimeout":  s.ConnectTimeout,
		"readTimeout":     s.ReadTimeout,
		"proxy": map[string]any{
			"uri":      common.MaskSensitiveData(s.Proxy.URI),
			"username": s.Proxy.Username,
			"password": s.Proxy.Password,
		},
	}
	if s.AfterScenario.Raw() != nil {
		view["afterScenario"] = s.AfterScenario.String()
	}
	if s.AfterFeature.Raw() != nil {
		view["afterFeature"] = s.AfterFeature.String()
	}
	if s.UserDefined != nil {
		view["userDefined"] = value.New(s.UserDefined).Plain()
	}
	return common.GetGlobalMasker().MaskMap(view)
}
