package scenario

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/loykin/apiscope/internal/constants"
	"github.com/loykin/apiscope/internal/httpc"
	"github.com/loykin/apiscope/internal/util"
	"github.com/loykin/apiscope/pkg/config"
	"github.com/loykin/apiscope/pkg/value"
)

// Key is a configure key. The vocabulary is closed and case-sensitive.
type Key string

const (
	KeyHeaders            Key = "headers"
	KeyCookies            Key = "cookies"
	KeyResponseHeaders    Key = "responseHeaders"
	KeyCors               Key = "cors"
	KeyLogPrettyResponse  Key = "logPrettyResponse"
	KeyLogPrettyRequest   Key = "logPrettyRequest"
	KeyPrintEnabled       Key = "printEnabled"
	KeyAfterScenario      Key = "afterScenario"
	KeyAfterFeature       Key = "afterFeature"
	KeyHTTPClientClass    Key = "httpClientClass"
	KeyHTTPClientInstance Key = "httpClientInstance"
	KeyCharset            Key = "charset"
	KeySSL                Key = "ssl"
	KeyFollowRedirects    Key = "followRedirects"
	KeyConnectTimeout     Key = "connectTimeout"
	KeyReadTimeout        Key = "readTimeout"
	KeyProxy              Key = "proxy"
	KeyUserDefined        Key = "userDefined"
)

// Tier classifies a key by its effect on the client.
type Tier int

const (
	// TierNone keys only mutate the set.
	TierNone Tier = iota
	// TierRebuild keys provision a new client.
	TierRebuild
	// TierReconfigure keys reconfigure the existing client once.
	TierReconfigure
)

func (t Tier) String() string {
	switch t {
	case TierRebuild:
		return "rebuild"
	case TierReconfigure:
		return "reconfigure"
	default:
		return "none"
	}
}

// Outcome is the terminal state of a single dispatch.
type Outcome int

const (
	// OutcomeNone is reported alongside errors.
	OutcomeNone Outcome = iota
	OutcomeMutated
	OutcomeClientReplaced
	OutcomeClientReconfigured
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMutated:
		return "mutated"
	case OutcomeClientReplaced:
		return "client replaced"
	case OutcomeClientReconfigured:
		return "client reconfigured"
	default:
		return "none"
	}
}

type setter func(set *config.Set, v value.Value) error

type keySpec struct {
	tier  Tier
	apply setter
	doc   string
}

// KeyInfo describes one configure key.
type KeyInfo struct {
	Key         Key
	Tier        Tier
	Description string
}

var keyOrder = []Key{
	KeyHeaders, KeyCookies, KeyResponseHeaders, KeyCors, KeyLogPrettyResponse,
	KeyLogPrettyRequest, KeyPrintEnabled, KeyAfterScenario, KeyAfterFeature,
	KeyHTTPClientClass, KeyHTTPClientInstance, KeyCharset,
	KeySSL, KeyFollowRedirects, KeyConnectTimeout, KeyReadTimeout, KeyProxy, KeyUserDefined,
}

var keyTable = map[Key]keySpec{
	KeyHeaders: {TierNone, func(s *config.Set, v value.Value) error {
		s.Headers = v
		return nil
	}, "default request headers"},
	KeyCookies: {TierNone, func(s *config.Set, v value.Value) error {
		s.Cookies = v
		return nil
	}, "default request cookies"},
	KeyResponseHeaders: {TierNone, func(s *config.Set, v value.Value) error {
		s.ResponseHeaders = v
		return nil
	}, "headers added to mock responses"},
	KeyCors: {TierNone, func(s *config.Set, v value.Value) error {
		s.CorsEnabled = v.IsBooleanTrue()
		return nil
	}, "enable CORS headers on mock responses"},
	KeyLogPrettyResponse: {TierNone, func(s *config.Set, v value.Value) error {
		s.LogPrettyResponse = v.IsBooleanTrue()
		return nil
	}, "pretty-print logged responses"},
	KeyLogPrettyRequest: {TierNone, func(s *config.Set, v value.Value) error {
		s.LogPrettyRequest = v.IsBooleanTrue()
		return nil
	}, "pretty-print logged requests"},
	KeyPrintEnabled: {TierNone, func(s *config.Set, v value.Value) error {
		s.PrintEnabled = v.IsBooleanTrue()
		return nil
	}, "enable print statements"},
	KeyAfterScenario: {TierNone, func(s *config.Set, v value.Value) error {
		s.AfterScenario = v
		return nil
	}, "hook run after each scenario"},
	KeyAfterFeature: {TierNone, func(s *config.Set, v value.Value) error {
		s.AfterFeature = v
		return nil
	}, "hook run after the feature"},
	KeyHTTPClientClass: {TierRebuild, func(s *config.Set, v value.Value) error {
		s.SetClientClass(v.AsString())
		return nil
	}, "registered client class"},
	KeyHTTPClientInstance: {TierRebuild, applyClientInstance, "client instance override"},
	KeyCharset:            {TierRebuild, applyCharset, "request charset, null clears"},
	KeySSL:                {TierReconfigure, applySSL, "TLS algorithm, key/trust stores or on/off"},
	KeyFollowRedirects: {TierReconfigure, func(s *config.Set, v value.Value) error {
		s.FollowRedirects = v.IsBooleanTrue()
		return nil
	}, "follow redirects"},
	KeyConnectTimeout: {TierReconfigure, func(s *config.Set, v value.Value) error {
		return parseTimeout(v, &s.ConnectTimeout)
	}, "connect timeout in milliseconds"},
	KeyReadTimeout: {TierReconfigure, func(s *config.Set, v value.Value) error {
		return parseTimeout(v, &s.ReadTimeout)
	}, "read timeout in milliseconds"},
	KeyProxy: {TierReconfigure, applyProxy, "proxy uri or {uri, username, password}"},
	KeyUserDefined: {TierReconfigure, func(s *config.Set, v value.Value) error {
		s.UserDefined = v.AsMap()
		return nil
	}, "application-defined settings"},
}

// Keys lists the configure vocabulary in declaration order.
func Keys() []KeyInfo {
	out := make([]KeyInfo, 0, len(keyOrder))
	for _, k := range keyOrder {
		spec := keyTable[k]
		out = append(out, KeyInfo{Key: k, Tier: spec.tier, Description: spec.doc})
	}
	return out
}

// Configure applies one configuration change. Changes are not rolled back
// when a later step fails.
func (c *Context) Configure(key string, v value.Value) error {
	_, err := c.Dispatch(key, v)
	return err
}

// Dispatch is Configure reporting which outcome the key produced.
func (c *Context) Dispatch(key string, v value.Value) (Outcome, error) {
	k := Key(strings.TrimSpace(key))
	spec, ok := keyTable[k]
	if !ok {
		return OutcomeNone, &ConfigureError{Key: k, Err: ErrUnknownKey}
	}
	log := c.log.WithKey(string(k))
	if err := spec.apply(c.store.config, v); err != nil {
		return OutcomeNone, &ConfigureError{Key: k, Err: err}
	}

	outcome := OutcomeMutated
	switch spec.tier {
	case TierRebuild:
		if err := c.provision(); err != nil {
			return OutcomeNone, err
		}
		outcome = OutcomeClientReplaced
	case TierReconfigure:
		if err := c.store.config.Validate(); err != nil {
			return OutcomeNone, &ConfigureError{Key: k, Err: fmt.Errorf("%w: %w", ErrInvalidValue, err)}
		}
		if err := c.reconfigure(); err != nil {
			return OutcomeNone, err
		}
		outcome = OutcomeClientReconfigured
	}
	log.Debug("configure", "tier", spec.tier.String(), "outcome", outcome.String())
	return outcome, nil
}

// ConfigureSet replaces the whole configuration set and provisions a new
// client from it.
func (c *Context) ConfigureSet(set *config.Set) error {
	if set == nil {
		set = config.New()
	}
	c.store.config = set
	return c.provision()
}

// ConfigureExpr evaluates expr against the context's variables and applies
// the result to key.
func (c *Context) ConfigureExpr(key, expr string) error {
	v, err := c.rt.evaluator().Evaluate(expr, c.store.vars)
	if err != nil {
		return &ConfigureError{Key: Key(strings.TrimSpace(key)), Err: err}
	}
	return c.Configure(key, v)
}

func applyClientInstance(s *config.Set, v value.Value) error {
	if v.IsNull() {
		s.SetClientInstance(nil)
		return nil
	}
	client, ok := v.Raw().(httpc.Client)
	if !ok {
		return invalid("%T does not implement httpc.Client", v.Raw())
	}
	s.SetClientInstance(client)
	return nil
}

func applyCharset(s *config.Set, v value.Value) error {
	if v.IsNull() {
		s.Charset = ""
		return nil
	}
	name, err := config.CanonicalCharset(v.AsString())
	if err != nil {
		return invalid("%v", err)
	}
	s.Charset = name
	return nil
}

// sslFields mirrors the map shape of the ssl key. TrustAll stays untyped so
// that both "true" and true are accepted.
type sslFields struct {
	KeyStore           string `mapstructure:"keyStore"`
	KeyStorePassword   string `mapstructure:"keyStorePassword"`
	KeyStoreType       string `mapstructure:"keyStoreType"`
	TrustStore         string `mapstructure:"trustStore"`
	TrustStorePassword string `mapstructure:"trustStorePassword"`
	TrustStoreType     string `mapstructure:"trustStoreType"`
	TrustAll           any    `mapstructure:"trustAll"`
	Algorithm          string `mapstructure:"algorithm"`
}

func applySSL(s *config.Set, v value.Value) error {
	switch v.Type() {
	case value.TypeString:
		s.SSL.Enabled = true
		s.SSL.Algorithm = v.AsString()
	case value.TypeMap:
		s.SSL.Enabled = true
		var in sslFields
		if err := decodeWeak(v.AsMap(), &in); err != nil {
			return invalid("ssl: %v", err)
		}
		s.SSL.KeyStore = in.KeyStore
		s.SSL.KeyStorePassword = in.KeyStorePassword
		s.SSL.KeyStoreType = in.KeyStoreType
		s.SSL.TrustStore = in.TrustStore
		s.SSL.TrustStorePassword = in.TrustStorePassword
		s.SSL.TrustStoreType = in.TrustStoreType
		if in.TrustAll != nil {
			s.SSL.TrustAll = strings.EqualFold(strings.TrimSpace(value.New(in.TrustAll).AsString()), "true")
		}
		s.SSL.Algorithm = util.TrimWithDefault(in.Algorithm, constants.DefaultSSLAlgorithm)
	case value.TypeBoolean, value.TypeNull:
		// key and trust store settings from earlier calls are kept
		s.SSL.Enabled = v.IsBooleanTrue()
	default:
		return invalid("ssl must be a string, map or boolean, got %s", v.Type())
	}
	return nil
}

func applyProxy(s *config.Set, v value.Value) error {
	switch v.Type() {
	case value.TypeString:
		s.Proxy.URI = v.AsString()
	case value.TypeMap:
		var p config.ProxySettings
		if err := decodeWeak(v.AsMap(), &p); err != nil {
			return invalid("proxy: %v", err)
		}
		s.Proxy = p
	default:
		return invalid("proxy must be a string or map, got %s", v.Type())
	}
	return nil
}

func parseTimeout(v value.Value, dst *int) error {
	n, err := strconv.ParseInt(strings.TrimSpace(v.AsString()), 10, 32)
	if err != nil {
		return invalid("timeout %q is not a 32-bit integer", v.AsString())
	}
	if n < 0 {
		return invalid("timeout %d is negative", n)
	}
	*dst = int(n)
	return nil
}

func decodeWeak(in map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}
