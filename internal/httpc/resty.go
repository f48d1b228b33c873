package httpc

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/loykin/apiscope/internal/common"
	"github.com/loykin/apiscope/internal/constants"
	"github.com/loykin/apiscope/pkg/config"
	"github.com/loykin/apiscope/pkg/value"
)

// RestyClient is the default Client, backed by a resty.Client whose transport
// is rebuilt on every Configure.
type RestyClient struct {
	mu     sync.RWMutex
	client *resty.Client
	set    *config.Set
	opts   Options
}

// NewRestyClient returns an unconfigured client. Call Configure before use.
func NewRestyClient(opts Options) *RestyClient {
	c := &RestyClient{client: resty.New(), set: config.New(), opts: opts}
	c.client.OnBeforeRequest(c.beforeRequest)
	c.client.OnAfterResponse(c.afterResponse)
	return c
}

// Configure rebuilds the transport, redirect policy and per-request defaults
// from set.
func (c *RestyClient) Configure(set *config.Set) error {
	if set == nil {
		return fmt.Errorf("httpc: nil configuration set")
	}
	tr, err := buildTransport(set)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if old, ok := c.client.GetClient().Transport.(*http.Transport); ok && old != tr {
		old.CloseIdleConnections()
	}
	c.client.SetTransport(tr)
	if set.FollowRedirects {
		c.client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(constants.DefaultMaxRedirects))
	} else {
		c.client.SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}))
	}
	c.set = set.Clone()
	return nil
}

// R starts a new request.
func (c *RestyClient) R() *resty.Request {
	return c.client.R()
}

// Resty exposes the underlying resty client.
func (c *RestyClient) Resty() *resty.Client {
	return c.client
}

// Settings returns the configuration the client was last configured with.
func (c *RestyClient) Settings() *config.Set {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.set.Clone()
}

// Close releases idle connections.
func (c *RestyClient) Close() {
	c.client.GetClient().CloseIdleConnections()
}

func (c *RestyClient) beforeRequest(_ *resty.Client, r *resty.Request) error {
	c.mu.RLock()
	set := c.set
	c.mu.RUnlock()

	for name, vals := range headerValues(set.Headers) {
		if r.Header.Get(name) != "" {
			continue
		}
		for _, v := range vals {
			r.Header.Add(name, v)
		}
	}
	for _, ck := range configCookies(set.Cookies) {
		r.SetCookie(ck)
	}
	if set.Charset != "" {
		ct := r.Header.Get("Content-Type")
		if ct != "" && !strings.Contains(strings.ToLower(ct), "charset=") {
			r.Header.Set("Content-Type", ct+"; charset="+set.Charset)
		}
	}
	return nil
}

func (c *RestyClient) afterResponse(_ *resty.Client, resp *resty.Response) error {
	if c.opts.OnRequest == nil && c.opts.Logger == nil {
		return nil
	}
	sent := &SentRequest{
		Method:     resp.Request.Method,
		URL:        resp.Request.URL,
		Body:       resp.Request.Body,
		StatusCode: resp.StatusCode(),
		Duration:   resp.Time(),
	}
	if raw := resp.Request.RawRequest; raw != nil {
		sent.URL = raw.URL.String()
		sent.Header = raw.Header.Clone()
	} else {
		sent.Header = resp.Request.Header.Clone()
	}
	if c.opts.Logger != nil {
		c.opts.Logger.Debug("request sent",
			"method", sent.Method,
			"url", common.MaskSensitiveData(sent.URL),
			"headers", common.GetGlobalMasker().MaskHeaders(sent.Header),
			"status", sent.StatusCode,
			"duration", sent.Duration)
	}
	if c.opts.OnRequest != nil {
		c.opts.OnRequest(sent)
	}
	return nil
}

func buildTransport(set *config.Set) (*http.Transport, error) {
	dialer := &net.Dialer{
		Timeout:   set.ConnectTimeoutDuration(),
		KeepAlive: 30 * time.Second,
	}
	tr := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   set.ConnectTimeoutDuration(),
		ResponseHeaderTimeout: set.ReadTimeoutDuration(),
		MaxIdleConns:          constants.DefaultMaxIdleConns,
		MaxIdleConnsPerHost:   constants.DefaultMaxIdleConnsPerHost,
		IdleConnTimeout:       constants.DefaultIdleConnTimeout,
		ForceAttemptHTTP2:     true,
	}
	if set.Proxy.URI != "" {
		u, err := proxyURL(set.Proxy)
		if err != nil {
			return nil, err
		}
		tr.Proxy = http.ProxyURL(u)
	}
	if set.SSL.Enabled {
		cfg, err := buildTLSConfig(set.SSL)
		if err != nil {
			return nil, err
		}
		tr.TLSClientConfig = cfg
	}
	return tr, nil
}

func proxyURL(p config.ProxySettings) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(p.URI))
	if err != nil {
		return nil, fmt.Errorf("httpc: invalid proxy uri: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("httpc: invalid proxy uri %q", p.URI)
	}
	if p.Username != "" {
		u.User = url.UserPassword(p.Username, p.Password)
	}
	return u, nil
}

// headerValues flattens a configured headers value. Lists become repeated
// header values.
func headerValues(v value.Value) map[string][]string {
	m := v.AsMap()
	if len(m) == 0 {
		return nil
	}
	out := make(map[string][]string, len(m))
	for name, raw := range m {
		item := value.New(raw)
		switch {
		case item.IsNull():
			continue
		case item.IsList():
			for _, e := range item.AsList() {
				out[name] = append(out[name], value.New(e).AsString())
			}
		default:
			out[name] = []string{item.AsString()}
		}
	}
	return out
}

// configCookies converts a configured cookies value. Entries are either plain
// values or maps carrying a "value" field.
func configCookies(v value.Value) []*http.Cookie {
	m := v.AsMap()
	if len(m) == 0 {
		return nil
	}
	out := make([]*http.Cookie, 0, len(m))
	for _, name := range v.Keys() {
		raw := value.New(m[name])
		if raw.IsNull() {
			continue
		}
		switch c := raw.Raw().(type) {
		case *http.Cookie:
			out = append(out, &http.Cookie{Name: name, Value: c.Value})
			continue
		case http.Cookie:
			out = append(out, &http.Cookie{Name: name, Value: c.Value})
			continue
		}
		if raw.IsMapLike() {
			out = append(out, &http.Cookie{Name: name, Value: raw.Get("value").AsString()})
			continue
		}
		out = append(out, &http.Cookie{Name: name, Value: raw.AsString()})
	}
	return out
}
