// Package httpc provisions the HTTP clients used by execution contexts.
package httpc

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/loykin/apiscope/internal/common"
	"github.com/loykin/apiscope/internal/constants"
	"github.com/loykin/apiscope/pkg/config"
)

// Client is a transport client driven by a configuration set.
type Client interface {
	// Configure applies set to the client in place.
	Configure(set *config.Set) error
	// Close releases idle connections and other held resources.
	Close()
}

// SentRequest describes a request that went out on the wire.
type SentRequest struct {
	Method     string
	URL        string
	Header     http.Header
	Body       any
	StatusCode int
	Duration   time.Duration
}

// Options are passed to a Factory on every construction.
type Options struct {
	// OnRequest is invoked after each completed exchange.
	OnRequest func(*SentRequest)
	Logger    *common.Logger
}

// Factory constructs an unconfigured client.
type Factory func(opts Options) (Client, error)

// ErrUnknownClientClass is returned when no factory is registered for a class.
var ErrUnknownClientClass = errors.New("unknown http client class")

// ErrInvalidClientInstance is returned when a client instance override does
// not implement Client.
var ErrInvalidClientInstance = errors.New("client instance does not implement httpc.Client")

// ProvisionError reports a failed client construction.
type ProvisionError struct {
	Class string
	Err   error
}

func (e *ProvisionError) Error() string {
	return fmt.Sprintf("httpc: provision %q: %v", e.Class, e.Err)
}

func (e *ProvisionError) Unwrap() error { return e.Err }

// Provisioner builds clients from configuration sets using a registry of
// named factories.
type Provisioner struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// normalizeKey lower-cases and trims class names.
func normalizeKey(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// NewProvisioner returns a provisioner with the built-in classes registered.
func NewProvisioner() *Provisioner {
	p := &Provisioner{factories: map[string]Factory{}}
	p.Register(constants.DefaultClientClass, func(opts Options) (Client, error) {
		return NewRestyClient(opts), nil
	})
	return p
}

// Register adds a factory under a class name. Empty names and nil factories
// are ignored.
func (p *Provisioner) Register(name string, f Factory) {
	key := normalizeKey(name)
	if key == "" || f == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.factories[key] = f
}

// Classes lists the registered class names.
func (p *Provisioner) Classes() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, 0, len(p.factories))
	for k := range p.factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Owned reports whether a client provisioned from set belongs to the caller.
// Client instance overrides are never owned.
func Owned(set *config.Set) bool {
	return set != nil && set.ClientInstance == nil
}

// Provision builds a fully configured client from set. A client instance
// override is configured and returned as is.
func (p *Provisioner) Provision(set *config.Set, opts Options) (Client, error) {
	if set == nil {
		set = config.New()
	}
	if set.ClientInstance != nil {
		c, ok := set.ClientInstance.(Client)
		if !ok {
			return nil, &ProvisionError{Class: fmt.Sprintf("%T", set.ClientInstance), Err: ErrInvalidClientInstance}
		}
		if err := c.Configure(set); err != nil {
			return nil, &ProvisionError{Class: fmt.Sprintf("%T", c), Err: err}
		}
		return c, nil
	}

	class := normalizeKey(set.ClientClass)
	if class == "" {
		class = constants.DefaultClientClass
	}
	p.mu.RLock()
	f, ok := p.factories[class]
	p.mu.RUnlock()
	if !ok {
		return nil, &ProvisionError{Class: class, Err: ErrUnknownClientClass}
	}
	if err := set.Validate(); err != nil {
		return nil, &ProvisionError{Class: class, Err: err}
	}
	c, err := f(opts)
	if err != nil {
		return nil, &ProvisionError{Class: class, Err: err}
	}
	if err := c.Configure(set); err != nil {
		c.Close()
		return nil, &ProvisionError{Class: class, Err: err}
	}
	if opts.Logger != nil {
		opts.Logger.Debug("http client", "class", class, "status", "provisioned")
	}
	return c, nil
}
