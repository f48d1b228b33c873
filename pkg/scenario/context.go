// Package scenario implements the execution context of a test unit: its
// variables, validators, configuration and HTTP client, and how these are
// inherited across nested calls.
package scenario

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/loykin/apiscope/internal/common"
	"github.com/loykin/apiscope/internal/constants"
	"github.com/loykin/apiscope/internal/httpc"
	"github.com/loykin/apiscope/internal/validator"
	"github.com/loykin/apiscope/pkg/config"
	"github.com/loykin/apiscope/pkg/env"
	"github.com/loykin/apiscope/pkg/value"
)

// Ownership records how a context came by its store.
type Ownership int

const (
	// Fresh contexts own a store built from defaults.
	Fresh Ownership = iota
	// Copied contexts own a deep copy of the parent's store.
	Copied
	// Shared contexts alias the parent's store.
	Shared
)

func (o Ownership) String() string {
	switch o {
	case Copied:
		return "copied"
	case Shared:
		return "shared"
	default:
		return "fresh"
	}
}

// store is the mutable state a shared context aliases.
type store struct {
	vars        *env.Vars
	validators  map[string]validator.Validator
	config      *config.Set
	client      httpc.Client
	owned       bool
	prevRequest *httpc.SentRequest
}

func (s *store) setPrevRequest(r *httpc.SentRequest) { s.prevRequest = r }

// Context is the mutable state of one execution unit.
type Context struct {
	id        string
	rt        *Runtime
	log       *common.Logger
	callDepth int
	tags      []string
	tagValues map[string][]string
	ownership Ownership
	store     *store
	scenario  *ScenarioInfo
	closed    bool
}

// NewContext builds the context of a unit from its call link.
func NewContext(rt *Runtime, link CallLink) (*Context, error) {
	if rt == nil {
		rt = NewRuntime()
	}
	c := &Context{
		id:        uuid.NewString(),
		callDepth: link.CallDepth,
		tags:      link.Tags,
		tagValues: link.TagValues,
		scenario:  link.Scenario,
	}
	if c.scenario != nil && c.scenario.ID != "" {
		c.id = c.scenario.ID
	}
	c.rt = rt.Refresh(c.id, c.callDepth)
	c.log = c.rt.Logger

	parent := link.Parent
	switch {
	case parent != nil && link.ReuseParentContext:
		c.ownership = Shared
		c.store = parent.store
	case parent != nil:
		c.ownership = Copied
		c.store = &store{
			vars:       parent.store.vars.Copy(),
			validators: parent.store.validators,
			config:     parent.store.config.Clone(),
		}
	default:
		c.ownership = Fresh
		set := config.New()
		set.SetClientClass(link.ClientClass)
		c.store = &store{
			vars:       env.New(),
			validators: c.rt.validators(),
			config:     set,
		}
	}

	if err := c.provision(); err != nil {
		return nil, err
	}

	if parent == nil && link.EvalBootstrapConfig {
		if err := c.bootstrap(); err != nil {
			c.Close()
			return nil, err
		}
	}

	vars := c.store.vars
	if link.CallArg != nil {
		// with a shared store the argument clobbers the parent's variables
		vars.PutAll(link.CallArg)
		vars.Put(constants.VarArg, link.CallArg)
		vars.Put(constants.VarLoop, link.LoopIndex)
	} else if parent != nil {
		vars.Put(constants.VarArg, value.Null)
		vars.Put(constants.VarLoop, constants.NoLoopIndex)
	}

	c.log.Debug("context initialized", "ownership", c.ownership.String(), "vars", vars.Keys())
	return c, nil
}

// provision builds a client from the current set and swaps it into the
// store. A replaced client is closed when it was provisioned by us.
func (c *Context) provision() error {
	st := c.store
	client, err := c.rt.provisioner().Provision(st.config, httpc.Options{
		OnRequest: st.setPrevRequest,
		Logger:    c.log,
	})
	if err != nil {
		return err
	}
	old, oldOwned := st.client, st.owned
	st.client, st.owned = client, httpc.Owned(st.config)
	if old != nil && oldOwned && old != client {
		old.Close()
	}
	return nil
}

// reconfigure applies the current set to the existing client.
func (c *Context) reconfigure() error {
	if c.store.client == nil {
		return c.provision()
	}
	return c.store.client.Configure(c.store.config)
}

// Close releases the client unless the store is shared with a parent. It is
// safe to call more than once.
func (c *Context) Close() {
	if c == nil || c.closed {
		return
	}
	c.closed = true
	if c.ownership == Shared {
		return
	}
	if c.store.client != nil && c.store.owned {
		c.store.client.Close()
	}
	c.store.client = nil
}

func (c *Context) ID() string { return c.id }

func (c *Context) CallDepth() int { return c.callDepth }

func (c *Context) Tags() []string { return c.tags }

func (c *Context) TagValues() map[string][]string { return c.tagValues }

func (c *Context) Ownership() Ownership { return c.ownership }

func (c *Context) Runtime() *Runtime { return c.rt }

func (c *Context) Logger() *common.Logger { return c.log }

func (c *Context) Vars() *env.Vars { return c.store.vars }

func (c *Context) Validators() map[string]validator.Validator { return c.store.validators }

// Config returns the live configuration set.
func (c *Context) Config() *config.Set { return c.store.config }

func (c *Context) Client() httpc.Client { return c.store.client }

// PrevRequest returns the last request sent through the client.
func (c *Context) PrevRequest() *httpc.SentRequest { return c.store.prevRequest }

func (c *Context) SetPrevRequest(r *httpc.SentRequest) { c.store.prevRequest = r }

func (c *Context) Scenario() *ScenarioInfo { return c.scenario }

// SetScenarioError records err on the scenario metadata.
func (c *Context) SetScenarioError(err error) {
	if c.scenario == nil || err == nil {
		return
	}
	c.scenario.ErrorMessage = err.Error()
}

func (c *Context) IsLogPrettyRequest() bool { return c.store.config.LogPrettyRequest }

func (c *Context) IsLogPrettyResponse() bool { return c.store.config.LogPrettyResponse }

func (c *Context) IsPrintEnabled() bool { return c.store.config.PrintEnabled }

// UpdateConfigCookies merges response cookies into the configured cookies.
func (c *Context) UpdateConfigCookies(cookies map[string]*http.Cookie) {
	if cookies == nil {
		return
	}
	set := c.store.config
	merged := set.Cookies.AsMap()
	if merged == nil {
		merged = make(map[string]any, len(cookies))
	}
	for name, ck := range cookies {
		merged[name] = ck
	}
	set.Cookies = value.New(merged)
}
