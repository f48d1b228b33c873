// Package apiscope exposes the execution-context layer of the API test
// engine: scoped variables, configuration and HTTP clients for nested test
// units.
package apiscope

import (
	"github.com/loykin/apiscope/internal/common"
	"github.com/loykin/apiscope/internal/httpc"
	"github.com/loykin/apiscope/internal/script"
	"github.com/loykin/apiscope/internal/validator"
	"github.com/loykin/apiscope/pkg/config"
	"github.com/loykin/apiscope/pkg/scenario"
	"github.com/loykin/apiscope/pkg/value"
)

// Re-export commonly used types for public API

// Context is the execution context of one test unit.
type Context = scenario.Context

// CallLink describes how a unit relates to its caller.
type CallLink = scenario.CallLink

// Runtime carries the collaborators shared by every context of a run.
type Runtime = scenario.Runtime

type RuntimeOption = scenario.RuntimeOption

type LinkOption = scenario.LinkOption

// Ownership records how a context came by its state.
type Ownership = scenario.Ownership

const (
	Fresh  = scenario.Fresh
	Copied = scenario.Copied
	Shared = scenario.Shared
)

// ConfigSet is the configuration a context's client is built from.
type ConfigSet = config.Set

// Value is a dynamically typed script value.
type Value = value.Value

// Client is a transport client driven by a ConfigSet.
type Client = httpc.Client

// ClientFactory constructs an unconfigured client for a registered class.
type ClientFactory = httpc.Factory

type ClientOptions = httpc.Options

// SentRequest describes the last request a context sent.
type SentRequest = httpc.SentRequest

// Provisioner builds clients from configuration sets.
type Provisioner = httpc.Provisioner

// ProvisionError reports a failed client construction.
type ProvisionError = httpc.ProvisionError

type ConfigureError = scenario.ConfigureError

type BootstrapError = scenario.BootstrapError

// FileNotFoundError is returned by read() for missing files.
type FileNotFoundError = script.FileNotFoundError

type Validator = validator.Validator

type Logger = common.Logger

var (
	ErrUnknownKey         = scenario.ErrUnknownKey
	ErrInvalidValue       = scenario.ErrInvalidValue
	ErrUnknownClientClass = httpc.ErrUnknownClientClass
)

// NewRuntime returns a runtime with default collaborators.
func NewRuntime(opts ...RuntimeOption) *Runtime { return scenario.NewRuntime(opts...) }

// NewCallLink returns a link for a root unit unless options say otherwise.
func NewCallLink(opts ...LinkOption) CallLink { return scenario.NewCallLink(opts...) }

// NewContext builds the context of a unit from its call link.
func NewContext(rt *Runtime, link CallLink) (*Context, error) { return scenario.NewContext(rt, link) }

// NewProvisioner returns a provisioner with the built-in client classes.
func NewProvisioner() *Provisioner { return httpc.NewProvisioner() }

// NewConfigSet returns a configuration set holding the defaults.
func NewConfigSet() *ConfigSet { return config.New() }

// NewValue wraps a Go value.
func NewValue(v any) Value { return value.New(v) }

// ConfigureKeys lists the configure vocabulary.
func ConfigureKeys() []scenario.KeyInfo { return scenario.Keys() }

// DefaultValidators returns a fresh copy of the built-in validators.
func DefaultValidators() map[string]Validator { return validator.Defaults() }

// Logger constructors and global logger access

func NewLogger(level common.LogLevel) *Logger { return common.NewLogger(level) }

func SetDefaultLogger(l *Logger) { common.SetDefaultLogger(l) }

// EnableMasking toggles global masking of sensitive values.
func EnableMasking(enabled bool) { common.EnableMasking(enabled) }

const (
	LogLevelError = common.LogLevelError
	LogLevelWarn  = common.LogLevelWarn
	LogLevelInfo  = common.LogLevelInfo
	LogLevelDebug = common.LogLevelDebug
)
