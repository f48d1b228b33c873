package scenario

import (
	"maps"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/loykin/apiscope/internal/common"
	"github.com/loykin/apiscope/internal/constants"
	"github.com/loykin/apiscope/internal/httpc"
	"github.com/loykin/apiscope/internal/script"
	"github.com/loykin/apiscope/internal/validator"
	"github.com/loykin/apiscope/pkg/config"
	"github.com/loykin/apiscope/pkg/value"
)

// Evaluator resolves expressions against a variable scope.
type Evaluator interface {
	Evaluate(expr string, vars script.Scope) (value.Value, error)
}

// Provisioner builds clients from configuration sets.
type Provisioner interface {
	Provision(set *config.Set, opts httpc.Options) (httpc.Client, error)
}

// Runtime carries the collaborators shared by every context of a run.
type Runtime struct {
	Logger      *common.Logger
	Evaluator   Evaluator
	Provisioner Provisioner
	// Validators is the template copied into every fresh context.
	Validators map[string]validator.Validator

	// ConfigPath overrides the bootstrap script location. When empty the
	// APISCOPE_CONFIG environment variable is consulted.
	ConfigPath string
	// BaseDir anchors classpath: reads.
	BaseDir string

	v *viper.Viper
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

func WithLogger(l *common.Logger) RuntimeOption { return func(r *Runtime) { r.Logger = l } }

func WithEvaluator(e Evaluator) RuntimeOption { return func(r *Runtime) { r.Evaluator = e } }

func WithProvisioner(p Provisioner) RuntimeOption { return func(r *Runtime) { r.Provisioner = p } }

func WithValidators(m map[string]validator.Validator) RuntimeOption {
	return func(r *Runtime) { r.Validators = m }
}

// WithConfigPath sets an explicit bootstrap file path.
func WithConfigPath(path string) RuntimeOption {
	return func(r *Runtime) { r.ConfigPath = strings.TrimSpace(path) }
}

func WithBaseDir(dir string) RuntimeOption { return func(r *Runtime) { r.BaseDir = dir } }

// WithViper resolves the bootstrap override through v instead of a private
// instance bound to the environment.
func WithViper(v *viper.Viper) RuntimeOption { return func(r *Runtime) { r.v = v } }

// NewRuntime returns a runtime with default collaborators.
func NewRuntime(opts ...RuntimeOption) *Runtime {
	r := &Runtime{}
	for _, opt := range opts {
		opt(r)
	}
	if r.Logger == nil {
		r.Logger = common.GetLogger()
	}
	if r.Evaluator == nil {
		r.Evaluator = script.New(r.BaseDir)
	}
	if r.Provisioner == nil {
		r.Provisioner = httpc.NewProvisioner()
	}
	if r.Validators == nil {
		r.Validators = validator.Defaults()
	}
	if r.v == nil {
		r.v = newEnvViper()
	}
	return r
}

func newEnvViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(constants.EnvPrefix)
	_ = v.BindEnv(constants.BootstrapEnvKey)
	return v
}

var defaultProvisioner = sync.OnceValue(httpc.NewProvisioner)

// Refresh returns a copy of the runtime whose logger is bound to one
// context.
func (r *Runtime) Refresh(id string, callDepth int) *Runtime {
	out := *r
	out.Logger = r.logger().WithComponent("scenario").WithContext(id, callDepth)
	return &out
}

func (r *Runtime) logger() *common.Logger {
	if r.Logger == nil {
		return common.GetLogger()
	}
	return r.Logger
}

func (r *Runtime) evaluator() Evaluator {
	if r.Evaluator == nil {
		return script.New(r.BaseDir)
	}
	return r.Evaluator
}

func (r *Runtime) provisioner() Provisioner {
	if r.Provisioner == nil {
		return defaultProvisioner()
	}
	return r.Provisioner
}

func (r *Runtime) validators() map[string]validator.Validator {
	if r.Validators == nil {
		return validator.Defaults()
	}
	return maps.Clone(r.Validators)
}

// bootstrapOverride returns the explicit bootstrap file path, or "" when
// the default lookup applies.
func (r *Runtime) bootstrapOverride() string {
	if r.ConfigPath != "" {
		return r.ConfigPath
	}
	v := r.v
	if v == nil {
		v = newEnvViper()
	}
	return strings.TrimSpace(v.GetString(constants.BootstrapEnvKey))
}

// bootstrapScript returns the expression that loads the bootstrap
// configuration.
func (r *Runtime) bootstrapScript() string {
	path := r.bootstrapOverride()
	if path == "" {
		return constants.DefaultBootstrapScript
	}
	return script.ReadExpr(constants.FilePrefix + path)
}

// fileReader is implemented by evaluators that can load a file without
// going through expression syntax.
type fileReader interface {
	Read(path string, vars script.Scope) (value.Value, error)
}

// loadBootstrap evaluates the bootstrap configuration. Override paths are
// read directly when the evaluator supports it, so quotes in the path
// cannot change how it is parsed.
func (r *Runtime) loadBootstrap(vars script.Scope) (value.Value, error) {
	ev := r.evaluator()
	if path := r.bootstrapOverride(); path != "" {
		if fr, ok := ev.(fileReader); ok {
			return fr.Read(constants.FilePrefix+path, vars)
		}
	}
	return ev.Evaluate(r.bootstrapScript(), vars)
}
