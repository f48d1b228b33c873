package scenario

import (
	"github.com/google/uuid"

	"github.com/loykin/apiscope/internal/constants"
)

// ScenarioInfo is the reporting metadata of the scenario a context runs.
type ScenarioInfo struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Description  string `yaml:"description,omitempty"`
	FeatureURI   string `yaml:"featureUri,omitempty"`
	ErrorMessage string `yaml:"errorMessage,omitempty"`
}

// NewScenarioInfo returns scenario metadata with a generated ID.
func NewScenarioInfo(name string) *ScenarioInfo {
	return &ScenarioInfo{ID: uuid.NewString(), Name: name}
}

// CallLink describes how a new execution unit relates to its caller.
type CallLink struct {
	CallDepth int
	Parent    *Context
	// ReuseParentContext shares the parent's store instead of copying it.
	// It has no effect without a parent.
	ReuseParentContext  bool
	EvalBootstrapConfig bool
	CallArg             map[string]any
	// LoopIndex is -1 for calls that are not part of a loop.
	LoopIndex   int
	ClientClass string
	Tags        []string
	TagValues   map[string][]string
	Scenario    *ScenarioInfo
}

// LinkOption configures a CallLink.
type LinkOption func(*CallLink)

// NewCallLink returns a link for a root unit unless options say otherwise.
func NewCallLink(opts ...LinkOption) CallLink {
	l := CallLink{LoopIndex: constants.NoLoopIndex}
	for _, opt := range opts {
		opt(&l)
	}
	return l
}

// WithParent links the unit to parent. reuse selects the shared store.
func WithParent(parent *Context, reuse bool) LinkOption {
	return func(l *CallLink) {
		l.Parent = parent
		l.ReuseParentContext = reuse
		if parent != nil && l.CallDepth <= parent.CallDepth() {
			l.CallDepth = parent.CallDepth() + 1
		}
	}
}

// WithCallArg binds arg as the call argument of the loop iteration
// loopIndex (-1 outside loops).
func WithCallArg(arg map[string]any, loopIndex int) LinkOption {
	return func(l *CallLink) {
		l.CallArg = arg
		l.LoopIndex = loopIndex
	}
}

// WithBootstrap evaluates the bootstrap configuration for root units.
func WithBootstrap() LinkOption { return func(l *CallLink) { l.EvalBootstrapConfig = true } }

func WithClientClass(name string) LinkOption { return func(l *CallLink) { l.ClientClass = name } }

func WithTags(tags []string, values map[string][]string) LinkOption {
	return func(l *CallLink) {
		l.Tags = tags
		l.TagValues = values
	}
}

func WithScenario(info *ScenarioInfo) LinkOption { return func(l *CallLink) { l.Scenario = info } }

func WithCallDepth(n int) LinkOption {
	return func(l *CallLink) {
		if n >= 0 {
			l.CallDepth = n
		}
	}
}
