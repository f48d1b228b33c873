package scenario

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownKey is returned for configure keys outside the vocabulary.
	ErrUnknownKey = errors.New("unexpected configure key")
	// ErrInvalidValue is returned when a configure value has the wrong shape.
	ErrInvalidValue = errors.New("invalid configure value")
)

// ConfigureError identifies the configure key a failure belongs to.
type ConfigureError struct {
	Key Key
	Err error
}

func (e *ConfigureError) Error() string {
	return fmt.Sprintf("configure '%s': %v", e.Key, e.Err)
}

func (e *ConfigureError) Unwrap() error { return e.Err }

// BootstrapStep names the phase of bootstrap evaluation that failed.
type BootstrapStep string

const (
	StepEvaluate  BootstrapStep = "evaluate"
	StepConfigure BootstrapStep = "configure"
)

// BootstrapError wraps a fatal bootstrap configuration failure.
type BootstrapError struct {
	Step   BootstrapStep
	Source string
	Err    error
}

func (e *BootstrapError) Error() string {
	return fmt.Sprintf("bootstrap %s of %s failed: %v", e.Step, e.Source, e.Err)
}

func (e *BootstrapError) Unwrap() error { return e.Err }

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidValue}, args...)...)
}
