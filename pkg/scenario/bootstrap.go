package scenario

import (
	"errors"

	"github.com/loykin/apiscope/internal/constants"
	"github.com/loykin/apiscope/internal/script"
)

// bootstrap evaluates the bootstrap configuration against c. A missing
// bootstrap file is skipped with a warning; every other failure is fatal.
// When the script yields a map, its configure entry is applied key by key
// in document order and the remaining entries become variables.
func (c *Context) bootstrap() error {
	source := c.rt.bootstrapScript()
	result, err := c.rt.loadBootstrap(c.store.vars)
	if err != nil {
		var nf *script.FileNotFoundError
		if errors.As(err, &nf) {
			c.log.Warn("skipping bootstrap configuration", "source", source, "error", err)
			return nil
		}
		return &BootstrapError{Step: StepEvaluate, Source: source, Err: err}
	}
	if !result.IsMapLike() {
		c.log.Warn("bootstrap configuration returned no map", "source", source, "type", result.Type().String())
		return nil
	}

	for _, name := range result.Keys() {
		if name == constants.BootstrapConfigureKey {
			continue
		}
		c.store.vars.Put(name, result.Field(name))
	}

	statements := result.Field(constants.BootstrapConfigureKey)
	if statements.IsNull() {
		return nil
	}
	if !statements.IsMapLike() {
		return &BootstrapError{
			Step:   StepConfigure,
			Source: source,
			Err:    invalid("%q must be a map, got %s", constants.BootstrapConfigureKey, statements.Type()),
		}
	}
	for _, key := range statements.Keys() {
		if err := c.Configure(key, statements.Field(key)); err != nil {
			return &BootstrapError{Step: StepConfigure, Source: source, Err: err}
		}
	}
	c.log.Debug("bootstrap configuration applied", "source", source, "vars", c.store.vars.Len())
	return nil
}
