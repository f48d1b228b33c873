// Package env holds the variable bindings of an execution unit.
package env

import (
	"sort"
	"strings"
	"sync"

	"github.com/loykin/apiscope/pkg/value"
)

// Vars maps variable names to values. Keys are unique; iteration order is
// not significant. The zero value is not usable; call New.
type Vars struct {
	mu   sync.RWMutex
	vars map[string]value.Value
}

// New returns an empty variable map.
func New() *Vars {
	return &Vars{vars: map[string]value.Value{}}
}

// FromMap builds a Vars from plain Go values.
func FromMap(m map[string]any) *Vars {
	out := New()
	for k, v := range m {
		out.vars[k] = value.New(v)
	}
	return out
}

// Copy performs a deep copy of every binding.
func (e *Vars) Copy() *Vars {
	if e == nil {
		return New()
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := &Vars{vars: make(map[string]value.Value, len(e.vars))}
	for k, v := range e.vars {
		out.vars[k] = value.Copy(v)
	}
	return out
}

// Put binds name to v, replacing any previous binding.
func (e *Vars) Put(name string, v any) {
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vars[name] = value.New(v)
}

// PutAll binds every entry of m.
func (e *Vars) PutAll(m map[string]any) {
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for k, v := range m {
		e.vars[k] = value.New(v)
	}
}

// Get returns the binding for name.
func (e *Vars) Get(name string) (value.Value, bool) {
	if e == nil {
		return value.Null, false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.vars[name]
	return v, ok
}

// GetString returns the string form of a binding, or "" when absent.
func (e *Vars) GetString(name string) string {
	v, _ := e.Get(name)
	return v.AsString()
}

// Lookup resolves "name" or "name.path" where path is a gjson path into the
// bound value.
func (e *Vars) Lookup(expr string) (value.Value, bool) {
	name, path, _ := strings.Cut(strings.TrimSpace(expr), ".")
	v, ok := e.Get(name)
	if !ok {
		return value.Null, false
	}
	if path == "" {
		return v, true
	}
	return v.Get(path), true
}

// Has reports whether name is bound.
func (e *Vars) Has(name string) bool {
	_, ok := e.Get(name)
	return ok
}

// Remove deletes the binding for name.
func (e *Vars) Remove(name string) {
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.vars, name)
}

// Len returns the number of bindings.
func (e *Vars) Len() int {
	if e == nil {
		return 0
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.vars)
}

// Keys returns the bound names, sorted.
func (e *Vars) Keys() []string {
	if e == nil {
		return nil
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	keys := make([]string, 0, len(e.vars))
	for k := range e.vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns the bindings as plain Go values. The result is detached
// from the store.
func (e *Vars) Snapshot() map[string]any {
	out := map[string]any{}
	if e == nil {
		return out
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	for k, v := range e.vars {
		out[k] = value.Copy(v).Raw()
	}
	return out
}
