// Package script is the minimal expression evaluator used to resolve
// bootstrap scripts and configure values.
//
// Supported expressions:
//
//	read('file:<path>')       file relative to the working directory
//	read('classpath:<path>')  file relative to the evaluator's base dir
//	name, name.path           variable lookup (gjson path into the variable)
//	anything else             YAML/JSON literal ("'text'", 5000, true, {a: 1})
//
// YAML and JSON files evaluate to maps whose key order follows the document.
// Strings of the form #(expr) inside documents are replaced by the value of
// expr.
package script

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/loykin/apiscope/internal/constants"
	"github.com/loykin/apiscope/internal/util"
	"github.com/loykin/apiscope/pkg/value"
)

// Scope resolves variable references. *env.Vars implements it.
type Scope interface {
	Lookup(expr string) (value.Value, bool)
}

// FileNotFoundError reports a read() of a missing file.
type FileNotFoundError struct {
	Path string
	Err  error
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("file not found: %s", e.Path)
}

func (e *FileNotFoundError) Unwrap() error { return e.Err }

// ErrUndefined is returned for references to unbound variables.
var ErrUndefined = errors.New("undefined variable")

var (
	readCall = regexp.MustCompile(`^` + constants.ReadFunction + `\(\s*(?:'([^']*)'|"([^"]*)")\s*\)$`)
	varRef   = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*(?:\.[A-Za-z0-9_$#*?\-]+)*$`)
	keywords = map[string]struct{}{"true": {}, "false": {}, "null": {}}
)

// Evaluator evaluates expressions against a scope.
type Evaluator struct {
	// BaseDir anchors classpath: and prefix-less reads.
	BaseDir string
}

// New returns an evaluator rooted at baseDir.
func New(baseDir string) *Evaluator {
	return &Evaluator{BaseDir: util.TrimWithDefault(baseDir, ".")}
}

// Evaluate resolves expr. vars may be nil.
func (e *Evaluator) Evaluate(expr string, vars Scope) (value.Value, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return value.Null, nil
	}
	if m := readCall.FindStringSubmatch(expr); m != nil {
		return e.Read(m[1]+m[2], vars)
	}
	if varRef.MatchString(expr) {
		if _, kw := keywords[strings.ToLower(expr)]; !kw {
			if vars != nil {
				if v, ok := vars.Lookup(expr); ok {
					return v, nil
				}
			}
			return value.Null, fmt.Errorf("%w: %s", ErrUndefined, expr)
		}
	}
	return e.literal(expr, vars)
}

// ReadExpr returns the read() expression for path, choosing a quote the
// path does not contain. Paths holding both quote kinds have no expression
// form and must go through Read.
func ReadExpr(path string) string {
	if strings.Contains(path, "'") {
		return constants.ReadFunction + `("` + path + `")`
	}
	return constants.ReadFunction + "('" + path + "')"
}

// Read loads a file by prefixed path.
func (e *Evaluator) Read(path string, vars Scope) (value.Value, error) {
	resolved := e.resolve(path)
	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return value.Null, &FileNotFoundError{Path: resolved, Err: err}
		}
		return value.Null, fmt.Errorf("read %s: %w", resolved, err)
	}
	switch strings.ToLower(filepath.Ext(resolved)) {
	case ".yaml", ".yml", ".json":
		v, err := e.decode(data, vars)
		if err != nil {
			return value.Null, fmt.Errorf("parse %s: %w", resolved, err)
		}
		return v, nil
	}
	return value.New(string(data)), nil
}

func (e *Evaluator) resolve(path string) string {
	path = strings.TrimSpace(path)
	switch {
	case strings.HasPrefix(path, constants.FilePrefix):
		return filepath.Clean(strings.TrimPrefix(path, constants.FilePrefix))
	case strings.HasPrefix(path, constants.ClasspathPrefix):
		path = strings.TrimPrefix(path, constants.ClasspathPrefix)
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(e.BaseDir, path)
}

func (e *Evaluator) literal(expr string, vars Scope) (value.Value, error) {
	v, err := e.decode([]byte(expr), vars)
	if err != nil {
		return value.Null, fmt.Errorf("invalid expression %q: %w", expr, err)
	}
	return v, nil
}

func (e *Evaluator) decode(data []byte, vars Scope) (value.Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return value.Null, err
	}
	if doc.Kind == 0 {
		return value.Null, nil
	}
	out, err := e.convert(&doc, vars)
	if err != nil {
		return value.Null, err
	}
	return value.New(out), nil
}

// convert turns a YAML node into Go data. Mappings become ordered Values.
func (e *Evaluator) convert(n *yaml.Node, vars Scope) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return e.convert(n.Content[0], vars)
	case yaml.AliasNode:
		return e.convert(n.Alias, vars)
	case yaml.MappingNode:
		m := make(map[string]any, len(n.Content)/2)
		keys := make([]string, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i].Value
			v, err := e.convert(n.Content[i+1], vars)
			if err != nil {
				return nil, err
			}
			if _, dup := m[k]; !dup {
				keys = append(keys, k)
			}
			m[k] = v
		}
		return value.Ordered(m, keys), nil
	case yaml.SequenceNode:
		out := make([]any, len(n.Content))
		for i, c := range n.Content {
			v, err := e.convert(c, vars)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case yaml.ScalarNode:
		if n.Tag == "!!str" {
			if inner, ok := util.EmbeddedExpr(n.Value); ok {
				v, err := e.Evaluate(inner, vars)
				if err != nil {
					return nil, err
				}
				return v, nil
			}
		}
		var out any
		if err := n.Decode(&out); err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported yaml node kind %v", n.Kind)
}
