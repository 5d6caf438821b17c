// Package registry holds the immutable catalogue of protocols, classes and
// variables an experiment runs over. A Registry is built once and passed
// explicitly to every component that needs it.
package registry

import (
	"fmt"
	"strings"

	"gocer/domain/core"
)

// Protocol names a train/test split definition
type Protocol string

// Class names a target category
type Class string

// Variable names one measured feature
type Variable string

// Split selects the training or the test partition of a protocol
type Split string

const (
	SplitTrain Split = "train"
	SplitTest  Split = "test"
)

func (p Protocol) String() string { return string(p) }
func (c Class) String() string    { return string(c) }
func (v Variable) String() string { return string(v) }
func (s Split) String() string    { return string(s) }

// Registry is the ordered, duplicate-free set of protocols, classes and variables.
// Accessors return copies; a Registry never changes after New.
type Registry struct {
	protocols []Protocol
	classes   []Class
	variables []Variable
}

// New validates and builds a Registry. Declaration order is kept: it fixes class
// labels and the combination order of reports.
func New(protocols []Protocol, classes []Class, variables []Variable) (*Registry, error) {
	if err := checkNames("protocol", protocolNames(protocols)); err != nil {
		return nil, err
	}
	if err := checkNames("class", classNames(classes)); err != nil {
		return nil, err
	}
	if err := checkNames("variable", Names(variables)); err != nil {
		return nil, err
	}

	return &Registry{
		protocols: append([]Protocol(nil), protocols...),
		classes:   append([]Class(nil), classes...),
		variables: append([]Variable(nil), variables...),
	}, nil
}

// Default returns the Iris registry the report is written against.
func Default() *Registry {
	r, err := New(
		[]Protocol{"proto1", "proto2"},
		[]Class{"setosa", "versicolor", "virginica"},
		[]Variable{"sepal_length", "sepal_width", "petal_length", "petal_width"},
	)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) Protocols() []Protocol { return append([]Protocol(nil), r.protocols...) }
func (r *Registry) Classes() []Class       { return append([]Class(nil), r.classes...) }
func (r *Registry) Variables() []Variable  { return append([]Variable(nil), r.variables...) }

// HasProtocol reports whether p is a known protocol
func (r *Registry) HasProtocol(p Protocol) bool {
	for _, known := range r.protocols {
		if known == p {
			return true
		}
	}
	return false
}

// HasVariable reports whether v is a known variable
func (r *Registry) HasVariable(v Variable) bool {
	for _, known := range r.variables {
		if known == v {
			return true
		}
	}
	return false
}

// ValidateSubset checks that vars is a non-empty, duplicate-free selection of
// registry variables.
func (r *Registry) ValidateSubset(vars []Variable) error {
	if len(vars) == 0 {
		return core.NewInvalidSelectionError("variables", "subset must not be empty")
	}
	seen := make(map[Variable]bool, len(vars))
	for _, v := range vars {
		if !r.HasVariable(v) {
			return core.NewInvalidSelectionError("variables", fmt.Sprintf("unknown variable %q", v))
		}
		if seen[v] {
			return core.NewInvalidSelectionError("variables", fmt.Sprintf("duplicate variable %q", v))
		}
		seen[v] = true
	}
	return nil
}

// ParseProtocols resolves protocol names against the registry. An empty input
// selects every protocol in declaration order.
func (r *Registry) ParseProtocols(names []string) ([]Protocol, error) {
	if len(names) == 0 {
		return r.Protocols(), nil
	}

	out := make([]Protocol, 0, len(names))
	for _, name := range names {
		p := Protocol(strings.TrimSpace(name))
		if p == "" {
			return nil, core.NewInvalidSelectionError("protocol", "empty protocol name")
		}
		if !r.HasProtocol(p) {
			return nil, core.NewInvalidSelectionError("protocol",
				fmt.Sprintf("unknown protocol %q (choose from %s)", p, strings.Join(protocolNames(r.protocols), ", ")))
		}
		out = append(out, p)
	}
	return out, nil
}

// Fingerprint identifies the registry contents, order included.
func (r *Registry) Fingerprint() core.Hash {
	return core.ComputeListHash(protocolNames(r.protocols), classNames(r.classes), Names(r.variables))
}

// Names converts variables to plain strings
func Names(vars []Variable) []string {
	out := make([]string, len(vars))
	for i, v := range vars {
		out[i] = string(v)
	}
	return out
}

func classNames(classes []Class) []string {
	out := make([]string, len(classes))
	for i, c := range classes {
		out[i] = string(c)
	}
	return out
}

func protocolNames(protocols []Protocol) []string {
	out := make([]string, len(protocols))
	for i, p := range protocols {
		out[i] = string(p)
	}
	return out
}

func checkNames(field string, names []string) error {
	if len(names) == 0 {
		return core.NewInvalidSelectionError(field, "at least one entry is required")
	}
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			return core.NewInvalidSelectionError(field, "empty name")
		}
		if seen[n] {
			return core.NewInvalidSelectionError(field, fmt.Sprintf("duplicate name %q", n))
		}
		seen[n] = true
	}
	return nil
}
