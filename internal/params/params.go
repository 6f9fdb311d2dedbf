package params

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is an opaque parsed parameter value. The concrete type is determined
// by the Ops that produced it.
type Value interface{}

// Ops is the value-type contract of a parameter. Implementations convert
// between textual tokens and Values.
type Ops interface {
	// Parse converts one trimmed, non-empty token into a Value.
	Parse(token string) (Value, error)

	// Format renders a Value back to its textual form.
	Format(v Value) string
}

// Param describes a typed, named tunable belonging to a feature.
//
// Params are immutable after catalog seal; the configuration filesystem only
// reads them. The one mutable piece is the global store, which is written by
// activation and drained on filesystem teardown, both under the registry lock.
type Param struct {
	// Name is the parameter identifier, unique within its feature.
	Name string

	// Feature is the name of the owning feature. Empty for pseudo-parameters
	// such as the feature selection list.
	Feature string

	// Ops is the value-type contract used by the write and read protocols.
	Ops Ops

	// Writable controls whether the generated parameter file accepts writes.
	// Parameters without it produce read-only files.
	Writable bool

	global *Store
}

// New creates a parameter with an empty global store.
func New(feature, name string, ops Ops, writable bool) *Param {
	return &Param{
		Name:     name,
		Feature:  feature,
		Ops:      ops,
		Writable: writable,
		global:   NewStore(),
	}
}

// Global returns the parameter's configuration-independent store.
func (p *Param) Global() *Store {
	return p.global
}

// Settings maps parameter names to the values a configuration holds for them.
// It is the shape handed to feature Enable hooks on activation.
type Settings map[string][]Value

// StringOps parses tokens as plain strings.
type StringOps struct{}

func (StringOps) Parse(token string) (Value, error) {
	return token, nil
}

func (StringOps) Format(v Value) string {
	return fmt.Sprintf("%v", v)
}

// UintOps parses tokens as unsigned integers. Base is auto-detected, so
// "0x10" and "16" are both accepted.
type UintOps struct{}

func (UintOps) Parse(token string) (Value, error) {
	n, err := strconv.ParseUint(token, 0, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid unsigned integer %q", token)
	}
	return n, nil
}

func (UintOps) Format(v Value) string {
	n, ok := v.(uint64)
	if !ok {
		return fmt.Sprintf("%v", v)
	}
	return strconv.FormatUint(n, 10)
}

// BoolOps parses tokens as booleans, accepting the same spellings as the
// activation file.
type BoolOps struct{}

func (BoolOps) Parse(token string) (Value, error) {
	b, err := ParseBool(token)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (BoolOps) Format(v Value) string {
	b, ok := v.(bool)
	if !ok {
		return fmt.Sprintf("%v", v)
	}
	if b {
		return "1"
	}
	return "0"
}

// ParseBool converts a textual boolean to its value. Accepted spellings are
// "0"/"1", "true"/"false", "t"/"f", "y"/"n", "yes"/"no", case-insensitive.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "t", "y", "yes", "on":
		return true, nil
	case "0", "false", "f", "n", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", s)
	}
}

// Kind names the value kind of an Ops implementation, the inverse of
// OpsForKind. Implementations outside this package report "string".
func Kind(ops Ops) string {
	switch ops.(type) {
	case UintOps:
		return "uint"
	case BoolOps:
		return "bool"
	default:
		return "string"
	}
}

// OpsForKind returns the Ops implementation for a value kind name used in
// feature definition files. Supported kinds: "string", "uint", "bool".
func OpsForKind(kind string) (Ops, error) {
	switch kind {
	case "string", "":
		return StringOps{}, nil
	case "uint":
		return UintOps{}, nil
	case "bool":
		return BoolOps{}, nil
	default:
		return nil, fmt.Errorf("unknown parameter kind %q", kind)
	}
}
