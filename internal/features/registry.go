package features

import (
	"context"
	"fmt"

	"github.com/pierregondois/lisa/internal/params"
)

// Feature is a registrable capability: a name, a visibility flag and an
// optional ordered set of parameter descriptors.
//
// The Enable and Disable hooks are the feature's runtime effect. They are
// invoked by Apply and Teardown; either hook may be nil for features that
// only carry parameter values.
type Feature struct {
	// Name identifies the feature, unique within the catalog.
	Name string

	// Hidden excludes the feature from the available_features listing.
	// Hidden features are still selectable.
	Hidden bool

	// Params is the ordered set of tunables the feature declares. Features
	// with parameters get a per-feature subdirectory in every configuration.
	Params []*params.Param

	// Enable applies the feature with the given settings.
	Enable func(ctx context.Context, set params.Settings) error

	// Disable reverts a previous Enable.
	Disable func(ctx context.Context) error
}

// Param returns the feature's parameter with the given name.
func (f *Feature) Param(name string) (*params.Param, bool) {
	for _, p := range f.Params {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Registry is the process-wide feature catalog.
//
// Registration happens during bootstrap only; Seal freezes the catalog before
// the first configuration exists. After sealing the Registry is immutable and
// safe for concurrent reads without locking.
type Registry struct {
	features  []*Feature
	byName    map[string]*Feature
	sealed    bool
	selection *params.Param
}

// NewRegistry creates an empty, unsealed catalog. The feature-selection
// pseudo-parameter is created here so its tokens validate against this
// catalog.
func NewRegistry() *Registry {
	r := &Registry{
		byName: make(map[string]*Feature),
	}
	r.selection = params.New("", "select_features", selectionOps{registry: r}, true)
	return r
}

// Register adds a feature to the catalog. It fails once the catalog is
// sealed or when the name is empty or already taken.
func (r *Registry) Register(f *Feature) error {
	if r.sealed {
		return fmt.Errorf("feature catalog is sealed")
	}
	if f == nil || f.Name == "" {
		return fmt.Errorf("feature has empty name")
	}
	if _, exists := r.byName[f.Name]; exists {
		return fmt.Errorf("feature %s already registered", f.Name)
	}
	r.features = append(r.features, f)
	r.byName[f.Name] = f
	return nil
}

// Seal freezes the catalog. Must be called before the first configuration
// filesystem is constructed.
func (r *Registry) Seal() {
	r.sealed = true
}

// Sealed reports whether the catalog is frozen.
func (r *Registry) Sealed() bool {
	return r.sealed
}

// Features returns the catalog in registration order.
func (r *Registry) Features() []*Feature {
	return r.features
}

// Lookup finds a feature by name.
func (r *Registry) Lookup(name string) (*Feature, bool) {
	f, ok := r.byName[name]
	return f, ok
}

// Visible returns the non-hidden features in registration order.
func (r *Registry) Visible() []*Feature {
	var out []*Feature
	for _, f := range r.features {
		if !f.Hidden {
			out = append(out, f)
		}
	}
	return out
}

// SelectionParam returns the feature-selection pseudo-parameter backing the
// select_features file. Its tokens parse to feature names validated against
// this catalog.
func (r *Registry) SelectionParam() *params.Param {
	return r.selection
}

// DrainGlobals clears every global parameter store, including the selection
// pseudo-parameter's. Called by filesystem teardown after the last
// configuration is gone.
func (r *Registry) DrainGlobals() {
	for _, f := range r.features {
		for _, p := range f.Params {
			p.Global().Clear()
		}
	}
	r.selection.Global().Clear()
}

// selectionOps is the value-type contract of the feature-selection
// pseudo-parameter. Tokens must name a registered feature; hidden features
// are accepted.
type selectionOps struct {
	registry *Registry
}

func (o selectionOps) Parse(token string) (params.Value, error) {
	if _, ok := o.registry.Lookup(token); !ok {
		return nil, fmt.Errorf("unknown feature %q", token)
	}
	return token, nil
}

func (o selectionOps) Format(v params.Value) string {
	return fmt.Sprintf("%v", v)
}
