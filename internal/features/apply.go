package features

import (
	"context"
	"errors"
	"fmt"

	"github.com/pierregondois/lisa/internal/params"
	"github.com/pierregondois/lisa/pkg/logging"
)

// Apply activates a configuration's selected features.
//
// For each selected feature, in selection order, the configuration's values
// for the feature's parameters are published to the per-parameter global
// stores and the Enable hook runs with those settings. When a feature fails
// to enable, the features already enabled by this call are disabled again in
// reverse order and the error is returned; the caller's activation flag must
// stay down.
func (r *Registry) Apply(ctx context.Context, cfg string, selected []string, values map[*params.Param][]params.Value) error {
	resolved := make([]*Feature, 0, len(selected))
	for _, name := range selected {
		f, ok := r.Lookup(name)
		if !ok {
			return fmt.Errorf("unknown feature %q selected by configuration %s", name, cfg)
		}
		resolved = append(resolved, f)
	}

	// Selection itself is published so configuration-independent consumers
	// can see which features are live.
	r.selection.Global().Clear()
	for _, name := range selected {
		r.selection.Global().Append(name)
	}

	var enabled []*Feature
	for _, f := range resolved {
		set := make(params.Settings, len(f.Params))
		for _, p := range f.Params {
			vs := values[p]
			p.Global().Replace(vs)
			if len(vs) > 0 {
				set[p.Name] = vs
			}
		}

		if f.Enable != nil {
			if err := f.Enable(ctx, set); err != nil {
				r.rollback(ctx, cfg, enabled)
				return fmt.Errorf("enabling feature %s: %w", f.Name, err)
			}
		}
		enabled = append(enabled, f)
		logging.Debug("Features", "Enabled %s for configuration %s", f.Name, cfg)
	}

	logging.Info("Features", "Applied configuration %s (%d features)", cfg, len(resolved))
	return nil
}

// Teardown disables a configuration's selected features in reverse selection
// order. Disable errors are collected and reported upward, but every feature
// is still visited; the caller flips its activation flag regardless.
func (r *Registry) Teardown(ctx context.Context, cfg string, selected []string) error {
	var errs []error
	for i := len(selected) - 1; i >= 0; i-- {
		f, ok := r.Lookup(selected[i])
		if !ok {
			errs = append(errs, fmt.Errorf("unknown feature %q selected by configuration %s", selected[i], cfg))
			continue
		}
		if f.Disable != nil {
			if err := f.Disable(ctx); err != nil {
				errs = append(errs, fmt.Errorf("disabling feature %s: %w", f.Name, err))
				continue
			}
		}
		logging.Debug("Features", "Disabled %s for configuration %s", f.Name, cfg)
	}

	r.selection.Global().Clear()

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	logging.Info("Features", "Tore down configuration %s", cfg)
	return nil
}

// rollback disables the features already enabled by a failed Apply, in
// reverse order. Disable errors here are logged, not returned; the Apply
// error is the one the caller needs.
func (r *Registry) rollback(ctx context.Context, cfg string, enabled []*Feature) {
	for i := len(enabled) - 1; i >= 0; i-- {
		f := enabled[i]
		if f.Disable == nil {
			continue
		}
		if err := f.Disable(ctx); err != nil {
			logging.Error("Features", err, "Rollback of %s failed for configuration %s", f.Name, cfg)
		}
	}
	r.selection.Global().Clear()
}
