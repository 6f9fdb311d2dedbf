package configfs

import (
	"context"

	"github.com/google/uuid"

	"github.com/pierregondois/lisa/internal/params"
	"github.com/pierregondois/lisa/pkg/logging"
)

// setActivationLocked runs an activation transition. Setting the current
// state again is idempotent but still delegates to the feature registry, so
// repeated identical writes behave as observable no-op successes.
//
// Inactive to Active: the apply capability receives the selection and every
// parameter entry; on failure the flag stays down and the error surfaces.
// Active to Inactive: the flag flips even when teardown reports an error,
// since a configuration stuck in Active could never be edited again. The
// error still surfaces.
//
// Caller holds the registry lock. The delegate runs under it too; hooks are
// required to be synchronous and bounded.
func (fsys *FS) setActivationLocked(cfg *Config, desired bool) error {
	ctx := context.Background()
	selected := cfg.selectedFeatures()

	if desired {
		values := make(map[*params.Param][]params.Value, len(cfg.entries))
		for p, e := range cfg.entries {
			values[p] = e.store.Values()
		}
		if err := fsys.activator.Apply(ctx, cfg.name, selected, values); err != nil {
			return err
		}
		cfg.active = true
		cfg.activationID = uuid.NewString()
		logging.Info("ConfigFS", "Configuration %s activated (id %s)", cfg.name, cfg.activationID)
		return nil
	}

	err := fsys.activator.Teardown(ctx, cfg.name, selected)
	cfg.active = false
	cfg.activationID = ""
	if err != nil {
		logging.Warn("ConfigFS", "Configuration %s deactivated with teardown errors: %v", cfg.name, err)
		return err
	}
	logging.Info("ConfigFS", "Configuration %s deactivated", cfg.name)
	return nil
}

// selectedFeatures snapshots the selection entry as feature names, in
// selection order. Caller holds the registry lock.
func (c *Config) selectedFeatures() []string {
	if c.selection == nil {
		return nil
	}
	out := make([]string, 0, c.selection.store.Len())
	for i := 0; i < c.selection.store.Len(); i++ {
		if s, ok := c.selection.store.At(i).(string); ok {
			out = append(out, s)
		}
	}
	return out
}
