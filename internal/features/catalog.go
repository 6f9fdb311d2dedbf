package features

import (
	"context"

	"github.com/pierregondois/lisa/internal/params"
	"github.com/pierregondois/lisa/pkg/logging"
)

// RegisterBuiltins adds the built-in observation features to the catalog.
// Called once during bootstrap, before definition files are loaded.
func RegisterBuiltins(r *Registry) error {
	builtins := []*Feature{
		schedStats(),
		ftrace(),
		thermal(),
		cpufreq(),
		traceClock(),
	}
	for _, f := range builtins {
		if err := r.Register(f); err != nil {
			return err
		}
	}
	return nil
}

// logHooks returns Enable/Disable hooks that only record the transition.
// Built-in features on a development host have no kernel to poke; the hooks
// still exercise the full activation path.
func logHooks(name string) (func(context.Context, params.Settings) error, func(context.Context) error) {
	enable := func(ctx context.Context, set params.Settings) error {
		logging.Debug("Features", "%s enabled with %d parameter(s)", name, len(set))
		return nil
	}
	disable := func(ctx context.Context) error {
		logging.Debug("Features", "%s disabled", name)
		return nil
	}
	return enable, disable
}

func schedStats() *Feature {
	enable, disable := logHooks("sched_stats")
	return &Feature{
		Name: "sched_stats",
		Params: []*params.Param{
			params.New("sched_stats", "sampling_window_ms", params.UintOps{}, true),
			params.New("sched_stats", "tasks", params.StringOps{}, true),
		},
		Enable:  enable,
		Disable: disable,
	}
}

func ftrace() *Feature {
	enable, disable := logHooks("ftrace")
	return &Feature{
		Name: "ftrace",
		Params: []*params.Param{
			params.New("ftrace", "events", params.StringOps{}, true),
			params.New("ftrace", "buffer_size_kb", params.UintOps{}, true),
			params.New("ftrace", "tracer", params.StringOps{}, true),
		},
		Enable:  enable,
		Disable: disable,
	}
}

func thermal() *Feature {
	enable, disable := logHooks("thermal")
	return &Feature{
		Name: "thermal",
		Params: []*params.Param{
			params.New("thermal", "zones", params.StringOps{}, true),
			params.New("thermal", "poll_ms", params.UintOps{}, true),
		},
		Enable:  enable,
		Disable: disable,
	}
}

func cpufreq() *Feature {
	enable, disable := logHooks("cpufreq")
	return &Feature{
		Name:    "cpufreq",
		Enable:  enable,
		Disable: disable,
	}
}

// traceClock is internal plumbing shared by the tracing features. Hidden
// from listings, still selectable. Its clock parameter is read-only.
func traceClock() *Feature {
	enable, disable := logHooks("__trace_clock")
	return &Feature{
		Name:   "__trace_clock",
		Hidden: true,
		Params: []*params.Param{
			params.New("__trace_clock", "clock", params.StringOps{}, false),
		},
		Enable:  enable,
		Disable: disable,
	}
}
