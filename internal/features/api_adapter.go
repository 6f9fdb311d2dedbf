package features

import (
	"github.com/pierregondois/lisa/internal/api"
	"github.com/pierregondois/lisa/internal/params"
)

// apiAdapter exposes a sealed registry through the api handler contract.
type apiAdapter struct {
	registry *Registry
}

// RegisterAPIHandler publishes the registry as the feature catalog handler.
// The registry must be sealed first.
func RegisterAPIHandler(r *Registry) {
	api.RegisterFeatureCatalog(&apiAdapter{registry: r})
}

func (a *apiAdapter) ListFeatures() []api.FeatureInfo {
	fs := a.registry.Features()
	out := make([]api.FeatureInfo, 0, len(fs))
	for _, f := range fs {
		out = append(out, featureInfo(f))
	}
	return out
}

func (a *apiAdapter) GetFeature(name string) (api.FeatureInfo, error) {
	f, ok := a.registry.Lookup(name)
	if !ok {
		return api.FeatureInfo{}, api.NewNotFoundError("feature", name)
	}
	return featureInfo(f), nil
}

func featureInfo(f *Feature) api.FeatureInfo {
	info := api.FeatureInfo{
		Name:   f.Name,
		Hidden: f.Hidden,
	}
	for _, p := range f.Params {
		info.Params = append(info.Params, api.ParamInfo{
			Name:     p.Name,
			Kind:     params.Kind(p.Ops),
			Writable: p.Writable,
		})
	}
	return info
}
