package api

// ParamInfo describes one tunable parameter of a feature.
type ParamInfo struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Writable bool   `json:"writable"`
}

// FeatureInfo describes one selectable feature of the catalog.
type FeatureInfo struct {
	Name   string      `json:"name"`
	Hidden bool        `json:"hidden,omitempty"`
	Params []ParamInfo `json:"params,omitempty"`
}

// ConfigInfo describes one live configuration of the control plane.
type ConfigInfo struct {
	Name     string   `json:"name"`
	Active   bool     `json:"active"`
	Selected []string `json:"selected,omitempty"`
}
