// Package api decouples the front ends (shell, MCP server, host bridge) from
// the subsystems that serve them. Subsystems register handler implementations
// at bootstrap; consumers fetch them through the Get functions and never
// import the implementing packages directly.
package api

import "sync"

// FeatureCatalogHandler exposes the sealed feature catalog.
type FeatureCatalogHandler interface {
	// ListFeatures returns every feature in registration order, hidden
	// ones included; callers decide what to show.
	ListFeatures() []FeatureInfo
	// GetFeature returns one feature by name.
	GetFeature(name string) (FeatureInfo, error)
}

// ControlPlaneHandler exposes configuration lifecycle and file access over
// the virtual filesystem.
type ControlPlaneHandler interface {
	// ListConfigs returns the root configuration followed by the named
	// ones, in directory order.
	ListConfigs() ([]ConfigInfo, error)
	// CreateConfig instantiates a named configuration.
	CreateConfig(name string) error
	// DeleteConfig destroys a named configuration, tearing it down first
	// if active. Deleting a missing configuration is not an error.
	DeleteConfig(name string) error
	// ReadFile returns a virtual file's rendered content. Path is
	// absolute within the virtual tree.
	ReadFile(path string) (string, error)
	// WriteFile writes data to a virtual value file, replacing or
	// appending to the backing store.
	WriteFile(path string, data string, appendMode bool) error
	// Activate flips a configuration's activation gate. Empty name
	// targets the root configuration.
	Activate(name string, active bool) error
}

var (
	mu             sync.RWMutex
	featureCatalog FeatureCatalogHandler
	controlPlane   ControlPlaneHandler
)

// RegisterFeatureCatalog installs the catalog handler. Called once at
// bootstrap, before any consumer runs.
func RegisterFeatureCatalog(h FeatureCatalogHandler) {
	mu.Lock()
	defer mu.Unlock()
	featureCatalog = h
}

// GetFeatureCatalog returns the registered catalog handler, or nil when
// bootstrap has not run.
func GetFeatureCatalog() FeatureCatalogHandler {
	mu.RLock()
	defer mu.RUnlock()
	return featureCatalog
}

// RegisterControlPlane installs the control plane handler.
func RegisterControlPlane(h ControlPlaneHandler) {
	mu.Lock()
	defer mu.Unlock()
	controlPlane = h
}

// GetControlPlane returns the registered control plane handler, or nil when
// bootstrap has not run.
func GetControlPlane() ControlPlaneHandler {
	mu.RLock()
	defer mu.RUnlock()
	return controlPlane
}
