package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pierregondois/lisa/internal/api"
)

func testOptions(t *testing.T, yaml string) Options {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	return Options{ConfigPath: path, Quiet: true}
}

func TestBootstrapWiresSubsystems(t *testing.T) {
	a, err := Bootstrap(testOptions(t, "logLevel: error\n"))
	require.NoError(t, err)
	defer a.Close()

	// Builtins are registered and sealed.
	assert.NotEmpty(t, a.Registry.Features())
	assert.True(t, a.Registry.Sealed())

	// Both api handlers are in place.
	require.NotNil(t, api.GetFeatureCatalog())
	require.NotNil(t, api.GetControlPlane())

	// The control plane serves the bootstrapped filesystem.
	configs, err := api.GetControlPlane().ListConfigs()
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, "root", configs[0].Name)
}

func TestBootstrapLoadsFeatureDefinitions(t *testing.T) {
	dir := t.TempDir()
	featureDir := filepath.Join(dir, "features")
	require.NoError(t, os.Mkdir(featureDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(featureDir, "custom.yaml"), []byte(`
name: custom_probe
params:
  - name: depth
    kind: uint
`), 0o644))

	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(
		"logLevel: error\nfeatureDir: "+featureDir+"\n"), 0o644))

	a, err := Bootstrap(Options{ConfigPath: cfgPath, Quiet: true})
	require.NoError(t, err)
	defer a.Close()

	_, ok := a.Registry.Lookup("custom_probe")
	assert.True(t, ok, "definition file feature should be registered")
}

func TestBootstrapRejectsBrokenConfig(t *testing.T) {
	_, err := Bootstrap(testOptions(t, "logLevel: shouting\n"))
	assert.Error(t, err)
}
