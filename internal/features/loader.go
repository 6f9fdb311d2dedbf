package features

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"sigs.k8s.io/yaml"

	"github.com/pierregondois/lisa/internal/params"
	"github.com/pierregondois/lisa/pkg/logging"
)

// Definition is the on-disk shape of a user-defined feature.
//
// Definition files are YAML documents unmarshalled through sigs.k8s.io/yaml,
// so the field tags are JSON tags:
//
//	name: gpu_power
//	params:
//	  - name: sample_hz
//	    kind: uint
//	    writable: true
//	    default: "{{ mul 5 10 }}"
type Definition struct {
	Name   string     `json:"name"`
	Hidden bool       `json:"hidden,omitempty"`
	Params []ParamDef `json:"params,omitempty"`
}

// ParamDef declares one tunable of a user-defined feature.
type ParamDef struct {
	Name     string `json:"name"`
	Kind     string `json:"kind,omitempty"`
	Writable bool   `json:"writable,omitempty"`

	// Default is an optional template rendered with the sprig function map.
	// The rendered text is parsed with the parameter's value contract and
	// published to the parameter's global store.
	Default string `json:"default,omitempty"`
}

// LoadDefinitions registers every feature defined in dir with the catalog.
// A missing directory is not an error; a malformed definition file is.
func LoadDefinitions(r *Registry, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Debug("Features", "No feature definition directory at %s", dir)
			return nil
		}
		return fmt.Errorf("reading feature definitions from %s: %w", dir, err)
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() || !isYAMLFile(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := loadDefinitionFile(r, path); err != nil {
			return fmt.Errorf("loading feature definition %s: %w", path, err)
		}
		loaded++
	}

	if loaded > 0 {
		logging.Info("Features", "Loaded %d feature definition(s) from %s", loaded, dir)
	}
	return nil
}

func loadDefinitionFile(r *Registry, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return fmt.Errorf("malformed YAML: %w", err)
	}
	if def.Name == "" {
		return fmt.Errorf("definition has no name")
	}

	f, err := buildFeature(def)
	if err != nil {
		return err
	}
	if err := r.Register(f); err != nil {
		return err
	}

	logging.Debug("Features", "Registered user-defined feature %s (%d params)", def.Name, len(def.Params))
	return nil
}

func buildFeature(def Definition) (*Feature, error) {
	enable, disable := logHooks(def.Name)
	f := &Feature{
		Name:    def.Name,
		Hidden:  def.Hidden,
		Enable:  enable,
		Disable: disable,
	}

	for _, pd := range def.Params {
		if pd.Name == "" {
			return nil, fmt.Errorf("feature %s declares a parameter with no name", def.Name)
		}
		ops, err := params.OpsForKind(pd.Kind)
		if err != nil {
			return nil, fmt.Errorf("feature %s parameter %s: %w", def.Name, pd.Name, err)
		}
		p := params.New(def.Name, pd.Name, ops, pd.Writable)

		if pd.Default != "" {
			v, err := renderDefault(def.Name, pd, ops)
			if err != nil {
				return nil, err
			}
			p.Global().Append(v)
		}
		f.Params = append(f.Params, p)
	}
	return f, nil
}

// renderDefault runs the default expression through text/template with the
// sprig function map, then parses the result with the parameter's own value
// contract so a bad default fails at load time, not at activation.
func renderDefault(feature string, pd ParamDef, ops params.Ops) (params.Value, error) {
	tmpl, err := template.New(pd.Name).Funcs(sprig.FuncMap()).Parse(pd.Default)
	if err != nil {
		return nil, fmt.Errorf("feature %s parameter %s: invalid default template: %w", feature, pd.Name, err)
	}

	var buf bytes.Buffer
	ctx := map[string]string{"Feature": feature, "Param": pd.Name}
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return nil, fmt.Errorf("feature %s parameter %s: rendering default: %w", feature, pd.Name, err)
	}

	v, err := ops.Parse(strings.TrimSpace(buf.String()))
	if err != nil {
		return nil, fmt.Errorf("feature %s parameter %s: default does not parse: %w", feature, pd.Name, err)
	}
	return v, nil
}

// isYAMLFile checks if a file path is a YAML file.
func isYAMLFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
