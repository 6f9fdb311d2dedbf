package configfs

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"

	"github.com/pierregondois/lisa/internal/api"
)

// apiAdapter exposes the filesystem through the api control plane contract.
// It goes through the public afero surface only, so every operation observes
// the same locking and error behavior as any other consumer.
type apiAdapter struct {
	fsys *FS
}

// RegisterAPIHandler publishes the filesystem as the control plane handler.
func RegisterAPIHandler(fsys *FS) {
	api.RegisterControlPlane(&apiAdapter{fsys: fsys})
}

func (a *apiAdapter) ListConfigs() ([]api.ConfigInfo, error) {
	root, err := a.configInfo("/", rootConfigName)
	if err != nil {
		return nil, err
	}
	out := []api.ConfigInfo{root}

	infos, err := afero.ReadDir(a.fsys, "/"+configsDirName)
	if err != nil {
		return nil, err
	}
	for _, fi := range infos {
		info, err := a.configInfo("/"+configsDirName+"/"+fi.Name(), fi.Name())
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, nil
}

func (a *apiAdapter) configInfo(dir, name string) (api.ConfigInfo, error) {
	activeRaw, err := afero.ReadFile(a.fsys, dir+"/"+activateFile)
	if err != nil {
		return api.ConfigInfo{}, err
	}
	selRaw, err := afero.ReadFile(a.fsys, dir+"/"+selectFeaturesFile)
	if err != nil {
		return api.ConfigInfo{}, err
	}
	return api.ConfigInfo{
		Name:     name,
		Active:   strings.TrimSpace(string(activeRaw)) == "1",
		Selected: splitLines(string(selRaw)),
	}, nil
}

func (a *apiAdapter) CreateConfig(name string) error {
	if err := validConfigName(name); err != nil {
		return err
	}
	return a.fsys.Mkdir("/"+configsDirName+"/"+name, 0o755)
}

func (a *apiAdapter) DeleteConfig(name string) error {
	if err := validConfigName(name); err != nil {
		return err
	}
	return a.fsys.RemoveAll("/" + configsDirName + "/" + name)
}

func (a *apiAdapter) ReadFile(path string) (string, error) {
	data, err := afero.ReadFile(a.fsys, path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", api.NewNotFoundError("file", path)
		}
		return "", err
	}
	return string(data), nil
}

func (a *apiAdapter) WriteFile(path string, data string, appendMode bool) error {
	flag := os.O_WRONLY
	if appendMode {
		flag |= os.O_APPEND
	}
	f, err := a.fsys.OpenFile(path, flag, 0o644)
	if err != nil {
		if os.IsNotExist(err) {
			return api.NewNotFoundError("file", path)
		}
		return err
	}
	_, werr := f.Write([]byte(data))
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	return werr
}

func (a *apiAdapter) Activate(name string, active bool) error {
	dir := "/"
	if name != "" && name != rootConfigName {
		if err := validConfigName(name); err != nil {
			return err
		}
		dir = "/" + configsDirName + "/" + name + "/"
	}
	value := "0"
	if active {
		value = "1"
	}
	err := a.WriteFile(dir+activateFile, value, false)
	if api.IsNotFound(err) {
		return api.NewNotFoundError("configuration", name)
	}
	return err
}

func validConfigName(name string) error {
	if name == "" || strings.ContainsAny(name, "/\x00") || name == "." || name == ".." {
		return fmt.Errorf("%w: invalid configuration name %q", ErrInvalidInput, name)
	}
	return nil
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
