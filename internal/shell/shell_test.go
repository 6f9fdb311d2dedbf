package shell

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pierregondois/lisa/internal/configfs"
	"github.com/pierregondois/lisa/internal/features"
	"github.com/pierregondois/lisa/internal/params"
)

func newTestShell(t *testing.T) (*Shell, *bytes.Buffer) {
	t.Helper()

	r := features.NewRegistry()
	require.NoError(t, r.Register(&features.Feature{
		Name: "thermal",
		Params: []*params.Param{
			params.New("thermal", "zones", params.StringOps{}, true),
		},
	}))
	r.Seal()

	fsys, err := configfs.New(r, r)
	require.NoError(t, err)
	t.Cleanup(func() { fsys.Close() })

	features.RegisterAPIHandler(r)
	configfs.RegisterAPIHandler(fsys)

	s := New(fsys)
	out := &bytes.Buffer{}
	s.out = out
	return s, out
}

func TestResolvePaths(t *testing.T) {
	s, _ := newTestShell(t)

	assert.Equal(t, "/", s.resolve(""))
	assert.Equal(t, "/configs/x", s.resolve("configs/x"))
	assert.Equal(t, "/activate", s.resolve("/activate"))

	s.cwd = "/configs/x"
	assert.Equal(t, "/configs/x/activate", s.resolve("activate"))
	assert.Equal(t, "/configs", s.resolve(".."))
}

func TestWriteAndCat(t *testing.T) {
	s, out := newTestShell(t)

	s.execute("write /thermal/zones cpu, gpu")
	assert.Empty(t, out.String(), "write should be silent on success")

	s.execute("cat /thermal/zones")
	assert.Equal(t, "cpu\ngpu\n", out.String())

	out.Reset()
	s.execute("append /thermal/zones board")
	s.execute("cat /thermal/zones")
	assert.Equal(t, "cpu\ngpu\nboard\n", out.String())
}

func TestMkdirRmdirShorthand(t *testing.T) {
	s, out := newTestShell(t)

	// A bare name lands under configs/ regardless of the working dir.
	s.execute("mkdir probe")
	assert.Empty(t, out.String())

	s.execute("cd /configs/probe")
	assert.Equal(t, "/configs/probe", s.cwd)

	s.execute("cd /")
	s.execute("rmdir probe")
	assert.Empty(t, out.String())

	out.Reset()
	s.execute("cd /configs/probe")
	assert.Contains(t, out.String(), "cd:")
}

func TestLsListsDirectory(t *testing.T) {
	s, out := newTestShell(t)

	s.execute("ls /")
	listing := out.String()
	assert.Contains(t, listing, "select_features")
	assert.Contains(t, listing, "available_features")
	assert.Contains(t, listing, "configs")
}

func TestCatErrorsOnMissingFile(t *testing.T) {
	s, out := newTestShell(t)
	s.execute("cat /nope")
	assert.Contains(t, out.String(), "cat:")
}

func TestFeaturesTable(t *testing.T) {
	s, out := newTestShell(t)
	s.execute("features")
	assert.Contains(t, out.String(), "thermal")
	assert.Contains(t, out.String(), "zones")
}

func TestConfigsTable(t *testing.T) {
	s, out := newTestShell(t)
	s.execute("mkdir probe")
	s.execute("configs")
	assert.Contains(t, out.String(), "root")
	assert.Contains(t, out.String(), "probe")
}

func TestUnknownCommand(t *testing.T) {
	s, out := newTestShell(t)
	s.execute("frobnicate")
	assert.Contains(t, out.String(), "unknown command")
}

func TestConfigDirResolution(t *testing.T) {
	s, _ := newTestShell(t)

	assert.Equal(t, "", s.configDir(nil))
	assert.Equal(t, "/configs/x", s.configDir([]string{"x"}))

	s.cwd = "/configs/x/thermal"
	assert.Equal(t, "/configs/x", s.configDir(nil))
}

func TestExitReturnsQuit(t *testing.T) {
	s, _ := newTestShell(t)
	assert.True(t, s.execute("exit"))
	assert.True(t, s.execute("quit"))
	assert.False(t, s.execute("pwd"))
}

func TestCompletePaths(t *testing.T) {
	s, _ := newTestShell(t)
	s.execute("mkdir probe")

	got := s.completePaths("cd configs/pr")
	require.Len(t, got, 1)
	assert.True(t, strings.HasSuffix(got[0], "probe/"), got[0])
}
