package app

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/wardengo/internal/container"
	"github.com/vk/wardengo/internal/handler"
	"github.com/vk/wardengo/internal/localgateway"
	"github.com/vk/wardengo/internal/route"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestNew_WiresCoreModules(t *testing.T) {
	t.Parallel()

	testApp, _, _ := SetupAppTest(t, Options{ModulesRoot: t.TempDir()})

	names := testApp.Services().Names()
	assert.Contains(t, names, "moderation.store")
	assert.Contains(t, names, "utility.clock")
	assert.Contains(t, names, "utility.feedback")

	for kind, n := range testApp.Routes().Counts() {
		assert.Zero(t, n, "no routes before any module load, kind %s", kind)
	}
}

func TestNew_FlagOverridesConfigFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fileRoot := filepath.Join(dir, "from-file")
	flagRoot := filepath.Join(dir, "from-flag")
	writeFile(t, filepath.Join(fileRoot, "alpha", "module.hcl"), `description = "From the config file."`+"\n")
	writeFile(t, filepath.Join(flagRoot, "beta", "module.hcl"), `description = "From the flag."`+"\n")

	cfgPath := filepath.Join(dir, "warden.yaml")
	writeFile(t, cfgPath, "modules:\n  root: "+fileRoot+"\n")

	testApp, _, _ := SetupAppTest(t, Options{ConfigPath: cfgPath, ModulesRoot: flagRoot})

	loaded, err := testApp.Loader().LoadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"beta"}, loaded)
}

func TestNew_ConfigFileAlone(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fileRoot := filepath.Join(dir, "from-file")
	writeFile(t, filepath.Join(fileRoot, "alpha", "module.hcl"), `description = "From the config file."`+"\n")

	cfgPath := filepath.Join(dir, "warden.yaml")
	writeFile(t, cfgPath, "modules:\n  root: "+fileRoot+"\n")

	testApp, _, _ := SetupAppTest(t, Options{ConfigPath: cfgPath})

	loaded, err := testApp.Loader().LoadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha"}, loaded)
}

func TestNew_LogFormatFromConfig(t *testing.T) {
	t.Parallel()

	cfgPath := filepath.Join(t.TempDir(), "warden.yaml")
	writeFile(t, cfgPath, "logging:\n  format: json\n")

	_, _, logs := SetupAppTest(t, Options{ConfigPath: cfgPath, ModulesRoot: t.TempDir()})

	assert.Contains(t, logs.String(), `"msg":"Logger configured successfully."`)
}

type brokenServiceModule struct{}

func (brokenServiceModule) Name() string { return "broken" }

func (brokenServiceModule) Register(*handler.Registry) {}
func (brokenServiceModule) RegisterServices(c *container.Container) error {
	c.Register("broken.svc", func(*container.Container) (any, error) {
		return nil, os.ErrPermission
	})
	return nil
}

func TestNew_FailsWhenAServiceCannotBeBuilt(t *testing.T) {
	t.Parallel()

	gw := localgateway.New()
	_, err := New(io.Discard, Options{ModulesRoot: t.TempDir()}, gw, gw, brokenServiceModule{})
	require.ErrorContains(t, err, "container validation failed")
}

func TestNew_BadConfigFile(t *testing.T) {
	t.Parallel()

	cfgPath := filepath.Join(t.TempDir(), "warden.yaml")
	writeFile(t, cfgPath, "logging:\n  level: shouting\n")

	gw := localgateway.New()
	_, err := New(io.Discard, Options{ConfigPath: cfgPath}, gw, gw)
	require.ErrorContains(t, err, "logging.level")
}

// The modules shipped in this repository must always load against the
// compiled-in handlers: every handler reference, middleware name and
// inject list in their route files resolves, or this fails.
func TestShippedModulesLoad(t *testing.T) {
	t.Parallel()

	testApp, _, logs := SetupAppTest(t, Options{ModulesRoot: filepath.Join("..", "..", "modules")})

	loaded, err := testApp.Loader().LoadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"moderation", "utility", "welcome"}, loaded)
	assert.NotContains(t, logs.String(), "Skipping", "no shipped route file may be skipped")

	counts := testApp.Routes().Counts()
	assert.Equal(t, 7, counts[route.KindCommand])
	assert.Equal(t, 2, counts[route.KindComponent])
	assert.Equal(t, 3, counts[route.KindEvent])
	assert.Equal(t, 2, counts[route.KindTask])

	settings := testApp.Loader().Settings("moderation")
	require.NotNil(t, settings)
	assert.Contains(t, settings, "log_channel")
	assert.Contains(t, settings, "max_warnings")
}
