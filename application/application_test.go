package application

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/databrief-go/pkg/util/merr"
)

func TestResolveConfigPath(t *testing.T) {
	t.Setenv(configPathEnv, "")

	path, explicit, err := ResolveConfigPath(nil)
	require.NoError(t, err)
	assert.Equal(t, defaultConfigPath, path)
	assert.False(t, explicit)

	t.Setenv(configPathEnv, "/etc/brief.yaml")
	path, explicit, err = ResolveConfigPath([]string{"encode"})
	require.NoError(t, err)
	assert.Equal(t, "/etc/brief.yaml", path)
	assert.True(t, explicit)

	path, _, err = ResolveConfigPath([]string{"--config", "a.yaml"})
	require.NoError(t, err)
	assert.Equal(t, "a.yaml", path)

	path, _, err = ResolveConfigPath([]string{"--config=b.yaml"})
	require.NoError(t, err)
	assert.Equal(t, "b.yaml", path)

	_, _, err = ResolveConfigPath([]string{"--config"})
	assert.ErrorIs(t, err, merr.ErrParameterMissing)
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
codec:
  maxDepth: 5
log:
  level: warn
  stdout: false
metrics:
  enabled: false
logging:
  codec:
    level: error
`), 0o600))

	app := New()
	require.NoError(t, app.Init(path, true))
	assert.Equal(t, path, app.Config().ConfigFileUsed())
	assert.Equal(t, 5, app.Params().Codec.MaxDepth)
	assert.Nil(t, app.Registerer())

	c := app.Codec()
	assert.Equal(t, 5, c.Config().MaxDepth)
	assert.False(t, c.Config().EnableMetrics)
	assert.NotNil(t, app.Logger("codec"))
	assert.NotNil(t, app.Logger("unknown"))
}

func TestInitMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	app := New()
	require.NoError(t, app.Init(missing, false))
	assert.Equal(t, 64, app.Params().Codec.MaxDepth)
	assert.NotNil(t, app.Registerer())

	err := New().Init(missing, true)
	assert.ErrorIs(t, err, merr.ErrIoFailed)
}
