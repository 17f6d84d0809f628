package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCfg struct {
	Name    string        `mapstructure:"name"`
	Timeout time.Duration `mapstructure:"timeout"`
	HTTP    struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"http"`
}

func defaults(v *viper.Viper) {
	v.SetDefault("name", "demo")
	v.SetDefault("timeout", 10*time.Second)
	v.SetDefault("http.addr", ":8080")
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	var cfg testCfg
	v, err := Load("cfg-test", &cfg, WithPaths(t.TempDir()), WithDefaults(defaults))
	require.NoError(t, err)

	assert.Empty(t, v.ConfigFileUsed())
	assert.Equal(t, "demo", cfg.Name)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	yaml := "name: from-file\ntimeout: 500ms\nhttp:\n  addr: \":9090\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cfg-test.yaml"), []byte(yaml), 0o644))

	t.Setenv("CFG_TEST_HTTP_ADDR", ":7070")

	var cfg testCfg
	_, err := Load("cfg-test", &cfg, WithPaths(dir), WithDefaults(defaults))
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.Name)
	assert.Equal(t, 500*time.Millisecond, cfg.Timeout)
	assert.Equal(t, ":7070", cfg.HTTP.Addr, "env 应该覆盖文件")
}

func TestLoad_BadFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cfg-test.yaml"), []byte("name: [unclosed"), 0o644))

	var cfg testCfg
	_, err := Load("cfg-test", &cfg, WithPaths(dir))
	assert.Error(t, err)
}

func TestLoadAndWatch_Reload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg-test.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: v1\n"), 0o644))

	reloaded := make(chan struct{}, 4)
	var cfg testCfg
	_, err := LoadAndWatch("cfg-test", &cfg, WithPaths(dir), WithDefaults(defaults),
		OnReload(func() { reloaded <- struct{}{} }))
	require.NoError(t, err)
	assert.Equal(t, "v1", cfg.Name)

	require.NoError(t, os.WriteFile(path, []byte("name: v2\n"), 0o644))

	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("config not reloaded")
	}
}

func TestEnvPrefix(t *testing.T) {
	assert.Equal(t, "ORACLE_PROBE", envPrefix("oracle-probe"))
}
