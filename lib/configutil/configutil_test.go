package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	BaseUrl  string `json:"base_url"`
	Interval int    `json:"interval"`
}

func write(t *testing.T, path, contents string) {
	err := os.WriteFile(path, []byte(contents), 0600)
	require.NoError(t, err)
}

func TestReadConfigMergesLocalOverrides(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "collector.json5"),
		`{ base_url: "https://example.com", interval: 1000 }`)
	write(t, filepath.Join(dir, "collector.local.json5"),
		`{ interval: 5 }`)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "collector.json5"))
	require.NoError(t, err)
	require.Equal(t, "https://example.com", cfg.BaseUrl)
	require.Equal(t, 5, cfg.Interval)
}

func TestReadConfigLocalOnly(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "collector.local.json5"),
		`{ base_url: "http://localhost:8080" }`)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "collector.json5"))
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080", cfg.BaseUrl)
}

func TestReadConfigMissing(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadConfig[testConfig](filepath.Join(dir, "collector.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadConfigMalformed(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "collector.json5"), `{ base_url: `)

	_, err := ReadConfig[testConfig](filepath.Join(dir, "collector.json5"))
	require.Error(t, err)
	require.False(t, os.IsNotExist(err))
}

func TestReadRecursively(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "collector.json5"), `{ interval: 42 }`)

	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(nested))
	defer os.Chdir(cwd)

	cfg, err := ReadRecursively[testConfig]("collector.json5")
	require.NoError(t, err)
	require.Equal(t, 42, cfg.Interval)
}
