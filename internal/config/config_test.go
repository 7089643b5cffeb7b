package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArmindoFlores/MineScript2/internal/config"
)

func TestParseProjectAppliesDefaults(t *testing.T) {
	p, err := config.ParseProject([]byte("name: mypack\n"), "minescript.yaml")
	require.NoError(t, err)
	assert.Equal(t, "mypack", p.Name)
	assert.Equal(t, config.DefaultDescription, p.Description)
	assert.Equal(t, config.DefaultOutputDir, p.Output)
}

func TestParseProjectKeepsExplicitValues(t *testing.T) {
	src := "name: mypack\ndescription: A cool pack\noutput: build-out\n"
	p, err := config.ParseProject([]byte(src), "minescript.yaml")
	require.NoError(t, err)
	assert.Equal(t, "A cool pack", p.Description)
	assert.Equal(t, "build-out", p.Output)
}

func TestParseProjectRequiresName(t *testing.T) {
	_, err := config.ParseProject([]byte("description: no name here\n"), "minescript.yaml")
	assert.Error(t, err)
}

func TestParseProjectRejectsInvalidYAML(t *testing.T) {
	_, err := config.ParseProject([]byte("name: [unterminated\n"), "minescript.yaml")
	assert.Error(t, err)
}

func TestLoadProjectReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "minescript.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: fromfile\n"), 0o644))

	p, err := config.LoadProject(path)
	require.NoError(t, err)
	assert.Equal(t, "fromfile", p.Name)
}

func TestFindProjectWalksUpToParent(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "minescript.yaml"), []byte("name: root\n"), 0o644))

	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	found, err := config.FindProject(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "minescript.yaml"), found)
}

func TestFindProjectReturnsEmptyWhenAbsent(t *testing.T) {
	dir := t.TempDir()
	found, err := config.FindProject(dir)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestFindProjectPrefersYmlWhenYamlMissing(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "minescript.yml"), []byte("name: altext\n"), 0o644))

	found, err := config.FindProject(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "minescript.yml"), found)
}
