package pack_test

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArmindoFlores/MineScript2/internal/config"
	"github.com/ArmindoFlores/MineScript2/internal/pack"
	"github.com/ArmindoFlores/MineScript2/pkg/compiler"
)

func compileOrFail(t *testing.T, src string) *compiler.Result {
	t.Helper()
	result, diags, err := compiler.Compile(src, "testpack", compiler.Options{})
	require.NoError(t, err)
	require.Empty(t, diags)
	require.NotNil(t, result)
	return result
}

func projectFor(name string) *config.Project {
	return &config.Project{Name: name, Description: config.DefaultDescription, Output: config.DefaultOutputDir}
}

func TestWriteZipContainsExpectedEntries(t *testing.T) {
	result := compileOrFail(t, `void main() {} void load() { main(); }`)

	var buf bytes.Buffer
	summary, err := pack.WriteZip(&buf, result.Output, projectFor("testpack"), "build-id-1")
	require.NoError(t, err)
	assert.Equal(t, "build-id-1", summary.BuildID)
	assert.Equal(t, 2, summary.FunctionCount)

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range zr.File {
		names[f.Name] = true
	}
	assert.True(t, names["testpack/pack.mcmeta"])
	assert.True(t, names["testpack/data/minecraft/tags/functions/load.json"])
	assert.True(t, names["testpack/data/minecraft/tags/functions/tick.json"])
	assert.True(t, names["testpack/data/testpack/functions/_setup.mcfunction"])
	assert.True(t, names["testpack/data/testpack/functions/_vars.mcfunction"])
	assert.True(t, names["testpack/data/testpack/functions/main.mcfunction"])
	assert.True(t, names["testpack/data/testpack/functions/load.mcfunction"])
}

func TestWriteZipLoadFunctionPrefixedWithSetupAndVars(t *testing.T) {
	result := compileOrFail(t, `void load() {}`)

	var buf bytes.Buffer
	_, err := pack.WriteZip(&buf, result.Output, projectFor("testpack"), "build-id-2")
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	content := readZipFile(t, zr, "testpack/data/testpack/functions/load.mcfunction")
	assert.Contains(t, content, "function testpack:_setup")
	assert.Contains(t, content, "function testpack:_vars")
}

func TestWriteZipSynthesizesLoadWhenAbsent(t *testing.T) {
	result := compileOrFail(t, `void main() {}`)

	var buf bytes.Buffer
	_, err := pack.WriteZip(&buf, result.Output, projectFor("testpack"), "build-id-3")
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	content := readZipFile(t, zr, "testpack/data/testpack/functions/load.mcfunction")
	assert.Contains(t, content, "function testpack:_setup")
	assert.Contains(t, content, "function testpack:_vars")
}

func TestWriteZipDeclaresReturnSlotAndBreakFlagObjectives(t *testing.T) {
	result := compileOrFail(t, `int answer() { return 42; }`)

	var buf bytes.Buffer
	_, err := pack.WriteZip(&buf, result.Output, projectFor("testpack"), "build-id-4")
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	setup := readZipFile(t, zr, "testpack/data/testpack/functions/_setup.mcfunction")
	assert.Contains(t, setup, "scoreboard objectives add _f_answer")
	assert.Contains(t, setup, "scoreboard objectives add _break_answer")
}

func TestWriteDirWritesPackMcmeta(t *testing.T) {
	result := compileOrFail(t, `void main() {}`)
	dir := t.TempDir()

	_, err := pack.WriteDir(dir, result.Output, projectFor("testpack"), "build-id-5")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "testpack", "pack.mcmeta"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "pack_format")
}

func readZipFile(t *testing.T, zr *zip.Reader, name string) string {
	t.Helper()
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(data)
	}
	t.Fatalf("zip entry %s not found", name)
	return ""
}
