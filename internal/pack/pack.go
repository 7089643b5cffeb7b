// Package pack turns codegen.Output into the on-disk datapack layout
// Minecraft expects, transliterating original_source/minescript.py's
// create_structure/assemble_pack: pack.mcmeta, the vanilla load/tick
// function tags, one .mcfunction file per compiled function and synthetic
// loop, and the _setup/_vars split between user-declared and compiler
// temp scoreboard objectives.
package pack

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ArmindoFlores/MineScript2/internal/codegen"
	"github.com/ArmindoFlores/MineScript2/internal/config"
	"github.com/ArmindoFlores/MineScript2/internal/typesystem"
)

// Summary reports what a build produced, for the CLI's humanized output.
type Summary struct {
	BuildID       string
	CommandCount  int
	FunctionCount int
}

type file struct {
	path string // slash-separated, relative to the output directory
	data []byte
}

// build renders output's tables into the full file list for one datapack,
// without touching any filesystem.
func build(output *codegen.Output, proj *config.Project, buildID string) ([]file, Summary) {
	name := proj.Name
	root := name + "/"

	var files []file
	add := func(relPath, content string) {
		files = append(files, file{path: root + relPath, data: []byte(content)})
	}

	add("pack.mcmeta", fmt.Sprintf(
		"{\n  \"pack\": {\n    \"pack_format\": %d,\n    \"description\": %q\n  }\n}\n",
		config.DefaultPackFormat, fmt.Sprintf("%s (build %s)", proj.Description, buildID)))

	add("data/minecraft/tags/functions/load.json", fmt.Sprintf(
		"{\n    \"values\": [\n        \"%s:load\"\n    ]\n}", name))
	add("data/minecraft/tags/functions/tick.json", fmt.Sprintf(
		"{\n    \"values\": [\n        \"%s:tick\"\n    ]\n}", name))

	var setup, vars strings.Builder
	fmt.Fprintf(&setup, "# build %s\n", buildID)

	commands := 0
	addObjective := func(b *strings.Builder, objective string) {
		fmt.Fprintf(b, "scoreboard objectives add %s dummy \"%s\"\n", objective, objective)
		commands++
	}

	// User-declared and compiler-temp globals, one objective each — array
	// types are skipped (they live in storage, not the scoreboard) unless
	// the name is a compiler temp, matching the original's blanket
	// temp-objective declaration.
	for _, varName := range sortedKeys(output.GlobalTypes) {
		t := output.GlobalTypes[varName]
		dest := &setup
		if strings.HasPrefix(varName, config.TempVarPrefix) {
			dest = &vars
		}
		if !t.IsArray() || strings.HasPrefix(varName, config.TempVarPrefix) {
			addObjective(dest, varName)
		}
	}

	// Locals are mangled as "<name>+local" with no function qualifier, so
	// the same bare name across two functions shares one objective — only
	// the first occurrence (in function-declaration order) emits it.
	added := make(map[string]bool)
	for _, fnName := range output.FunctionOrder {
		for _, varName := range sortedKeys(output.LocalTypes[fnName]) {
			if added[varName] {
				continue
			}
			added[varName] = true
			t := output.LocalTypes[fnName][varName]
			dest := &setup
			if strings.HasPrefix(varName, config.TempVarPrefix) {
				dest = &vars
			}
			if !t.IsArray() || strings.HasPrefix(varName, config.TempVarPrefix) {
				addObjective(dest, varName+config.LocalSuffix)
			}
		}
	}

	add("data/"+name+"/functions/"+config.SetupFunction+".mcfunction", setup.String())
	add("data/"+name+"/functions/"+config.VarsFunction+".mcfunction", vars.String())

	for _, loopName := range output.LoopOrder {
		var b strings.Builder
		for _, cmd := range output.Loops[loopName] {
			b.WriteString(cmd)
			b.WriteByte('\n')
			commands++
		}
		add("data/"+name+"/functions/"+loopName+".mcfunction", b.String())
	}

	hasLoad := false
	for _, fnName := range output.FunctionOrder {
		info := output.Functions[fnName]
		var b strings.Builder
		if fnName == config.LoadFunction {
			hasLoad = true
			fmt.Fprintf(&b, "function %s:%s\n", name, config.SetupFunction)
			fmt.Fprintf(&b, "function %s:%s\n", name, config.VarsFunction)
			commands += 2
		}
		for _, cmd := range info.Commands {
			b.WriteString(cmd)
			b.WriteByte('\n')
			commands++
		}
		add("data/"+name+"/functions/"+fnName+".mcfunction", b.String())
	}

	if !hasLoad {
		var b strings.Builder
		fmt.Fprintf(&b, "function %s:%s\n", name, config.SetupFunction)
		fmt.Fprintf(&b, "function %s:%s\n", name, config.VarsFunction)
		commands += 2
		add("data/"+name+"/functions/"+config.LoadFunction+".mcfunction", b.String())
	}

	return files, Summary{BuildID: buildID, CommandCount: commands, FunctionCount: len(output.FunctionOrder)}
}

func sortedKeys(m map[string]typesystem.Type) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WriteDir renders output as the on-disk datapack directory tree rooted at
// dir/<proj.Name>, mirroring original_source/minescript.py's create_structure.
func WriteDir(dir string, output *codegen.Output, proj *config.Project, buildID string) (Summary, error) {
	files, summary := build(output, proj, buildID)
	for _, f := range files {
		full := filepath.Join(dir, filepath.FromSlash(f.path))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return Summary{}, fmt.Errorf("creating %s: %w", filepath.Dir(full), err)
		}
		if err := os.WriteFile(full, f.data, 0o644); err != nil {
			return Summary{}, fmt.Errorf("writing %s: %w", full, err)
		}
	}
	return summary, nil
}

// WriteZip renders output as a .zip archive, mirroring
// original_source/minescript.py's shutil.make_archive call. Uses the
// standard library's archive/zip — no ecosystem package in the example
// corpus offers anything beyond what archive/zip already does for a flat
// zip-of-directory use case, so the standard library is the right tool
// here (the one deliberate stdlib choice in this layer).
func WriteZip(w io.Writer, output *codegen.Output, proj *config.Project, buildID string) (Summary, error) {
	files, summary := build(output, proj, buildID)
	zw := zip.NewWriter(w)
	for _, f := range files {
		fw, err := zw.Create(f.path)
		if err != nil {
			return Summary{}, fmt.Errorf("creating zip entry %s: %w", f.path, err)
		}
		if _, err := fw.Write(f.data); err != nil {
			return Summary{}, fmt.Errorf("writing zip entry %s: %w", f.path, err)
		}
	}
	if err := zw.Close(); err != nil {
		return Summary{}, fmt.Errorf("closing zip: %w", err)
	}
	return summary, nil
}
