// Command minescript is the MineScript compiler CLI. It takes a single
// plain-os.Args dispatch style from funvibe-funxy/cmd/funxy/main.go
// (a handleX() bool predicate tried for each subcommand) rather than a
// flag-parsing framework.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/kr/pretty"

	"github.com/ArmindoFlores/MineScript2/internal/config"
	"github.com/ArmindoFlores/MineScript2/internal/diagnostics"
	"github.com/ArmindoFlores/MineScript2/internal/pack"
	"github.com/ArmindoFlores/MineScript2/pkg/compiler"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run is main's body, split out so tests (cmd/minescript/main_test.go, via
// testscript) can drive it as an in-process command without forking a
// subprocess for every fixture.
func run(args []string) int {
	if handleHelp(args) {
		return 0
	}
	if ok, code := handleBuild(args); ok {
		return code
	}
	fmt.Fprintln(os.Stderr, "usage: minescript build <file.ms> [-o <output-dir>] [-debug]")
	return 1
}

func handleHelp(args []string) bool {
	if len(args) < 1 {
		return false
	}
	switch args[0] {
	case "-h", "--help", "help":
	default:
		return false
	}
	fmt.Println("minescript build <file.ms> [-o <output-dir>] [-debug]")
	fmt.Println("  compiles a MineScript source file into a Minecraft datapack")
	fmt.Println("  (a build/<pack>/ directory tree plus a dist/<pack>.zip archive).")
	return true
}

func handleBuild(args []string) (bool, int) {
	if len(args) < 2 || args[0] != "build" {
		return false, 0
	}
	sourcePath := args[1]

	outputDir := ""
	debug := false
	for i := 2; i < len(args); i++ {
		switch args[i] {
		case "-o":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "minescript: -o requires an argument")
				return true, 1
			}
			outputDir = args[i+1]
			i++
		case "-debug", "--debug":
			debug = true
		}
	}

	source, err := os.ReadFile(sourcePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "minescript: %s\n", err)
		return true, 1
	}

	proj := resolveProject(sourcePath, outputDir)

	result, diags, err := compiler.Compile(string(source), proj.Name, compiler.Options{FilePath: sourcePath})
	if err != nil {
		fmt.Fprintf(os.Stderr, "minescript: internal error: %s\n", err)
		return true, 1
	}

	if len(diags) > 0 {
		printer := diagnostics.NewPrinter(os.Stderr, string(source))
		for _, d := range diags {
			printer.Print(d)
		}
	}
	if result == nil {
		return true, 1
	}

	if debug {
		pretty.Println(result.Output)
	}

	buildID := uuid.New().String()
	sourceDir := filepath.Dir(sourcePath)

	buildDir := filepath.Join(sourceDir, "build")
	if _, err := pack.WriteDir(buildDir, result.Output, proj, buildID); err != nil {
		fmt.Fprintf(os.Stderr, "minescript: %s\n", err)
		return true, 1
	}

	distDir := filepath.Join(sourceDir, proj.Output)
	if err := os.MkdirAll(distDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "minescript: %s\n", err)
		return true, 1
	}
	zipPath := filepath.Join(distDir, proj.Name+".zip")
	zipFile, err := os.Create(zipPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "minescript: %s\n", err)
		return true, 1
	}
	defer zipFile.Close()

	summary, err := pack.WriteZip(zipFile, result.Output, proj, buildID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "minescript: %s\n", err)
		return true, 1
	}

	fmt.Printf("Wrote %s functions and %s commands to %s\n",
		humanize.Comma(int64(summary.FunctionCount)), humanize.Comma(int64(summary.CommandCount)), zipPath)
	return true, 0
}

// resolveProject fills in a config.Project from a minescript.yaml found
// next to sourcePath, falling back to the source file's base name and
// compiler defaults when no project file exists.
func resolveProject(sourcePath, outputOverride string) *config.Project {
	name := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	proj := &config.Project{
		Name:        name,
		Description: config.DefaultDescription,
		Output:      config.DefaultOutputDir,
	}

	if found, err := config.FindProject(filepath.Dir(sourcePath)); err == nil && found != "" {
		if loaded, err := config.LoadProject(found); err == nil {
			proj = loaded
		}
	}

	if outputOverride != "" {
		proj.Output = outputOverride
	}
	return proj
}
