package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"thorn/compiler-go/pkg/checker"
	"thorn/compiler-go/pkg/driver"
)

const cliVersion = "thornc 0.0.0-dev"

var errManifestNotFound = errors.New("thorn.yml not found")

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	verbose := false
	rest := make([]string, 0, len(args))
	for _, a := range args {
		if a == "--verbose" || a == "-v" {
			verbose = true
			continue
		}
		rest = append(rest, a)
	}

	if len(rest) == 0 {
		printUsage()
		return 1
	}

	switch rest[0] {
	case "--help", "-h", "help":
		printUsage()
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(os.Stdout, cliVersion)
		return 0
	case "check":
		return runCheck(rest[1:], verbose)
	case "deps":
		return runDeps(rest[1:], verbose)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", rest[0])
		printUsage()
		return 1
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `usage: thornc [--verbose] <command>

commands:
  check [dir|target]   load the project, resolve dependencies, run checks
  deps  [dir]          fetch the project's dependencies into the cache
  version              print the version
`)
}

func newLogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// findManifest walks from dir toward the filesystem root looking for
// thorn.yml.
func findManifest(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(abs, driver.ManifestName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", errManifestNotFound
		}
		abs = parent
	}
}

func loadProject(arg string) (*driver.Manifest, error) {
	dir := "."
	if arg != "" {
		dir = arg
	}
	path, err := findManifest(dir)
	if err != nil {
		return nil, err
	}
	return driver.LoadManifest(path)
}

func cacheDirFor(m *driver.Manifest) string {
	return filepath.Join(filepath.Dir(m.Path), ".thorn")
}

func runDeps(args []string, verbose bool) int {
	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}
	m, err := loadProject(arg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load manifest: %v\n", err)
		return 1
	}

	log := newLogger(verbose)
	defer log.Sync()

	results, err := driver.FetchDependencies(log, m, cacheDirFor(m))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to fetch dependencies: %v\n", err)
		return 1
	}
	for name, res := range results {
		if res.Commit != "" {
			fmt.Fprintf(os.Stdout, "%s %s (%s)\n", name, res.Dir, res.Commit)
		} else {
			fmt.Fprintf(os.Stdout, "%s %s\n", name, res.Dir)
		}
	}
	return 0
}

func runCheck(args []string, verbose bool) int {
	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}
	m, err := loadProject(arg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load manifest: %v\n", err)
		return 1
	}

	log := newLogger(verbose)
	defer log.Sync()

	if len(m.Dependencies) > 0 {
		if _, err := driver.FetchDependencies(log, m, cacheDirFor(m)); err != nil {
			fmt.Fprintf(os.Stderr, "failed to fetch dependencies: %v\n", err)
			return 1
		}
	}

	if arg != "" {
		if _, ok := m.FindTarget(arg); !ok && !looksLikePath(arg) {
			fmt.Fprintf(os.Stderr, "no target %q in %s\n", arg, m.Path)
			return 1
		}
	}

	// TODO: feed parsed units from the front end once it lands; until
	// then check validates the project and runs an empty program.
	program := driver.NewProgram(log, nil)
	if err := program.Assemble(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to assemble program: %v\n", err)
		return 1
	}
	runErr := program.Run(context.Background())

	for _, d := range program.Reporter().Diagnostics() {
		fmt.Fprintln(os.Stderr, d.String())
	}
	if runErr != nil {
		if !errors.Is(runErr, checker.ErrChecksFailed) {
			fmt.Fprintf(os.Stderr, "checking aborted: %v\n", runErr)
		}
		return 1
	}
	fmt.Fprintf(os.Stdout, "%s: ok\n", m.Name)
	return 0
}

func looksLikePath(arg string) bool {
	if filepath.IsAbs(arg) {
		return true
	}
	info, err := os.Stat(arg)
	return err == nil && info.IsDir()
}
