// Command levelcheck parses level files and prints a diagnostic for every
// problem found. It exits with status 1 if any file fails.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/milk9111/spherefall/levels"
)

func main() {
	quiet := flag.Bool("q", false, "only report failures")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: levelcheck [-q] [file-or-dir ...]\n\nWith no arguments the embedded levels are checked.\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	failed, err := run(os.Stdout, flag.Args(), *quiet)
	if err != nil {
		fmt.Fprintf(os.Stderr, "levelcheck: %v\n", err)
		os.Exit(2)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func run(out io.Writer, args []string, quiet bool) (int, error) {
	if len(args) == 0 {
		failed := 0
		for _, name := range levels.Names() {
			data, err := levels.LevelsFS.ReadFile(name)
			if err != nil {
				return failed, err
			}
			if !check(out, name, string(data), quiet) {
				failed++
			}
		}
		return failed, nil
	}

	files, err := expand(args)
	if err != nil {
		return 0, err
	}
	failed := 0
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return failed, err
		}
		if !check(out, path, string(data), quiet) {
			failed++
		}
	}
	return failed, nil
}

// expand replaces directories with the level files they contain.
func expand(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(arg, "*"+levels.Extension))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	return files, nil
}

func check(out io.Writer, name, text string, quiet bool) bool {
	desc, err := levels.Parse(name, text)
	if err != nil {
		var perr *levels.ParseError
		if errors.As(err, &perr) {
			fmt.Fprint(out, perr.Render())
			if !strings.HasSuffix(perr.Render(), "\n") {
				fmt.Fprintln(out)
			}
		} else {
			fmt.Fprintf(out, "%s: %v\n", name, err)
		}
		return false
	}
	if !quiet {
		fmt.Fprintf(out, "%s: ok (%d cubes, %d planes, %d death planes)\n",
			name, len(desc.Cubes), len(desc.Planes), len(desc.DeathPlanes))
	}
	return true
}
