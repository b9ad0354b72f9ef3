// Package main provides mtbmap, the companion tool of the mapper package.
//
// mtbmap works on mapping override files, the YAML documents a registry
// layers between auto-mapping and code rules:
//   - check validates override files against the Go packages that declare
//     the mapped types and reports unknown names, type mismatches and
//     undeclared transforms
//   - merge layers several override files and prints the result
//   - version prints the tool version
package main

import (
	"fmt"
	"io"
	"os"
)

const version = "0.3.0"

const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

const usage = `mtbmap - override file tool for the mtb-mapper registry

Usage:
  mtbmap check -mappings a.yaml[,b.yaml] [-dir dir] [-no-color] [-v] <packages>
  mtbmap merge -mappings a.yaml[,b.yaml]
  mtbmap version
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return exitUsage
	}

	switch args[0] {
	case "check":
		return runCheck(args[1:], stdout, stderr)
	case "merge":
		return runMerge(args[1:], stdout, stderr)
	case "version":
		fmt.Fprintln(stdout, "mtbmap", version)
		return exitOK
	case "help", "-h", "-help", "--help":
		fmt.Fprint(stdout, usage)
		return exitOK
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return exitUsage
	}
}
