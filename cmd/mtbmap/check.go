package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"mtb-mapper/internal/analyze"
	"mtb-mapper/internal/diagnostic"
	"mtb-mapper/internal/mapping"
)

var errNoMappings = errors.New("-mappings is required")

// commonFlags are shared by every command reading override files.
type commonFlags struct {
	mappings string
	verbose  bool
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.mappings, "mappings", "", "comma separated override files, later files win")
	fs.BoolVar(&c.verbose, "v", false, "log progress to stderr")
}

func (c *commonFlags) logger() (*zap.Logger, error) {
	if !c.verbose {
		return zap.NewNop(), nil
	}

	return zap.NewDevelopment()
}

// load reads the override files and layers them. The files are returned
// too, in command line order.
func (c *commonFlags) load(log *zap.Logger) (*mapping.File, []*mapping.File, error) {
	if c.mappings == "" {
		return nil, nil, errNoMappings
	}

	var files []*mapping.File

	for _, path := range strings.Split(c.mappings, ",") {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}

		f, err := mapping.LoadFile(path)
		if err != nil {
			return nil, nil, err
		}

		log.Debug("override file loaded", zap.String("path", path), zap.Int("mappings", len(f.Mappings)))
		files = append(files, f)
	}

	layered, err := mapping.Layer(files...)
	if err != nil {
		return nil, nil, err
	}

	return layered, files, nil
}

func runCheck(args []string, stdout, stderr io.Writer) int {
	var (
		common  commonFlags
		dir     string
		noColor bool
	)

	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	common.register(fs)
	fs.StringVar(&dir, "dir", "", "directory the package patterns are resolved in")
	fs.BoolVar(&noColor, "no-color", false, "disable colored output")

	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "check: no packages given")
		return exitUsage
	}

	log, err := common.logger()
	if err != nil {
		fmt.Fprintln(stderr, "check:", err)
		return exitFail
	}
	defer func() { _ = log.Sync() }()

	f, files, err := common.load(log)
	if errors.Is(err, errNoMappings) {
		fmt.Fprintln(stderr, "check:", err)
		return exitUsage
	}

	if err != nil {
		fmt.Fprintln(stderr, "check:", err)
		return exitFail
	}

	start := time.Now()

	graph, err := analyze.NewAnalyzer(dir).LoadPackages(fs.Args()...)
	if err != nil {
		fmt.Fprintln(stderr, "check:", err)
		return exitFail
	}

	log.Debug("packages loaded",
		zap.Strings("patterns", fs.Args()),
		zap.Int("types", len(graph.Types)),
		zap.Duration("took", time.Since(start)))

	// layering hides what a single file repeats, so files are linted one
	// by one and only the mappings are checked on the layered result
	diags := &diagnostic.Diagnostics{}
	for _, file := range files {
		diags.Merge(*mapping.Lint(file))
	}

	diags.Merge(*mapping.CheckMappings(f, graph))

	p := newPrinter(stdout, !noColor)
	p.diagnostics(diags)
	p.summary(len(f.Mappings), diags)

	if diags.HasErrors() {
		return exitFail
	}

	return exitOK
}

func runMerge(args []string, stdout, stderr io.Writer) int {
	var common commonFlags

	fs := flag.NewFlagSet("merge", flag.ContinueOnError)
	fs.SetOutput(stderr)
	common.register(fs)

	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	log, err := common.logger()
	if err != nil {
		fmt.Fprintln(stderr, "merge:", err)
		return exitFail
	}
	defer func() { _ = log.Sync() }()

	f, _, err := common.load(log)
	if errors.Is(err, errNoMappings) {
		fmt.Fprintln(stderr, "merge:", err)
		return exitUsage
	}

	if err != nil {
		fmt.Fprintln(stderr, "merge:", err)
		return exitFail
	}

	out, err := mapping.Marshal(f)
	if err != nil {
		fmt.Fprintln(stderr, "merge:", err)
		return exitFail
	}

	_, _ = stdout.Write(out)

	return exitOK
}
