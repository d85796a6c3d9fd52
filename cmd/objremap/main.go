package main

import (
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"wartimes-fbx-exporter/internal/obj"
)

func main() {
	tile := flag.Float64("tile", 0, "UV tile factor (0 = per-model default)")
	overridesPath := flag.String("overrides", "", "Path to per-model overrides JSON")
	suffix := flag.String("suffix", "", "Output name suffix (empty = rewrite in place)")
	verbose := flag.Bool("v", false, "Debug logging")

	flag.Parse()

	logger := newLogger(*verbose)

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: objremap [flags] <file.obj | directory>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	input := flag.Arg(0)

	defaults := obj.DefaultSettings()
	if *tile > 0 {
		defaults.Tile = *tile
	}

	overrides := obj.NewOverrides(defaults)
	if *overridesPath != "" {
		var err error
		overrides, err = obj.LoadOverrides(*overridesPath, defaults)
		if err != nil {
			logger.Error("overrides load failed", "path", *overridesPath, "err", err)
			os.Exit(1)
		}
	}

	info, err := os.Stat(input)
	if err != nil {
		logger.Error("cannot stat input", "path", input, "err", err)
		os.Exit(1)
	}

	files := []string{input}
	if info.IsDir() {
		files, err = findModels(input, *suffix)
		if err != nil {
			logger.Error("scan failed", "dir", input, "err", err)
			os.Exit(1)
		}
		if len(files) == 0 {
			logger.Warn("no models found", "dir", input)
			return
		}
	}

	failed := 0
	for _, f := range files {
		stem := strings.TrimSuffix(filepath.Base(f), filepath.Ext(f))
		if err := obj.ProcessFile(f, *suffix, overrides.For(stem), logger); err != nil {
			logger.Error("remap failed", "file", f, "err", err)
			failed++
		}
	}
	logger.Info("done", "processed", len(files)-failed, "failed", failed)

	if failed > 0 {
		os.Exit(1)
	}
}

// findModels walks dir for .obj files, skipping outputs of a previous
// suffixed run.
func findModels(dir, suffix string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".obj") {
			return nil
		}
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if suffix != "" && strings.HasSuffix(stem, suffix) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func newLogger(verbose bool) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}
