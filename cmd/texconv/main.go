package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"wartimes-fbx-exporter/internal/texture"
)

func main() {
	format := flag.String("format", "webp", "Output format: bmp, webp or png")
	out := flag.String("out", "", "Output directory (default: alongside input)")
	verbose := flag.Bool("v", false, "Debug logging")

	flag.Parse()

	logger := newLogger(*verbose)

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: texconv [flags] <texture | directory>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	input := flag.Arg(0)

	f, err := texture.ParseFormat(*format)
	if err != nil {
		logger.Error("bad format", "err", err)
		os.Exit(1)
	}

	info, err := os.Stat(input)
	if err != nil {
		logger.Error("cannot stat input", "path", input, "err", err)
		os.Exit(1)
	}

	if *out != "" {
		if err := os.MkdirAll(*out, 0755); err != nil {
			logger.Error("cannot create output dir", "dir", *out, "err", err)
			os.Exit(1)
		}
	}

	// Single file mode
	if !info.IsDir() {
		if err := convertOne(input, *out, f, logger); err != nil {
			logger.Error("convert failed", "file", input, "err", err)
			os.Exit(1)
		}
		return
	}

	// Index the directory so duplicate stems collapse the same way the
	// engine resolves them.
	idx := texture.BuildIndex(input)
	if idx.Len() == 0 {
		logger.Warn("no textures found", "dir", input)
		return
	}
	logger.Info("converting", "textures", idx.Len(), "format", string(f))

	failed := 0
	for _, stem := range idx.Stems() {
		src, ok := idx.ResolvePath(stem)
		if !ok {
			continue
		}
		if err := convertOne(src, *out, f, logger); err != nil {
			logger.Error("convert failed", "file", src, "err", err)
			failed++
		}
	}
	logger.Info("done", "converted", idx.Len()-failed, "failed", failed)

	if failed > 0 {
		os.Exit(1)
	}
}

func convertOne(src, outDir string, f texture.Format, logger *log.Logger) error {
	img, err := texture.Load(src)
	if err != nil {
		return err
	}
	stem := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	dir := outDir
	if dir == "" {
		dir = filepath.Dir(src)
	}
	dst := filepath.Join(dir, stem+f.Ext())
	if err := texture.WriteFile(dst, img, f); err != nil {
		return err
	}
	logger.Info("converted", "input", src, "output", dst)
	return nil
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
