package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"wartimes-fbx-exporter/internal/batch"
	"wartimes-fbx-exporter/internal/obj"
)

func main() {
	size := flag.Float64("size", 1.0, "Target size for the longest axis (0 = keep source units)")
	verbose := flag.Bool("v", false, "Debug logging")

	flag.Parse()

	logger := newLogger(*verbose)

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: fbx2obj [flags] <file.fbx | directory> [output.obj]")
		flag.PrintDefaults()
		os.Exit(2)
	}
	input := flag.Arg(0)

	info, err := os.Stat(input)
	if err != nil {
		logger.Error("cannot stat input", "path", input, "err", err)
		os.Exit(1)
	}

	// Single file mode
	if !info.IsDir() {
		out := objOutput(input)
		if flag.NArg() > 1 {
			out = flag.Arg(1)
		}
		st, err := obj.ConvertFile(input, out, *size, logger)
		if err != nil {
			logger.Error("convert failed", "file", input, "err", err)
			os.Exit(1)
		}
		logger.Info("converted",
			"output", out,
			"geometries", st.Geometries,
			"vertices", st.Vertices,
			"scale", fmt.Sprintf("%.4f", st.Scale))
		return
	}

	// Batch mode
	inputs, err := batch.FindInputs(input)
	if err != nil {
		logger.Error("scan failed", "dir", input, "err", err)
		os.Exit(1)
	}
	if len(inputs) == 0 {
		logger.Warn("no container files found", "dir", input)
		return
	}

	failed := 0
	for _, in := range inputs {
		out := objOutput(in)
		st, err := obj.ConvertFile(in, out, *size, logger)
		if err != nil {
			logger.Error("convert failed", "file", in, "err", err)
			failed++
			continue
		}
		logger.Info("converted",
			"output", out,
			"geometries", st.Geometries,
			"vertices", st.Vertices)
	}
	logger.Info("done", "converted", len(inputs)-failed, "failed", failed)

	if failed > 0 {
		os.Exit(1)
	}
}

func objOutput(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".obj"
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
