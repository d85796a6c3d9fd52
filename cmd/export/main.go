package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"wartimes-fbx-exporter/internal/batch"
	"wartimes-fbx-exporter/internal/config"
	"wartimes-fbx-exporter/internal/export"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	output := flag.String("o", "", "Output file (single input) or directory (batch)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: 1)")
	noMerge := flag.Bool("no-merge", false, "Keep non-skinned geometries out of the export")
	mergeLeft := flag.String("merge-left", "", "Bone name substring for left-hand attachments")
	mergeRight := flag.String("merge-right", "", "Bone name substring for right-hand attachments")
	manifest := flag.String("manifest", "", "Write a JSON manifest of batch results to this path")
	watch := flag.Bool("watch", false, "Keep watching the input directory and re-export on change")
	verbose := flag.Bool("v", false, "Debug logging")

	flag.Parse()

	logger := newLogger(*verbose)

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: export [flags] <file.fbx | directory> [output.skmesh]")
		flag.PrintDefaults()
		os.Exit(2)
	}
	input := flag.Arg(0)

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			logger.Error("config load failed", "err", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		OutputDir:  *output,
		Workers:    *workers,
		NoMerge:    *noMerge,
		MergeLeft:  *mergeLeft,
		MergeRight: *mergeRight,
	})

	opts := export.Options{
		Merge:     cfg.MergeEnabled(),
		LeftBone:  cfg.MergeLeft,
		RightBone: cfg.MergeRight,
	}

	info, err := os.Stat(input)
	if err != nil {
		logger.Error("cannot stat input", "path", input, "err", err)
		os.Exit(1)
	}

	// Single file mode
	if !info.IsDir() {
		out := *output
		if flag.NArg() > 1 {
			out = flag.Arg(1)
		}
		if out == "" {
			out = export.DefaultOutput(input)
		}
		sum, err := export.Convert(input, out, opts, logger)
		if err != nil {
			logger.Error("export failed", "file", input, "err", err)
			os.Exit(1)
		}
		logger.Info("exported",
			"output", sum.Output,
			"vertices", sum.Vertices,
			"indices", sum.Indices,
			"bones", sum.Bones,
			"merged", sum.Merged)
		return
	}

	// Batch mode
	inputs, err := batch.FindInputs(input)
	if err != nil {
		logger.Error("scan failed", "dir", input, "err", err)
		os.Exit(1)
	}
	if len(inputs) == 0 && !*watch {
		logger.Warn("no container files found", "dir", input)
		return
	}
	if cfg.OutputDir != "" {
		if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
			logger.Error("cannot create output dir", "dir", cfg.OutputDir, "err", err)
			os.Exit(1)
		}
	}

	logger.Info("batch export", "inputs", len(inputs), "workers", cfg.Workers)

	start := time.Now()
	batchCfg := batch.Config{
		OutputDir: cfg.OutputDir,
		Workers:   cfg.Workers,
		Options:   opts,
		Logger:    logger,
	}
	results := batch.Run(batchCfg, inputs)

	success, failed := 0, 0
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failed++
		}
	}
	logger.Info("done",
		"converted", success,
		"failed", failed,
		"elapsed", fmt.Sprintf("%.1fs", time.Since(start).Seconds()))

	if *manifest != "" {
		if err := batch.WriteManifest(*manifest, results); err != nil {
			logger.Error("manifest write failed", "path", *manifest, "err", err)
		} else {
			logger.Info("manifest written", "path", *manifest)
		}
	}

	if *watch {
		if err := batch.Watch(input, batchCfg); err != nil {
			logger.Error("watch failed", "err", err)
			os.Exit(1)
		}
		return
	}

	if failed > 0 {
		os.Exit(1)
	}
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
