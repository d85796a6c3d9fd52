package main

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"wartimes-fbx-exporter/internal/config"
	"wartimes-fbx-exporter/internal/texgen"
	"wartimes-fbx-exporter/internal/texture"
)

func main() {
	configFile := flag.String("config", "", "Path to config.json file")
	catalogPath := flag.String("catalog", "", "Catalog JSON overlaying the built-in texture set")
	size := flag.Int("size", 0, "Texture size in pixels (default: 256)")
	format := flag.String("format", "", "Output format: bmp, webp or png (default: bmp)")
	supersample := flag.Int("supersample", 0, "Render at N x size and downsample (default: 1)")
	out := flag.String("out", "", "Output directory (default: current)")
	verbose := flag.Bool("v", false, "Debug logging")

	flag.Parse()

	logger := newLogger(*verbose)

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			logger.Error("config load failed", "err", err)
			os.Exit(1)
		}
	}
	cfg.Resolve(config.Flags{
		OutputDir:     *out,
		TextureSize:   *size,
		TextureFormat: *format,
		Supersample:   *supersample,
	})

	f, err := texture.ParseFormat(cfg.TextureFormat)
	if err != nil {
		logger.Error("bad format", "err", err)
		os.Exit(1)
	}

	catalog := texgen.DefaultCatalog()
	if *catalogPath != "" {
		catalog, err = texgen.LoadCatalog(*catalogPath)
		if err != nil {
			logger.Error("catalog load failed", "path", *catalogPath, "err", err)
			os.Exit(1)
		}
	}

	// Positional args select catalog entries; none means all.
	names := flag.Args()
	if len(names) == 0 {
		names = catalog.Names()
	}

	outDir := cfg.OutputDir
	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		logger.Error("cannot create output dir", "dir", outDir, "err", err)
		os.Exit(1)
	}

	failed := 0
	for _, name := range names {
		spec, ok := catalog[name]
		if !ok {
			logger.Error("not in catalog", "name", name)
			failed++
			continue
		}
		img, err := texgen.Render(spec, cfg.TextureSize, cfg.Supersample)
		if err != nil {
			logger.Error("generate failed", "name", name, "err", err)
			failed++
			continue
		}
		path := filepath.Join(outDir, name+f.Ext())
		if err := texture.WriteFile(path, img, f); err != nil {
			logger.Error("write failed", "path", path, "err", err)
			failed++
			continue
		}
		logger.Info("generated", "texture", path, "kind", spec.Kind, "size", cfg.TextureSize)
	}
	logger.Info("done", "generated", len(names)-failed, "failed", failed)

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
