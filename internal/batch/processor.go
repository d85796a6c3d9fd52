package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"wartimes-fbx-exporter/internal/export"
)

// ConvertFunc converts one container file. Batch runs default to
// export.Convert; tests substitute their own.
type ConvertFunc func(input, output string, opts export.Options, logger *log.Logger) (*export.Summary, error)

// Config holds the shared settings for a batch run.
type Config struct {
	OutputDir string
	Workers   int
	Options   export.Options
	Logger    *log.Logger
	Convert   ConvertFunc // nil = export.Convert
}

// Result holds the outcome of converting one file.
type Result struct {
	Input    string `json:"input"`
	Output   string `json:"output,omitempty"`
	Vertices int    `json:"vertices,omitempty"`
	Indices  int    `json:"indices,omitempty"`
	Bones    int    `json:"bones,omitempty"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

// FindInputs walks dir for container files, sorted for deterministic
// batch order.
func FindInputs(dir string) ([]string, error) {
	var inputs []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".fbx") {
			inputs = append(inputs, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("batch: scan %s: %w", dir, err)
	}
	sort.Strings(inputs)
	return inputs, nil
}

// OutputPath places input's .skmesh next to it, or under outputDir when
// one is set.
func OutputPath(outputDir, input string) string {
	if outputDir == "" {
		return export.DefaultOutput(input)
	}
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outputDir, stem+".skmesh")
}

// Run converts all inputs using a worker pool. Failures are isolated
// per file and reported in the results.
func Run(cfg Config, inputs []string) []Result {
	convert := cfg.Convert
	if convert == nil {
		convert = export.Convert
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	total := len(inputs)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					rate := float64(p) / elapsed
					cfg.Logger.Info("progress",
						"done", p,
						"total", total,
						"rate", fmt.Sprintf("%.1f/sec", rate))
				}
			}
		}
	}()

	// Worker pool
	fileChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range fileChan {
				results[idx] = convertOne(cfg, convert, inputs[idx])
				processed.Add(1)
			}
		}()
	}

	// Send work
	for i := range inputs {
		fileChan <- i
	}
	close(fileChan)

	wg.Wait()
	close(done)

	return results
}

func convertOne(cfg Config, convert ConvertFunc, input string) Result {
	output := OutputPath(cfg.OutputDir, input)
	sum, err := convert(input, output, cfg.Options, cfg.Logger)
	if err != nil {
		cfg.Logger.Error("convert failed", "input", input, "err", err)
		return Result{Input: input, Error: err.Error()}
	}
	return Result{
		Input:    input,
		Output:   output,
		Vertices: sum.Vertices,
		Indices:  sum.Indices,
		Bones:    sum.Bones,
		Success:  true,
	}
}
