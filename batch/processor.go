// Package batch converts many scene manifests to Collada documents
// using a worker pool.
package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/godotengine/collada-exporter/collada"
	"github.com/godotengine/collada-exporter/core"
	"github.com/godotengine/collada-exporter/loaders"
)

// Config holds all shared resources for a batch run.
type Config struct {
	InputDir  string
	OutputDir string
	Options   collada.Options
	Workers   int
}

// Result holds the outcome of converting one manifest.
type Result struct {
	Input   string
	Output  string
	Success bool
	Error   string
}

// Discover lists the scene manifests under dir, recursively.
func Discover(dir string) ([]string, error) {
	var manifests []string
	err := filepath.Walk(dir, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !fi.IsDir() && strings.HasSuffix(path, ".scene.toml") {
			manifests = append(manifests, path)
		}
		return nil
	})
	return manifests, err
}

// Run converts all manifests using a worker pool and returns one
// result per input, in input order.
func Run(cfg Config, manifests []string) []Result {
	total := len(manifests)
	results := make([]Result, total)
	var processed atomic.Int64

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

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
					core.LogInfo("[%d/%d] %.1f scenes/sec", p, total, rate)
				}
			}
		}
	}()

	// Worker pool
	jobs := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = convert(cfg, manifests[idx])
				processed.Add(1)
			}
		}()
	}

	for i := range manifests {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	close(done)

	return results
}

// outputPath mirrors the input's location under the output directory,
// swapping the manifest suffix for .dae.
func outputPath(cfg Config, input string) string {
	rel, err := filepath.Rel(cfg.InputDir, input)
	if err != nil {
		rel = filepath.Base(input)
	}
	rel = strings.TrimSuffix(rel, ".scene.toml") + ".dae"
	return filepath.Join(cfg.OutputDir, rel)
}

func convert(cfg Config, input string) Result {
	out := outputPath(cfg, input)

	sc, opts, err := loaders.LoadManifestOptions(input, cfg.Options)
	if err != nil {
		return Result{Input: input, Output: out, Error: err.Error()}
	}

	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return Result{Input: input, Output: out, Error: err.Error()}
	}

	if err := collada.Export(sc, opts, out); err != nil {
		return Result{Input: input, Output: out, Error: fmt.Sprintf("export: %v", err)}
	}

	return Result{Input: input, Output: out, Success: true}
}
