package batch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/godotengine/collada-exporter/collada"
)

const triObj = `v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
`

func manifestFor(model string) string {
	return `name = "test"

[[nodes]]
name = "Tri"
type = "mesh"
model = "` + model + `"
`
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func setupInput(t *testing.T) string {
	t.Helper()
	in := t.TempDir()
	writeFile(t, filepath.Join(in, "tri.obj"), triObj)
	writeFile(t, filepath.Join(in, "a.scene.toml"), manifestFor("tri.obj"))
	writeFile(t, filepath.Join(in, "sub", "tri.obj"), triObj)
	writeFile(t, filepath.Join(in, "sub", "b.scene.toml"), manifestFor("tri.obj"))
	writeFile(t, filepath.Join(in, "notes.toml"), "ignored = true")
	return in
}

func TestDiscover(t *testing.T) {
	in := setupInput(t)

	manifests, err := Discover(in)
	if err != nil {
		t.Fatal(err)
	}
	if len(manifests) != 2 {
		t.Fatalf("found %d manifests, want 2", len(manifests))
	}
	for _, m := range manifests {
		if !strings.HasSuffix(m, ".scene.toml") {
			t.Errorf("unexpected manifest %q", m)
		}
	}
}

func TestRun(t *testing.T) {
	in := setupInput(t)
	out := t.TempDir()

	cfg := Config{
		InputDir:  in,
		OutputDir: out,
		Options:   collada.DefaultOptions(),
		Workers:   2,
	}
	manifests, err := Discover(in)
	if err != nil {
		t.Fatal(err)
	}

	results := Run(cfg, manifests)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for _, r := range results {
		if !r.Success {
			t.Fatalf("convert %s failed: %s", r.Input, r.Error)
		}
		data, err := os.ReadFile(r.Output)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), "<COLLADA") {
			t.Errorf("%s does not look like a Collada document", r.Output)
		}
	}

	// Output mirrors the input tree.
	if _, err := os.Stat(filepath.Join(out, "sub", "b.dae")); err != nil {
		t.Errorf("nested output missing: %v", err)
	}
}

func TestRunReportsFailures(t *testing.T) {
	in := t.TempDir()
	writeFile(t, filepath.Join(in, "bad.scene.toml"), manifestFor("missing.obj"))

	cfg := Config{
		InputDir:  in,
		OutputDir: t.TempDir(),
		Options:   collada.DefaultOptions(),
	}
	results := Run(cfg, []string{filepath.Join(in, "bad.scene.toml")})
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Success || results[0].Error == "" {
		t.Errorf("expected a failed result, got %+v", results[0])
	}
}

func TestOutputPath(t *testing.T) {
	cfg := Config{InputDir: "/in", OutputDir: "/out"}
	got := outputPath(cfg, "/in/level/market.scene.toml")
	want := filepath.Join("/out", "level", "market.dae")
	if got != want {
		t.Errorf("outputPath = %q, want %q", got, want)
	}
}
