package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/godotengine/collada-exporter/batch"
	"github.com/godotengine/collada-exporter/collada"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestWatcher(t *testing.T, in string) *Watcher {
	t.Helper()
	w, err := NewWatcher(batch.Config{
		InputDir:  in,
		OutputDir: t.TempDir(),
		Options:   collada.DefaultOptions(),
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { w.Close() })
	return w
}

func TestAffectedManifestsDirect(t *testing.T) {
	in := t.TempDir()
	w := newTestWatcher(t, in)

	manifest := filepath.Join(in, "a.scene.toml")
	got := w.affectedManifests(manifest)
	if len(got) != 1 || got[0] != manifest {
		t.Errorf("affectedManifests = %v, want [%s]", got, manifest)
	}
}

func TestAffectedManifestsResource(t *testing.T) {
	in := t.TempDir()
	writeFile(t, filepath.Join(in, "a.scene.toml"), "name = \"a\"")
	writeFile(t, filepath.Join(in, "sub", "b.scene.toml"), "name = \"b\"")
	w := newTestWatcher(t, in)

	// A resource in sub/ affects both: b sits beside it, a sits above.
	got := w.affectedManifests(filepath.Join(in, "sub", "model.obj"))
	if len(got) != 2 {
		t.Fatalf("affectedManifests = %v, want 2 entries", got)
	}

	// A resource at the top level does not touch manifests below it.
	got = w.affectedManifests(filepath.Join(in, "model.obj"))
	if len(got) != 1 || got[0] != filepath.Join(in, "a.scene.toml") {
		t.Errorf("affectedManifests = %v, want only the top manifest", got)
	}
}

func TestCloseStopsRunningStart(t *testing.T) {
	w := newTestWatcher(t, t.TempDir())

	started := make(chan error, 1)
	go func() { started <- w.Start() }()

	time.Sleep(20 * time.Millisecond)
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := <-started; err != nil {
		t.Errorf("Start returned %v after Close, want nil", err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	w := newTestWatcher(t, t.TempDir())
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err == nil {
		t.Error("Start after Close should fail")
	}
}
