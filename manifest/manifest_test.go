package manifest

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[program]
path = "day09.txt"

[run]
inputs = [1, -2]
trace = true
verbosity = 2
interactive = true

[patch]
"1" = 12
"2" = 2

[image]
output = "out/day09.icpi"
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if m.Program.Path != "day09.txt" {
		t.Errorf("program path = %q, want day09.txt", m.Program.Path)
	}
	if got := m.ProgramPath(); got != filepath.Join(m.Dir, "day09.txt") {
		t.Errorf("ProgramPath() = %q, want it under %q", got, m.Dir)
	}
	if len(m.Run.Inputs) != 2 || m.Run.Inputs[0] != 1 || m.Run.Inputs[1] != -2 {
		t.Errorf("run inputs = %v, want [1 -2]", m.Run.Inputs)
	}
	if !m.Run.Trace {
		t.Error("run trace = false, want true")
	}
	if m.Run.Verbosity != 2 {
		t.Errorf("run verbosity = %d, want 2", m.Run.Verbosity)
	}
	if !m.Run.Interactive {
		t.Error("run interactive = false, want true")
	}
	if got := m.ImageOutputPath(); got != filepath.Join(m.Dir, "out", "day09.icpi") {
		t.Errorf("ImageOutputPath() = %q", got)
	}

	patches, err := m.Patches()
	if err != nil {
		t.Fatalf("Patches failed: %v", err)
	}
	if len(patches) != 2 {
		t.Fatalf("patches count = %d, want 2", len(patches))
	}
	if patches[1].Int64() != 12 || patches[2].Int64() != 2 {
		t.Errorf("patches = %v, want 1=12 2=2", patches)
	}
}

func TestLoadManifestDefaults(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[program]
path = "prog.txt"
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(m.Run.Inputs) != 0 {
		t.Errorf("run inputs = %v, want none", m.Run.Inputs)
	}
	if m.Run.Trace || m.Run.Interactive {
		t.Error("trace and interactive should default to false")
	}
	if m.ImagePath() != "" {
		t.Errorf("ImagePath() = %q, want empty", m.ImagePath())
	}
	patches, err := m.Patches()
	if err != nil || patches != nil {
		t.Errorf("Patches() = %v, %v; want nil, nil", patches, err)
	}
}

func TestLoadManifestAbsolutePath(t *testing.T) {
	dir := t.TempDir()
	abs := filepath.Join(t.TempDir(), "elsewhere.txt")
	writeManifest(t, dir, "[program]\npath = "+`"`+filepath.ToSlash(abs)+`"`+"\n")

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := m.ProgramPath(); got != filepath.ToSlash(abs) {
		t.Errorf("ProgramPath() = %q, want %q", got, abs)
	}
}

func TestLoadManifestBadPatch(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[patch]
"-1" = 5
`)
	if _, err := Load(dir); err == nil {
		t.Error("expected error for negative patch address")
	}
}

func TestLoadManifestParseError(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "[program\npath = ")
	if _, err := Load(dir); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadManifestMissing(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Error("expected error for missing intcode.toml")
	}
}

func TestFindAndLoadWalksUp(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `
[program]
path = "prog.txt"
`)
	sub := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}

	m, err := FindAndLoad(sub)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if m == nil {
		t.Fatal("expected manifest, got nil")
	}
	want, _ := filepath.Abs(root)
	if m.Dir != want {
		t.Errorf("Dir = %q, want %q", m.Dir, want)
	}
}
