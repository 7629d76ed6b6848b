// Package manifest handles intcode.toml run configuration.
package manifest

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// FileName is the manifest file looked up in a directory.
const FileName = "intcode.toml"

// Manifest represents an intcode.toml run configuration.
type Manifest struct {
	Program ProgramConfig    `toml:"program"`
	Run     RunConfig        `toml:"run"`
	Patch   map[string]int64 `toml:"patch"`
	Image   ImageConfig      `toml:"image"`

	// Dir is the directory containing the intcode.toml file (set at load time).
	Dir string `toml:"-"`
}

// ProgramConfig locates the program to run. Image wins over Path.
type ProgramConfig struct {
	Path  string `toml:"path"`
	Image string `toml:"image"`
}

// RunConfig holds execution defaults.
type RunConfig struct {
	Inputs      []int64 `toml:"inputs"`
	Trace       bool    `toml:"trace"`
	Verbosity   int     `toml:"verbosity"`
	Interactive bool    `toml:"interactive"`
}

// ImageConfig configures image output.
type ImageConfig struct {
	Output string `toml:"output"`
}

// Load parses the intcode.toml file in dir.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if _, err := m.Patches(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	return &m, nil
}

// FindAndLoad walks up from startDir to find an intcode.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// ProgramPath returns the program text path resolved against Dir.
func (m *Manifest) ProgramPath() string {
	return m.resolve(m.Program.Path)
}

// ImagePath returns the program image path resolved against Dir.
func (m *Manifest) ImagePath() string {
	return m.resolve(m.Program.Image)
}

// ImageOutputPath returns where images should be written, resolved against Dir.
func (m *Manifest) ImageOutputPath() string {
	return m.resolve(m.Image.Output)
}

// Patches converts the [patch] table into memory overrides. Keys are
// decimal addresses.
func (m *Manifest) Patches() (map[int64]*big.Int, error) {
	if len(m.Patch) == 0 {
		return nil, nil
	}
	out := make(map[int64]*big.Int, len(m.Patch))
	for k, v := range m.Patch {
		addr, err := strconv.ParseInt(k, 10, 64)
		if err != nil || addr < 0 {
			return nil, fmt.Errorf("patch address %q is not a non-negative integer", k)
		}
		out[addr] = big.NewInt(v)
	}
	return out, nil
}

func (m *Manifest) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Dir, p)
}
