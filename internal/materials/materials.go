// Package materials provides the fibre and liner reference tables used by the calculators.
package materials

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"H2Tank/internal/calc/calcerr"
	"H2Tank/internal/calc/composite"

	"gopkg.in/yaml.v3"
)

//go:embed materials.yaml
var defaultTable []byte

// ErrUnknownMaterial is returned for names missing from the library.
var ErrUnknownMaterial = fmt.Errorf("%w: unknown material", calcerr.ErrInvalidInput)

type Fibre struct {
	Name       string                  `yaml:"name" json:"name"`
	DensityKg  float64                 `yaml:"density_kg_m3" json:"density_kg_m3"`
	ModulusGPa float64                 `yaml:"modulus_gpa" json:"modulus_gpa"`
	Strengths  composite.StrengthTable `yaml:"strengths" json:"strengths"`
}

type Liner struct {
	Name         string  `yaml:"name" json:"name"`
	Permeability float64 `yaml:"permeability" json:"permeability"`
	DensityKg    float64 `yaml:"density_kg_m3" json:"density_kg_m3"`
}

// Library is read-only after Load and safe for concurrent lookups.
type Library struct {
	Fibres []Fibre `yaml:"fibres" json:"fibres"`
	Liners []Liner `yaml:"liners" json:"liners"`
}

// Default returns the embedded library.
func Default() (*Library, error) {
	return Parse(defaultTable)
}

// Load reads a library from path, or the embedded table when path is empty.
func Load(path string) (*Library, error) {
	if path == "" {
		return Default()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read materials file: %w", err)
	}
	return Parse(b)
}

func Parse(b []byte) (*Library, error) {
	var lib Library
	if err := yaml.Unmarshal(b, &lib); err != nil {
		return nil, fmt.Errorf("parse materials: %w", err)
	}
	for _, f := range lib.Fibres {
		if err := f.Strengths.Validate(); err != nil {
			return nil, fmt.Errorf("fibre %q: %w", f.Name, err)
		}
	}
	for _, l := range lib.Liners {
		if l.Permeability <= 0 {
			return nil, fmt.Errorf("liner %q: %w: permeability %g", l.Name, calcerr.ErrInvalidInput, l.Permeability)
		}
	}
	return &lib, nil
}

func (l *Library) Fibre(name string) (Fibre, error) {
	for _, f := range l.Fibres {
		if strings.EqualFold(f.Name, name) {
			return f, nil
		}
	}
	return Fibre{}, fmt.Errorf("%w: fibre %q", ErrUnknownMaterial, name)
}

// Strengths returns the ply strength table of a named fibre system.
func (l *Library) Strengths(name string) (composite.StrengthTable, error) {
	f, err := l.Fibre(name)
	if err != nil {
		return composite.StrengthTable{}, err
	}
	return f.Strengths, nil
}

func (l *Library) Liner(name string) (Liner, error) {
	for _, ln := range l.Liners {
		if strings.EqualFold(ln.Name, name) {
			return ln, nil
		}
	}
	return Liner{}, fmt.Errorf("%w: liner %q", ErrUnknownMaterial, name)
}
