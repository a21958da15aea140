package signal

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile is a named analysis configuration from YAML: which indicators are
// enabled and, optionally, seed weights for symbols that have no learned
// weights yet.
type Profile struct {
	Name       string             `yaml:"name"`
	Indicators map[string]bool    `yaml:"indicators"`
	Weights    map[string]float64 `yaml:"weights"`
}

// ProfileFile is the top-level YAML structure.
type ProfileFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// LoadProfiles reads analysis profiles from a YAML file.
func LoadProfiles(path string) ([]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file ProfileFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse profiles: %w", err)
	}

	for i := range file.Profiles {
		if err := file.Profiles[i].validate(); err != nil {
			return nil, err
		}
	}
	return file.Profiles, nil
}

func (p *Profile) validate() error {
	if p.Name == "" {
		return fmt.Errorf("profile without a name")
	}
	for name := range p.Indicators {
		if !knownIndicator(name) {
			return fmt.Errorf("profile %s: unknown indicator %q", p.Name, name)
		}
	}
	for name, w := range p.Weights {
		if !knownIndicator(name) {
			return fmt.Errorf("profile %s: unknown indicator %q in weights", p.Name, name)
		}
		if w < 0 {
			return fmt.Errorf("profile %s: negative weight for %q", p.Name, name)
		}
	}
	return nil
}

func knownIndicator(name string) bool {
	for _, known := range AllIndicators {
		if name == known {
			return true
		}
	}
	return false
}

// Settings converts the profile's indicator flags into engine Settings,
// falling back to the default profile when none are declared.
func (p *Profile) Settings() Settings {
	if len(p.Indicators) == 0 {
		return DefaultSettings()
	}
	s := make(Settings, len(p.Indicators))
	for name, enabled := range p.Indicators {
		s[name] = enabled
	}
	return s
}

// SeedWeights returns the profile's normalized seed weights, or equal
// weights when the profile declares none.
func (p *Profile) SeedWeights() WeightMap {
	if len(p.Weights) == 0 {
		return DefaultWeights()
	}
	w := make(WeightMap, len(p.Weights))
	for name, v := range p.Weights {
		w[name] = v
	}
	w.Normalize()
	return w
}
