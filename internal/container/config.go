package container

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// Defaults applied by ApplyDefaults.
const (
	DefaultBackwardWalks  = 1000
	DefaultForwardWalks   = 1000
	DefaultWalkLength     = 20
	DefaultTopTransitions = 10
	DefaultWorkers        = 4
)

// ProjectConfig describes one analysed system.
type ProjectConfig struct {
	// StaticModel is the static evidence JSON file.
	StaticModel string `yaml:"static_model"`
	// DynamicModels is the directory of learned DOT models.
	DynamicModels string `yaml:"dynamic_models"`
	// GeneralModel names the whole-application model inside DynamicModels.
	GeneralModel string `yaml:"general_model"`
	// Services lists the known components. Empty means every component of
	// the static model.
	Services []string `yaml:"services,omitempty"`
	// Exclude holds doublestar patterns of component names left out of the
	// analysis.
	Exclude []string `yaml:"exclude,omitempty"`

	Walks          Walks `yaml:"walks"`
	TopTransitions int   `yaml:"top_transitions,omitempty"`
	Workers        int   `yaml:"workers,omitempty"`
}

// Walks holds the sampling budget.
type Walks struct {
	Backward int    `yaml:"backward,omitempty"`
	Forward  int    `yaml:"forward,omitempty"`
	Length   int    `yaml:"length,omitempty"`
	Seed     uint64 `yaml:"seed,omitempty"`
}

// ApplyDefaults fills unset numeric settings.
func (p *ProjectConfig) ApplyDefaults() {
	if p.Walks.Backward <= 0 {
		p.Walks.Backward = DefaultBackwardWalks
	}
	if p.Walks.Forward <= 0 {
		p.Walks.Forward = DefaultForwardWalks
	}
	if p.Walks.Length <= 0 {
		p.Walks.Length = DefaultWalkLength
	}
	if p.TopTransitions <= 0 {
		p.TopTransitions = DefaultTopTransitions
	}
	if p.Workers <= 0 {
		p.Workers = DefaultWorkers
	}
}

// Validate reports every missing required key and malformed pattern.
func (p *ProjectConfig) Validate() error {
	var errs []error
	if p.StaticModel == "" {
		errs = append(errs, errors.New("static_model is required"))
	}
	if p.DynamicModels == "" {
		errs = append(errs, errors.New("dynamic_models is required"))
	}
	if p.GeneralModel == "" {
		errs = append(errs, errors.New("general_model is required"))
	}
	for _, pat := range p.Exclude {
		if !doublestar.ValidatePattern(pat) {
			errs = append(errs, fmt.Errorf("exclude: invalid pattern %q", pat))
		}
	}
	return errors.Join(errs...)
}

// Excluded reports whether a component matches one of the exclude patterns.
func (p *ProjectConfig) Excluded(component string) bool {
	for _, pat := range p.Exclude {
		if ok, _ := doublestar.Match(pat, component); ok {
			return true
		}
	}
	return false
}

// resolve makes relative model paths relative to base.
func (p *ProjectConfig) resolve(base string) {
	for _, s := range []*string{&p.StaticModel, &p.DynamicModels} {
		if *s != "" && !filepath.IsAbs(*s) {
			*s = filepath.Join(base, *s)
		}
	}
}
