// Package container stores catma projects under ~/.catma/.
//
// A container groups the projects of one analysed system landscape. Each
// project is a YAML config naming where its static evidence and learned
// runtime models live, plus its walk budgets; the directory of the same name
// holds the interpretations and report of its last analysis:
//
//	~/.catma/<container>/
//	    <project>.yaml           # static_model, dynamic_models, general_model, walks, ...
//	    <project>/               # summary.yaml, interpretations/, code_linked_models/, index.md
package container

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is wrapped by every error about a missing container or project.
var ErrNotFound = errors.New("not found")

const configExt = ".yaml"

// Container is an opened container directory.
type Container struct {
	Dir string
}

func catmaDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate catma home: %w", err)
	}
	return filepath.Join(home, ".catma"), nil
}

func containerDir(name string) (string, error) {
	base, err := catmaDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, name), nil
}

// Init creates an empty container. It fails if the container exists.
func Init(name string) error {
	dir, err := containerDir(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return fmt.Errorf("create catma home: %w", err)
	}
	if err := os.Mkdir(dir, 0o755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("container %q already exists at %s", name, dir)
		}
		return fmt.Errorf("create container %q: %w", name, err)
	}
	return nil
}

// Open returns the container called name.
func Open(name string) (*Container, error) {
	dir, err := containerDir(name)
	if err != nil {
		return nil, err
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("container %q %w (create it with 'catma init %s')", name, ErrNotFound, name)
	}
	return &Container{Dir: dir}, nil
}

func (c *Container) projectPath(name string) string {
	return filepath.Join(c.Dir, name+configExt)
}

// OutputDir is where the analysis of project name writes its summary,
// interpretations, code-linked models and report.
func (c *Container) OutputDir(name string) string {
	return filepath.Join(c.Dir, name)
}

// AddProject registers a new project. The config is validated before
// anything is written, so a rejected project leaves no file behind.
func (c *Container) AddProject(name string, config ProjectConfig) error {
	path := c.projectPath(name)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("project %q is already registered in %s", name, c.Dir)
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("project %q: %w", name, err)
	}
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("encode project %q: %w", name, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save project %q: %w", name, err)
	}
	return nil
}

// LoadProject reads the config of project name ready for analysis: model
// paths relative to the container are made absolute and unset walk budgets
// take their defaults.
func (c *Container) LoadProject(name string) (*ProjectConfig, error) {
	data, err := os.ReadFile(c.projectPath(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("project %q %w in %s", name, ErrNotFound, c.Dir)
	}
	if err != nil {
		return nil, fmt.Errorf("read project %q: %w", name, err)
	}
	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode project %q: %w", name, err)
	}
	cfg.resolve(c.Dir)
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("project %q: %w", name, err)
	}
	return &cfg, nil
}

// ListProjects returns the registered project names in sorted order.
// Analysis output directories and other files are skipped.
func (c *Container) ListProjects() ([]string, error) {
	entries, err := os.ReadDir(c.Dir)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	var projects []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if name, ok := strings.CutSuffix(e.Name(), configExt); ok && name != "" {
			projects = append(projects, name)
		}
	}
	sort.Strings(projects)
	return projects, nil
}

// RemoveProject unregisters a project and deletes the output of its last
// analysis, if any.
func (c *Container) RemoveProject(name string) error {
	if err := os.Remove(c.projectPath(name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("project %q %w in %s", name, ErrNotFound, c.Dir)
		}
		return fmt.Errorf("unregister project %q: %w", name, err)
	}
	if err := os.RemoveAll(c.OutputDir(name)); err != nil {
		return fmt.Errorf("delete analysis output of %q: %w", name, err)
	}
	return nil
}

// List returns the container names in sorted order. A missing catma home
// means no containers.
func List() ([]string, error) {
	base, err := catmaDir()
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(base)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list containers: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Remove deletes a container with all its projects and analysis output.
func Remove(name string) error {
	dir, err := containerDir(name)
	if err != nil {
		return err
	}
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("container %q %w", name, ErrNotFound)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("delete container %q: %w", name, err)
	}
	return nil
}
