package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProjectFile is the file LoadProject looks for in a project directory.
const ProjectFile = "needs.yaml"

// Load reads a project from a YAML file.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading project file: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing project YAML: %w", err)
	}
	var p Project
	if doc.Kind != 0 {
		if err := doc.Decode(&p); err != nil {
			return nil, fmt.Errorf("parsing project YAML: %w", err)
		}
	}

	p.Dir = filepath.Dir(path)
	p.applyDefaults(hasKey(&doc, "capacity"))

	return &p, nil
}

// hasKey reports whether the top-level mapping of doc sets key, so an
// explicit zero can be told apart from an absent value.
func hasKey(doc *yaml.Node, key string) bool {
	root := doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == key {
			return true
		}
	}
	return false
}

// LoadProject loads a project from a project directory.
// It looks for needs.yaml in the given directory.
func LoadProject(projectDir string) (*Project, error) {
	return Load(filepath.Join(projectDir, ProjectFile))
}

// Resolve returns path relative to the project directory unless it is
// already absolute.
func (p *Project) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.Dir, path)
}

// Redacted returns a copy with credentials removed.
func (p *Project) Redacted() Project {
	c := *p
	c.Database = p.Database.Redacted()
	return c
}
