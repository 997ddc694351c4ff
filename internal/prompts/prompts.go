// Package prompts loads the summarization prompt set and assembles prompts
// from retrieved chunks under a context budget.
package prompts

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/priyanshu10cruzo/ai-meeting-summary/internal/generation"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Set is a prompt configuration.
type Set struct {
	Version           string   `yaml:"version"`
	DefaultQuery      string   `yaml:"default_query"`
	RequiredKeys      []string `yaml:"required_keys"`
	OptionalKeys      []string `yaml:"optional_keys"`
	Template          string   `yaml:"template"`
	StrictInstruction string   `yaml:"strict_instruction"`
}

// Default returns the embedded prompt set.
func Default() (*Set, error) {
	var s Set
	if err := yaml.Unmarshal(defaultsYAML, &s); err != nil {
		return nil, fmt.Errorf("embedded prompts: %w", err)
	}
	return &s, nil
}

// Load returns the embedded set overlaid with the YAML file at path. Keys
// missing from the file keep their default. An empty path returns defaults.
func Load(path string) (*Set, error) {
	s, err := Default()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompts file: %w", err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse prompts file %s: %w", path, err)
	}
	return s, s.validate()
}

func (s *Set) validate() error {
	if strings.TrimSpace(s.Template) == "" {
		return fmt.Errorf("prompt set %s: template is empty", s.Version)
	}
	if len(s.RequiredKeys) == 0 {
		return fmt.Errorf("prompt set %s: required_keys is empty", s.Version)
	}
	return nil
}

// Hint returns the schema hint passed to generators.
func (s *Set) Hint() generation.SchemaHint {
	return generation.SchemaHint{Required: s.RequiredKeys, Optional: s.OptionalKeys}
}

func (s *Set) compile() (*template.Template, error) {
	t, err := template.New("summary").Option("missingkey=error").Parse(s.Template)
	if err != nil {
		return nil, fmt.Errorf("prompt template: %w", err)
	}
	return t, nil
}
