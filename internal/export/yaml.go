package export

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/greenfly/internal/model"
)

type runDocument struct {
	Options     model.Options      `yaml:"options"`
	Generations []model.Generation `yaml:"generations"`
}

// WriteYAML writes the options and generations as one YAML document.
func WriteYAML(w io.Writer, opts model.Options, generations []model.Generation) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(runDocument{Options: opts, Generations: generations}); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to close yaml encoder: %w", err)
	}
	return nil
}

// WriteYAMLFile writes the YAML document to path.
func WriteYAMLFile(path string, opts model.Options, generations []model.Generation, overwrite bool) error {
	return writeFile(path, overwrite, func(w io.Writer) error {
		return WriteYAML(w, opts, generations)
	})
}
