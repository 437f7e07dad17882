package transform

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"lakeflow/internal/domain"
)

//go:embed transformations.yaml
var defaultCatalog []byte

type catalogFile struct {
	Transformations []domain.Transformation `yaml:"transformations"`
}

// ParseCatalog decodes a YAML transformation catalog and validates every
// entry, including that the dependency graph resolves.
func ParseCatalog(data []byte) ([]domain.Transformation, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse transformation catalog: %w", err)
	}
	if len(file.Transformations) == 0 {
		return nil, domain.ErrValidation("transformation catalog is empty")
	}
	for i := range file.Transformations {
		if err := file.Transformations[i].Validate(); err != nil {
			return nil, err
		}
	}
	if _, err := ResolveExecutionOrder(file.Transformations); err != nil {
		return nil, err
	}
	return file.Transformations, nil
}

// DefaultCatalog returns the transformation set compiled into the binary.
func DefaultCatalog() ([]domain.Transformation, error) {
	return ParseCatalog(defaultCatalog)
}
