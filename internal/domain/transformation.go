package domain

// Transformation is a named, dependency-aware table-rewrite step. Running it
// replaces the target table's full contents with the result of SQL. DependsOn
// lists the names of transformations whose targets this one reads, so the
// executor can order the run as a topological sort.
type Transformation struct {
	Name      string   `yaml:"name"`
	Target    string   `yaml:"target"`
	SQL       string   `yaml:"sql"`
	DependsOn []string `yaml:"depends_on"`
}

// Validate checks that the transformation is well-formed.
func (t *Transformation) Validate() error {
	if t.Name == "" {
		return ErrValidation("transformation name is required")
	}
	if t.Target == "" {
		return ErrValidation("transformation %q: target is required", t.Name)
	}
	if t.SQL == "" {
		return ErrValidation("transformation %q: sql is required", t.Name)
	}
	return nil
}
