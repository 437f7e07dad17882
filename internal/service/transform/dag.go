// Package transform implements the silver-to-gold transformer: a dependency
// ordered set of full-table-replace transformations over the warehouse.
package transform

import (
	"sort"

	"lakeflow/internal/domain"
)

// ResolveExecutionOrder computes a topological ordering of transformations
// using Kahn's algorithm. Returns levels of transformation names where each
// level only depends on earlier levels. Names are sorted within a level so
// the order is deterministic. Returns an error on cycles or unknown deps.
func ResolveExecutionOrder(transformations []domain.Transformation) ([][]string, error) {
	if len(transformations) == 0 {
		return nil, nil
	}

	inDegree := make(map[string]int, len(transformations))
	dependents := make(map[string][]string) // dep name → names that depend on it

	for _, t := range transformations {
		if _, dup := inDegree[t.Name]; dup {
			return nil, domain.ErrValidation("duplicate transformation name: %s", t.Name)
		}
		inDegree[t.Name] = 0
	}

	for _, t := range transformations {
		for _, dep := range t.DependsOn {
			if _, ok := inDegree[dep]; !ok {
				return nil, domain.ErrValidation("transformation %s: unknown dependency %q", t.Name, dep)
			}
			if dep == t.Name {
				return nil, domain.ErrValidation("transformation %s depends on itself", t.Name)
			}
			dependents[dep] = append(dependents[dep], t.Name)
			inDegree[t.Name]++
		}
	}

	var levels [][]string
	var queue []string
	for name, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, name)
		}
	}

	processed := 0
	for len(queue) > 0 {
		sort.Strings(queue)
		level := make([]string, len(queue))
		copy(level, queue)
		levels = append(levels, level)
		processed += len(level)

		var next []string
		for _, name := range queue {
			for _, dep := range dependents[name] {
				inDegree[dep]--
				if inDegree[dep] == 0 {
					next = append(next, dep)
				}
			}
		}
		queue = next
	}

	if processed != len(transformations) {
		return nil, domain.ErrValidation("cycle detected in transformation dependencies")
	}
	return levels, nil
}
