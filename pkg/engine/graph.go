/*
Copyright © 2026 sunnydmess
SPDX-License-Identifier: Apache-2.0
*/
package engine

import (
	"strings"

	apperrors "github.com/sunnydmess/labctl/pkg/errors"
)

// order produces a total execution order consistent with the declared
// dependency partial order. Ties are broken by declaration order so runs are
// deterministic. Duplicate IDs, references to unknown resources, and cycles
// are configuration errors, reported before anything executes.
func order(resources []Resource) ([]Resource, error) {
	index := make(map[string]int, len(resources))
	for i, r := range resources {
		if r.ID() == "" {
			return nil, apperrors.New(apperrors.ErrCodeConfiguration,
				"resource with empty identifier")
		}
		if _, exists := index[r.ID()]; exists {
			return nil, apperrors.Newf(apperrors.ErrCodeConfiguration,
				"duplicate resource %q", r.ID())
		}
		index[r.ID()] = i
	}

	indegree := make([]int, len(resources))
	dependents := make([][]int, len(resources))
	for i, r := range resources {
		for _, dep := range r.DependsOn() {
			j, ok := index[dep]
			if !ok {
				return nil, apperrors.Newf(apperrors.ErrCodeConfiguration,
					"resource %q depends on unknown resource %q", r.ID(), dep)
			}
			if j == i {
				return nil, apperrors.Newf(apperrors.ErrCodeConfiguration,
					"resource %q depends on itself", r.ID())
			}
			indegree[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	// Kahn's algorithm; the ready candidate with the lowest declaration
	// index is always selected next. Resource sets are small, so a linear
	// scan beats maintaining a priority queue.
	done := make([]bool, len(resources))
	ordered := make([]Resource, 0, len(resources))
	for len(ordered) < len(resources) {
		next := -1
		for i := range resources {
			if !done[i] && indegree[i] == 0 {
				next = i
				break
			}
		}
		if next == -1 {
			return nil, apperrors.Newf(apperrors.ErrCodeConfiguration,
				"dependency cycle involving: %s", strings.Join(remaining(resources, done), ", "))
		}
		done[next] = true
		ordered = append(ordered, resources[next])
		for _, d := range dependents[next] {
			indegree[d]--
		}
	}

	return ordered, nil
}

func remaining(resources []Resource, done []bool) []string {
	var ids []string
	for i, r := range resources {
		if !done[i] {
			ids = append(ids, r.ID())
		}
	}
	return ids
}
