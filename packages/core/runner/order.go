package runner

import (
	"errors"
	"fmt"
	"strings"
)

// orderCases returns cases in declaration order, moving a case only when it
// names a prerequisite declared after it. Among ready cases the earliest
// declared one always runs first. Unknown prerequisites are reported through
// warn and ignored for ordering.
func orderCases(cases []*Case, warn WarnFunc) ([]*Case, error) {
	index := make(map[string]int, len(cases))
	for i, c := range cases {
		if c.Name == "" {
			return nil, fmt.Errorf("case %d has no name", i+1)
		}
		if _, dup := index[c.Name]; dup {
			return nil, fmt.Errorf("duplicate case %q", c.Name)
		}
		index[c.Name] = i
	}

	inDegree := make([]int, len(cases))
	dependents := make([][]int, len(cases))
	for i, c := range cases {
		for _, dep := range c.Depends {
			j, ok := index[dep]
			if !ok {
				if warn != nil {
					warn("case %q depends on %q which does not exist", c.Name, dep)
				}
				continue
			}
			if j == i {
				return nil, fmt.Errorf("case %q depends on itself", c.Name)
			}
			dependents[j] = append(dependents[j], i)
			inDegree[i]++
		}
	}

	done := make([]bool, len(cases))
	sorted := make([]*Case, 0, len(cases))
	for len(sorted) < len(cases) {
		next := -1
		for i := range cases {
			if !done[i] && inDegree[i] == 0 {
				next = i
				break
			}
		}
		if next == -1 {
			return nil, cycleError(cases, done)
		}
		done[next] = true
		sorted = append(sorted, cases[next])
		for _, d := range dependents[next] {
			inDegree[d]--
		}
	}
	return sorted, nil
}

func cycleError(cases []*Case, done []bool) error {
	var names []string
	for i, c := range cases {
		if !done[i] {
			names = append(names, c.Name)
		}
	}
	return errors.New("circular dependency between cases: " + strings.Join(names, ", "))
}
