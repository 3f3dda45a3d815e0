package giraf

import (
	"fmt"
	"sort"
	"strings"

	"github.com/abdul-hamid-achik/giraftest/packages/core/runner"
)

// Suites returns every suite in run order
func Suites(e *Env) []*runner.Suite {
	return []*runner.Suite{
		AccountSuite(e),
		WeekTemplateSuite(e),
	}
}

// SuiteNames lists the names accepted by Select
func SuiteNames(e *Env) []string {
	var names []string
	for _, s := range Suites(e) {
		names = append(names, s.Name)
	}
	sort.Strings(names)
	return names
}

// Select keeps the suites named in names, in run order. Names match
// case-insensitively; an empty list selects everything.
func Select(suites []*runner.Suite, names []string) ([]*runner.Suite, error) {
	if len(names) == 0 {
		return suites, nil
	}

	wanted := make(map[string]bool)
	for _, n := range names {
		wanted[strings.ToLower(strings.TrimSpace(n))] = true
	}

	var out []*runner.Suite
	for _, s := range suites {
		key := strings.ToLower(s.Name)
		if wanted[key] {
			out = append(out, s)
			delete(wanted, key)
		}
	}
	if len(wanted) > 0 {
		var unknown []string
		for n := range wanted {
			unknown = append(unknown, n)
		}
		sort.Strings(unknown)
		return nil, fmt.Errorf("unknown suite: %s", strings.Join(unknown, ", "))
	}
	return out, nil
}
