package capture

import (
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/giraftest/packages/fixture"
	"github.com/abdul-hamid-achik/giraftest/packages/http"
	"github.com/tidwall/gjson"
)

// Rule names one envelope value to copy into fixture state
type Rule struct {
	Key  string
	Path string
}

// Body captures the gjson path inside the {success, errorKey, data} envelope under key
func Body(key, path string) Rule {
	return Rule{Key: key, Path: path}
}

// Apply runs every rule against env and writes the found values into store.
// A path that is missing or null is not written; all such keys are reported
// together in the returned error.
func Apply(store *fixture.Store, env *http.Envelope, rules ...Rule) error {
	var missing []string

	for _, rule := range rules {
		value, ok := extract(env, rule)
		if !ok {
			missing = append(missing, rule.Key)
			continue
		}
		store.Set(rule.Key, value)
	}

	if len(missing) > 0 {
		return fmt.Errorf("capture: no value for %s", strings.Join(missing, ", "))
	}
	return nil
}

func extract(env *http.Envelope, rule Rule) (any, bool) {
	if env == nil {
		return nil, false
	}
	return valueOf(env.Get(rule.Path))
}

func valueOf(r gjson.Result) (any, bool) {
	if !r.Exists() || r.Type == gjson.Null {
		return nil, false
	}
	if r.Type == gjson.Number {
		if float64(r.Int()) == r.Num {
			return r.Int(), true
		}
		return r.Num, true
	}
	return r.Value(), true
}
