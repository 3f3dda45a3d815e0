package fixture

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/abdul-hamid-achik/giraftest/packages/builtin"
)

var variablePattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// WarnFunc is a function type for handling warnings
type WarnFunc func(format string, args ...any)

// Store is a key/value map with template resolution. The runner gives each
// suite its own Store; the CLI uses one to expand expressions in configuration.
type Store struct {
	mu       sync.RWMutex
	values   map[string]any
	funcs    *builtin.Registry
	warnFunc WarnFunc
}

func NewStore() *Store {
	return &Store{
		values: make(map[string]any),
		funcs:  builtin.NewRegistry(),
	}
}

// SetWarnFunc sets a function to be called when warnings occur (e.g., unresolved keys)
func (s *Store) SetWarnFunc(fn WarnFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warnFunc = fn
}

func (s *Store) warn(format string, args ...any) {
	s.mu.RLock()
	fn := s.warnFunc
	s.mu.RUnlock()
	if fn != nil {
		fn(format, args...)
	}
}

func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

func (s *Store) SetAll(values map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range values {
		s.values[k] = v
	}
}

func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *Store) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// String returns the value for key formatted as a string, or "" when absent
func (s *Store) String(key string) string {
	v, ok := s.Get(key)
	if !ok || v == nil {
		return ""
	}
	if str, ok := v.(string); ok {
		return str
	}
	return fmt.Sprintf("%v", v)
}

// Int returns the value for key as an int64. JSON numbers arrive as float64
// and numeric strings are parsed.
func (s *Store) Int(key string) (int64, bool) {
	v, ok := s.Get(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case float64:
		return int64(n), true
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	}
	return 0, false
}

// MustString returns the string value for key or an error naming the missing key
func (s *Store) MustString(key string) (string, error) {
	v := s.String(key)
	if v == "" {
		return "", fmt.Errorf("fixture %q is not set", key)
	}
	return v, nil
}

// Resolve replaces {{key}}, {{$ENV_VAR}} and {{func(args)}} expressions.
// Unresolved expressions are left in place and reported through the warn func.
func (s *Store) Resolve(input string) string {
	return variablePattern.ReplaceAllStringFunc(input, func(match string) string {
		expr := match[2 : len(match)-2]
		expr = strings.TrimSpace(expr)

		if strings.HasPrefix(expr, "$") {
			envVar := expr[1:]
			if val := os.Getenv(envVar); val != "" {
				return val
			}
			s.warn("unresolved environment variable: $%s", envVar)
			return match
		}

		if strings.Contains(expr, "(") {
			if result, ok := s.funcs.Call(expr); ok {
				return fmt.Sprintf("%v", result)
			}
			s.warn("unresolved function call: %s", expr)
			return match
		}

		if val, ok := s.Get(expr); ok {
			return fmt.Sprintf("%v", val)
		}

		s.warn("unresolved fixture: %s", expr)
		return match
	})
}
