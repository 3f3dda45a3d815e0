package fixture

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SetGet(t *testing.T) {
	s := NewStore()
	s.Set("guardianToken", "abc")
	s.Set("templateId", float64(42))

	v, ok := s.Get("guardianToken")
	require.True(t, ok)
	assert.Equal(t, "abc", v)

	assert.Equal(t, "abc", s.String("guardianToken"))
	assert.Equal(t, "42", s.String("templateId"))
	assert.Equal(t, "", s.String("missing"))
	assert.True(t, s.Has("templateId"))
	assert.False(t, s.Has("missing"))
}

func TestStore_Int(t *testing.T) {
	s := NewStore()
	s.SetAll(map[string]any{
		"float":  float64(7),
		"int":    3,
		"string": "12",
		"bad":    "x",
	})

	tests := []struct {
		key  string
		want int64
		ok   bool
	}{
		{"float", 7, true},
		{"int", 3, true},
		{"string", 12, true},
		{"bad", 0, false},
		{"missing", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := s.Int(tt.key)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStore_MustString(t *testing.T) {
	s := NewStore()
	_, err := s.MustString("guardianToken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"guardianToken"`)

	s.Set("guardianToken", "t")
	v, err := s.MustString("guardianToken")
	require.NoError(t, err)
	assert.Equal(t, "t", v)
}

func TestStore_Resolve(t *testing.T) {
	t.Setenv("GIRAF_TEST_HOST", "localhost")

	s := NewStore()
	s.Set("templateId", 5)

	assert.Equal(t, "/v1/WeekTemplate/5", s.Resolve("/v1/WeekTemplate/{{templateId}}"))
	assert.Equal(t, "http://localhost", s.Resolve("http://{{$GIRAF_TEST_HOST}}"))
	assert.Regexp(t, `^Alice[0-9a-f]{12}$`, s.Resolve(`{{uniqueName("Alice")}}`))
}

func TestStore_ResolveWarnsOnMissing(t *testing.T) {
	s := NewStore()
	var warnings []string
	s.SetWarnFunc(func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	})

	out := s.Resolve("/v1/WeekTemplate/{{templateId}}")

	assert.Equal(t, "/v1/WeekTemplate/{{templateId}}", out)
	assert.Equal(t, []string{"unresolved fixture: templateId"}, warnings)
}
func TestStore_ResolveHeaderValues(t *testing.T) {
	t.Setenv("GIRAF_TEST_TOKEN", "s3cret")
	t.Setenv("GIRAF_TEST_UNSET", "")

	s := NewStore()
	s.SetAll(map[string]any{"CLIENT": "giraf-weekplanner"})
	var warnings []string
	s.SetWarnFunc(func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	})

	assert.Equal(t, "Bearer s3cret", s.Resolve("Bearer {{ $GIRAF_TEST_TOKEN }}"))
	assert.Equal(t, "giraf-weekplanner/1", s.Resolve("{{CLIENT}}/1"))
	assert.Regexp(t, `^[0-9a-f-]{36}$`, s.Resolve("{{uuid()}}"))
	assert.Empty(t, warnings)

	assert.Equal(t, "{{nope()}} {{$GIRAF_TEST_UNSET}}", s.Resolve("{{nope()}} {{$GIRAF_TEST_UNSET}}"))
	assert.Equal(t, []string{
		"unresolved function call: nope()",
		"unresolved environment variable: $GIRAF_TEST_UNSET",
	}, warnings)
}
