package builtin

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniqueName(t *testing.T) {
	a := UniqueName("Gunnar")
	b := UniqueName("Gunnar")

	assert.Regexp(t, regexp.MustCompile(`^Gunnar[0-9a-f]{12}$`), a)
	assert.NotEqual(t, a, b)
}

func TestRegistry_Call(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		name  string
		expr  string
		check func(t *testing.T, v any)
	}{
		{
			name: "uuid",
			expr: "uuid()",
			check: func(t *testing.T, v any) {
				assert.Len(t, v, 36)
			},
		},
		{
			name: "uniqueName with quoted prefix",
			expr: `uniqueName("Alice")`,
			check: func(t *testing.T, v any) {
				assert.Regexp(t, `^Alice[0-9a-f]{12}$`, v)
			},
		},
		{
			name: "random in range",
			expr: "random(3, 5)",
			check: func(t *testing.T, v any) {
				n, ok := v.(int)
				require.True(t, ok)
				assert.GreaterOrEqual(t, n, 3)
				assert.LessOrEqual(t, n, 5)
			},
		},
		{
			name: "randomString length",
			expr: "randomString(8)",
			check: func(t *testing.T, v any) {
				assert.Len(t, v, 8)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := r.Call(tt.expr)
			require.True(t, ok)
			tt.check(t, v)
		})
	}
}

func TestRegistry_UnknownFunction(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Call("nope()")
	assert.False(t, ok)

	_, ok = r.Call("not a call")
	assert.False(t, ok)
}

func TestRegistry_TimeFunctions(t *testing.T) {
	r := NewRegistry()

	v, ok := r.Call("timestamp()")
	require.True(t, ok)
	assert.IsType(t, int64(0), v)

	v, ok = r.Call("now()")
	require.True(t, ok)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z$`, v)
}
