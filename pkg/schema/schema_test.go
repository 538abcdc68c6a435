package schema_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurixander/minimal/pkg/schema"
)

func TestTypes(t *testing.T) {
	positive := schema.Custom("positive", func(v any) error {
		if n, ok := v.(int); !ok || n <= 0 {
			return errors.New("must be positive")
		}
		return nil
	})

	tests := []struct {
		name    string
		typ     schema.Type
		value   any
		wantErr string
	}{
		{name: "String", typ: schema.String(), value: "x"},
		{name: "String Rejects Int", typ: schema.String(), value: 1, wantErr: "expected string"},
		{name: "Int", typ: schema.Int(), value: int64(5)},
		{name: "Int From Whole Float", typ: schema.Int(), value: 5.0},
		{name: "Int Rejects Fraction", typ: schema.Int(), value: 5.5, wantErr: "not a whole number"},
		{name: "Int Rejects String", typ: schema.Int(), value: "5", wantErr: "expected int"},
		{name: "IntAtLeast", typ: schema.IntAtLeast(1), value: 1},
		{name: "IntAtLeast Below", typ: schema.IntAtLeast(1), value: int64(0), wantErr: "at least 1"},
		{name: "Bool", typ: schema.Bool(), value: true},
		{name: "Bool Rejects String", typ: schema.Bool(), value: "yes", wantErr: "expected bool"},
		{name: "Duration String", typ: schema.Duration(), value: "3s"},
		{name: "Duration Value", typ: schema.Duration(), value: 3 * time.Second},
		{name: "Duration Invalid", typ: schema.Duration(), value: "soon", wantErr: "expected duration"},
		{name: "OneOf", typ: schema.OneOf("file", "redis"), value: "Redis"},
		{name: "OneOf Miss", typ: schema.OneOf("file", "redis"), value: "etcd", wantErr: "one of file, redis"},
		{name: "Custom", typ: positive, value: 2},
		{name: "Custom Fails", typ: positive, value: -2, wantErr: "must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.typ.Validate(tt.value)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "1234", schema.Normalize(schema.String(), int64(1234)))
	assert.Equal(t, "true", schema.Normalize(schema.String(), true))
	assert.Equal(t, "redis", schema.Normalize(schema.OneOf("redis"), "REDIS"))
	assert.Equal(t, int64(3), schema.Normalize(schema.Int(), int64(3)))
}

func TestValidate(t *testing.T) {
	s := schema.Schema{
		"engine.max_iterations": schema.IntAtLeast(1),
		"splash.timeout":        schema.Duration(),
	}

	assert.NoError(t, schema.Validate(s, map[string]any{"splash.timeout": "3s"}), "partial data validates")
	assert.NoError(t, schema.Validate(s, nil))

	err := schema.Validate(s, map[string]any{
		"splash.timeout":        "later",
		"engine.max_iterations": 0,
		"nope":                  1,
	})
	require.Error(t, err)

	var agg *schema.AggregateError
	require.ErrorAs(t, err, &agg)
	require.Len(t, agg.Errors, 3)

	var first *schema.ValidationError
	require.ErrorAs(t, agg.Errors[0], &first)
	assert.Equal(t, "engine.max_iterations", first.Key, "errors are ordered by key")
	assert.True(t, strings.HasPrefix(err.Error(), "3 validation errors:"))
	assert.Contains(t, err.Error(), "nope: not defined in schema")
}

func TestValidate_SingleError(t *testing.T) {
	err := schema.Validate(schema.Schema{"a": schema.Bool()}, map[string]any{"a": "no"})
	require.Error(t, err)
	assert.Equal(t, "a: expected bool, got string", err.Error())
}
