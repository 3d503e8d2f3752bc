package config

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoZeroFields(t *testing.T) {
	for _, name := range zeroFields(reflect.ValueOf(*Default()), "Config") {
		assert.Fail(t, "zero-value field", name)
	}
}

func TestFromJSON(t *testing.T) {
	t.Run("overlay", func(t *testing.T) {
		doc := `{
			"Headers": {"MaxLineLength": 4096, "Number": {"Default": 5, "Maximal": 20}},
			"NET": {"ReadTimeout": 5000000000}
		}`

		cfg, err := FromJSON(strings.NewReader(doc))
		require.NoError(t, err)
		require.Equal(t, 4096, cfg.Headers.MaxLineLength)
		require.Equal(t, 20, cfg.Headers.Number.Maximal)
		require.Equal(t, 5*time.Second, cfg.NET.ReadTimeout)
		// untouched fields keep defaults
		require.Equal(t, Default().URI.MaxLineLength, cfg.URI.MaxLineLength)
		require.Equal(t, Default().Body.MaxChunkHexDigits, cfg.Body.MaxChunkHexDigits)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := FromJSON(strings.NewReader(`{"Nope": 1}`))
		require.Error(t, err)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := FromJSON(strings.NewReader(`{"URI": `))
		require.Error(t, err)
	})
}

// zeroFields lists the leaves of the struct holding zero values. Fields tagged
// `test:"nullable"` may be zero.
func zeroFields(v reflect.Value, path string) (names []string) {
	if v.Kind() != reflect.Struct {
		if v.IsZero() {
			names = append(names, path)
		}

		return names
	}

	for i := range v.NumField() {
		field := v.Type().Field(i)
		if field.Tag.Get("test") == "nullable" {
			continue
		}

		names = append(names, zeroFields(v.Field(i), path+"."+field.Name)...)
	}

	return names
}
