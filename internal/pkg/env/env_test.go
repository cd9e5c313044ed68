package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOS_Get(t *testing.T) {
	t.Run("set variable", func(t *testing.T) {
		t.Setenv("AIDMAP_TEST_VALUE", "abc123")
		v, ok := OS{}.Get("AIDMAP_TEST_VALUE")
		assert.True(t, ok)
		assert.Equal(t, "abc123", v)
	})

	t.Run("set but empty", func(t *testing.T) {
		t.Setenv("AIDMAP_TEST_VALUE", "")
		v, ok := OS{}.Get("AIDMAP_TEST_VALUE")
		assert.True(t, ok)
		assert.Empty(t, v)
	})

	t.Run("unset variable", func(t *testing.T) {
		v, ok := OS{}.Get("AIDMAP_TEST_DOES_NOT_EXIST")
		assert.False(t, ok)
		assert.Empty(t, v)
	})
}

func TestGetOrDefault(t *testing.T) {
	m := Map{"PORT": "9000", "EMPTY": ""}

	assert.Equal(t, "9000", GetOrDefault(m, "PORT", "8080"))
	assert.Equal(t, "8080", GetOrDefault(m, "EMPTY", "8080"))
	assert.Equal(t, "8080", GetOrDefault(m, "MISSING", "8080"))
}

func TestLookupFunc(t *testing.T) {
	calls := 0
	l := LookupFunc(func(key string) (string, bool) {
		calls++
		return key + "-value", true
	})

	v, ok := l.Get("TOKEN")
	assert.True(t, ok)
	assert.Equal(t, "TOKEN-value", v)
	assert.Equal(t, 1, calls)
}
