package env

import "os"

// Lookup resolves named configuration values. The second return value
// reports whether the key was set at all.
type Lookup interface {
	Get(key string) (string, bool)
}

// LookupFunc adapts a plain function to Lookup.
type LookupFunc func(key string) (string, bool)

func (f LookupFunc) Get(key string) (string, bool) {
	return f(key)
}

// OS reads from the process environment on every call.
type OS struct{}

func (OS) Get(key string) (string, bool) {
	return os.LookupEnv(key)
}

// Map is a fixed set of values, mostly useful in tests.
type Map map[string]string

func (m Map) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// GetOrDefault returns the value for key, or def when the key is unset or empty.
func GetOrDefault(l Lookup, key, def string) string {
	if v, ok := l.Get(key); ok && v != "" {
		return v
	}
	return def
}
