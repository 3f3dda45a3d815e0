package env

import (
	"os"
	"strings"
)

// Prefix marks the environment variables giraftest reads
const Prefix = "GIRAF_"

// LoadSystemEnv returns the process environment variables that start with
// prefix, keyed without it. An empty prefix returns everything.
func LoadSystemEnv(prefix string) map[string]string {
	result := make(map[string]string)
	for _, e := range os.Environ() {
		key, value, ok := strings.Cut(e, "=")
		if !ok {
			continue
		}
		if prefix == "" {
			result[key] = value
			continue
		}
		if len(key) > len(prefix) && strings.HasPrefix(key, prefix) {
			result[key[len(prefix):]] = value
		}
	}
	return result
}

// StripPrefix keeps only keys starting with prefix and removes it
func StripPrefix(vars map[string]string, prefix string) map[string]string {
	result := make(map[string]string)
	for k, v := range vars {
		if len(k) > len(prefix) && strings.HasPrefix(k, prefix) {
			result[k[len(prefix):]] = v
		}
	}
	return result
}

// Merge combines variable sets; later sources win
func Merge(sources ...map[string]string) map[string]string {
	result := make(map[string]string)
	for _, src := range sources {
		for k, v := range src {
			result[k] = v
		}
	}
	return result
}

// Load reads GIRAF_* variables from an optional .env file and the process
// environment, the process environment taking precedence. A missing default
// ".env" is not an error; an explicitly named file must exist.
func Load(envFile string) (map[string]string, error) {
	var fileVars map[string]string
	switch {
	case envFile != "":
		vars, err := LoadDotEnv(envFile)
		if err != nil {
			return nil, err
		}
		fileVars = vars
	default:
		if _, err := os.Stat(".env"); err == nil {
			vars, err := LoadDotEnv(".env")
			if err != nil {
				return nil, err
			}
			fileVars = vars
		}
	}
	return Merge(StripPrefix(fileVars, Prefix), LoadSystemEnv(Prefix)), nil
}
