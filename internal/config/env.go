package config

import (
	"os"
	"regexp"

	"github.com/joho/godotenv"
)

var (
	envWithDefault = regexp.MustCompile(`\$\{([A-Z_][A-Z0-9_]*):-(.*?)\}`)
	envBraced      = regexp.MustCompile(`\$\{([A-Z_][A-Z0-9_]*)\}`)
	envSimple      = regexp.MustCompile(`\$([A-Z_][A-Z0-9_]*)`)
)

// loadDotenv loads a .env file into the process environment if path is
// non-empty and the file exists; missing files are not an error.
func loadDotenv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

// expandEnvVars resolves ${VAR}, ${VAR:-default}, and $VAR references
// in raw against the process environment.
func expandEnvVars(raw string) string {
	raw = envWithDefault.ReplaceAllStringFunc(raw, func(m string) string {
		groups := envWithDefault.FindStringSubmatch(m)
		if v, ok := os.LookupEnv(groups[1]); ok {
			return v
		}
		return groups[2]
	})
	raw = envBraced.ReplaceAllStringFunc(raw, func(m string) string {
		groups := envBraced.FindStringSubmatch(m)
		return os.Getenv(groups[1])
	})
	raw = envSimple.ReplaceAllStringFunc(raw, func(m string) string {
		groups := envSimple.FindStringSubmatch(m)
		return os.Getenv(groups[1])
	})
	return raw
}
