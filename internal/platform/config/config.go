package config

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultDataDir is where container deployments mount the application's
// data volume.
const DefaultDataDir = "/app/data"

// Config captures process-level configuration so main stays lean.
type Config struct {
	DataDir     string
	PostgresDSN string
	LogLevel    string
	PushGateway string
}

// Getenv abstracts environment lookup so resolution rules stay testable.
type Getenv func(key string) string

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	return FromGetenv(os.Getenv)
}

// FromGetenv is FromEnv with an injectable environment.
func FromGetenv(getenv Getenv) Config {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	return Config{
		DataDir:     ResolveDataDir(getenv, getenv("JANITOR_DATA_DIR"), cwd),
		PostgresDSN: getenv("JANITOR_PG_DSN"),
		LogLevel:    getenv("LOG_LEVEL"),
		PushGateway: getenv("PUSHGATEWAY_URL"),
	}
}

// ResolveDataDir picks the data directory with explicit precedence:
// DATA_DIR environment variable, then the configured settings value, then
// DefaultDataDir. A Windows user-profile path leaking in from a developer
// settings file is replaced with the container default, since inside a
// container it can never exist. Relative results are anchored at cwd.
func ResolveDataDir(getenv Getenv, settingsDir, cwd string) string {
	dir := strings.TrimSpace(getenv("DATA_DIR"))
	if dir == "" {
		dir = strings.TrimSpace(settingsDir)
	}
	if dir == "" {
		dir = DefaultDataDir
	}
	if strings.Contains(dir, "C:/Users") || strings.Contains(dir, `C:\Users`) {
		dir = DefaultDataDir
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(cwd, dir)
	}
	return filepath.Clean(dir)
}

// Resolve returns the first non-empty value among an explicit argument, an
// environment variable, and an interactive prompt. The prompt is only
// consulted when non-nil; callers pass nil when no terminal is attached.
// This is the general form of the args > env > prompt rule the admin
// credentials use.
func Resolve(explicit string, getenv Getenv, envKey string, prompt func() (string, error)) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if v := getenv(envKey); v != "" {
		return v, nil
	}
	if prompt != nil {
		return prompt()
	}
	return "", nil
}
