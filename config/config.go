// Package config holds the names that the migration keys on, and the settings
// of a single run of the command line tool
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const (
	// WrapperType is the type that plain properties are migrated to
	WrapperType = "org.gradle.api.provider.Property"
	// InputAnnotation marks the getters of task inputs
	InputAnnotation = "org.gradle.api.tasks.Input"
)

// Config is the set of names that decide what gets migrated. These are fixed,
// and only exist as values so that they can be passed around explicitly
type Config struct {
	InputAnnotation string
	WrapperType     string
}

// Default returns the configuration for the Gradle Provider API
func Default() Config {
	return Config{
		InputAnnotation: InputAnnotation,
		WrapperType:     WrapperType,
	}
}

// WrapperSimpleName returns the name that the wrapper type is written as,
// once imported
func (c Config) WrapperSimpleName() string {
	return c.WrapperType[strings.LastIndexByte(c.WrapperType, '.')+1:]
}

// WrapperPackage returns the package that the wrapper type is declared in
func (c Config) WrapperPackage() string {
	if i := strings.LastIndexByte(c.WrapperType, '.'); i >= 0 {
		return c.WrapperType[:i]
	}
	return ""
}

const (
	EnvLogLevel = "PROPMIGRATE_LOG_LEVEL"
	EnvWorkers  = "PROPMIGRATE_WORKERS"
	EnvDryRun   = "PROPMIGRATE_DRY_RUN"
)

// Runtime holds the settings of a single run
type Runtime struct {
	LogLevel log.Level
	// Workers bounds how many files are processed at once
	Workers int
	// DryRun prints the changes instead of writing them
	DryRun bool
}

// LoadRuntime reads the runtime settings from the environment, after loading
// a `.env` file from the working directory if there is one. Flags are applied
// on top of these by the caller
func LoadRuntime() (Runtime, error) {
	_ = godotenv.Load()

	settings := Runtime{
		LogLevel: log.InfoLevel,
		Workers:  runtime.NumCPU(),
	}

	if raw := strings.TrimSpace(os.Getenv(EnvLogLevel)); raw != "" {
		level, err := log.ParseLevel(raw)
		if err != nil {
			return Runtime{}, fmt.Errorf("%s: %w", EnvLogLevel, err)
		}
		settings.LogLevel = level
	}

	if raw := strings.TrimSpace(os.Getenv(EnvWorkers)); raw != "" {
		workers, err := strconv.Atoi(raw)
		if err != nil {
			return Runtime{}, fmt.Errorf("%s: %w", EnvWorkers, err)
		}
		if workers < 1 {
			return Runtime{}, fmt.Errorf("%s: must be at least 1, got %d", EnvWorkers, workers)
		}
		settings.Workers = workers
	}

	if raw := strings.TrimSpace(os.Getenv(EnvDryRun)); raw != "" {
		dryRun, err := strconv.ParseBool(raw)
		if err != nil {
			return Runtime{}, fmt.Errorf("%s: %w", EnvDryRun, err)
		}
		settings.DryRun = dryRun
	}

	return settings, nil
}
