package config

import (
	"runtime"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "org.gradle.api.provider.Property", cfg.WrapperType)
	assert.Equal(t, "org.gradle.api.tasks.Input", cfg.InputAnnotation)
	assert.Equal(t, "Property", cfg.WrapperSimpleName())
	assert.Equal(t, "org.gradle.api.provider", cfg.WrapperPackage())
}

func TestLoadRuntimeDefaults(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvWorkers, "")
	t.Setenv(EnvDryRun, "")

	settings, err := LoadRuntime()
	require.NoError(t, err)
	assert.Equal(t, log.InfoLevel, settings.LogLevel)
	assert.Equal(t, runtime.NumCPU(), settings.Workers)
	assert.False(t, settings.DryRun)
}

func TestLoadRuntimeFromEnvironment(t *testing.T) {
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvWorkers, "3")
	t.Setenv(EnvDryRun, "true")

	settings, err := LoadRuntime()
	require.NoError(t, err)
	assert.Equal(t, log.DebugLevel, settings.LogLevel)
	assert.Equal(t, 3, settings.Workers)
	assert.True(t, settings.DryRun)
}

func TestLoadRuntimeRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown level", EnvLogLevel, "loud"},
		{"non-numeric workers", EnvWorkers, "many"},
		{"zero workers", EnvWorkers, "0"},
		{"bad dry run", EnvDryRun, "perhaps"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Setenv(EnvLogLevel, "")
			t.Setenv(EnvWorkers, "")
			t.Setenv(EnvDryRun, "")
			t.Setenv(test.key, test.value)

			_, err := LoadRuntime()
			require.Error(t, err)
			assert.Contains(t, err.Error(), test.key)
		})
	}
}
