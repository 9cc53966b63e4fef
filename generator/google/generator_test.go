package google

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qiwang999/service-topo-agent/generator"
)

func TestGenerationConfigCarriesDefaults(t *testing.T) {
	cfg := generationConfig(generator.NewOptions())

	require.NotNil(t, cfg.Temperature)
	assert.Equal(t, float32(0), *cfg.Temperature)
	require.NotNil(t, cfg.MaxOutputTokens)
	assert.Equal(t, int32(1024), *cfg.MaxOutputTokens)
}

func TestGenerationConfigHonorsOverrides(t *testing.T) {
	cfg := generationConfig(generator.NewOptions(
		generator.WithTemperature(0.9),
		generator.WithMaxTokens(2048),
	))

	require.NotNil(t, cfg.Temperature)
	assert.Equal(t, float32(0.9), *cfg.Temperature)
	require.NotNil(t, cfg.MaxOutputTokens)
	assert.Equal(t, int32(2048), *cfg.MaxOutputTokens)
}
