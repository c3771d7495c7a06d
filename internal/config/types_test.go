package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"

	"github.com/phanxgames/spritekit"
)

func TestAtlas_PackOptions(t *testing.T) {
	t.Parallel()

	assert.Equal(t, spritekit.DefaultPackOptions(), DefaultAtlas().PackOptions())

	a := Atlas{Padding: 1, SelectPadding: 2, Alignment: 4, AspectRatio: 0.5}
	assert.Equal(t, spritekit.PackOptions{Padding: 1, SelectPadding: 2, Alignment: 4, AspectRatio: 0.5}, a.PackOptions())
}

func TestConfig_MarshalRoundTrip(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Assets.Root = "assets"

	data, err := yaml.Marshal(cfg)
	assert.NoError(t, err)
	assert.Contains(t, string(data), "select_padding: 1")
	assert.Contains(t, string(data), "root: assets")

	var got Config
	assert.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, cfg, got)
}

func TestValidationError_Error(t *testing.T) {
	t.Parallel()

	err := ValidationError{Field: "atlas.padding", Message: "must not be negative"}
	assert.Equal(t, "validation error: atlas.padding: must not be negative", err.Error())
}
