package dimension_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymodder/hieronymus/internal/dimension"
)

func TestNewDefaultsToWonderland(t *testing.T) {
	m := dimension.New()
	assert.Equal(t, "hieronymus:wonderland", m.CurrentDimensionName())
}

func TestCodecContainsBothRegistryNames(t *testing.T) {
	m := dimension.New()
	codec := m.Codec()

	assert.Contains(t, string(codec), "minecraft:dimension_type")
	assert.Contains(t, string(codec), "minecraft:worldgen/biome")
	assert.Contains(t, string(codec), "hieronymus:wonderland")
	assert.Contains(t, string(codec), "minecraft:plains")
}

func TestCurrentDimensionIsNonEmpty(t *testing.T) {
	m := dimension.New()
	blob := m.CurrentDimension()
	assert.NotEmpty(t, blob)
	// starts with the unnamed root TAG_Compound header: tag id 0x0a, name length 0x0000.
	assert.Equal(t, []byte{0x0a, 0x00, 0x00}, blob[:3])
}
