// Package dimension implements the dimension-type/biome registry snapshot
// sent to clients once, in the Join Game packet: a small two-table NBT
// registry (dimension codec) plus the NBT for the client's chosen current
// dimension. The core never simulates terrain; this is boundary data only.
package dimension

import (
	"bytes"

	"github.com/dmitrymodder/hieronymus/internal/nbt"
)

// Type mirrors Minecraft's per-dimension NBT fields.
type Type struct {
	PiglinSafe         bool
	Natural            bool
	AmbientLight       float32
	FixedTime          *int64
	Infiniburn         string
	RespawnAnchorWorks bool
	HasSkylight        bool
	BedWorks           bool
	Effects            string
	HasRaids           bool
	MinY               int32
	Height             int32
	LogicalHeight      int32
	CoordinateScale    float32
	Ultrawarm          bool
	HasCeiling         bool
}

// BiomeEffects mirrors the nested "effects" compound of a biome entry.
type BiomeEffects struct {
	SkyColor      int32
	WaterFogColor int32
	FogColor      int32
	WaterColor    int32
}

// Biome mirrors Minecraft's per-biome NBT fields (the subset this server
// needs to populate a single, static biome entry).
type Biome struct {
	Precipitation string
	Depth         float32
	Temperature   float32
	Scale         float32
	Downfall      float32
	Category      string
	Effects       BiomeEffects
}

// entry is one (name, numeric id, element) row of a registry table.
type entry[T any] struct {
	name string
	id   int32
	elem T
}

// Manager owns the dimension-type and biome registries and the currently
// selected dimension. It is immutable after construction: the core never
// mutates world state.
type Manager struct {
	dimensionTypes []entry[Type]
	biomes         []entry[Biome]
	current        int32
}

// New builds the default registry: one dimension ("hieronymus:wonderland")
// and one biome ("minecraft:plains").
func New() *Manager {
	dimType := Type{
		PiglinSafe:         false,
		Natural:            true,
		AmbientLight:       0.0,
		FixedTime:          nil,
		Infiniburn:         "hieronymus:infiniburn_wonderland",
		RespawnAnchorWorks: false,
		HasSkylight:        true,
		BedWorks:           true,
		Effects:            "hieronymus:wonderland",
		HasRaids:           false,
		MinY:               0,
		Height:             256,
		LogicalHeight:      256,
		CoordinateScale:    1.0,
		Ultrawarm:          false,
		HasCeiling:         false,
	}
	biome := Biome{
		Precipitation: "rain",
		Depth:         0.125,
		Temperature:   0.8,
		Scale:         0.05,
		Downfall:      0.4,
		Category:      "plains",
		Effects: BiomeEffects{
			SkyColor:      0x7fa1ff,
			WaterFogColor: 0x7fa1ff,
			FogColor:      0x7fa1ff,
			WaterColor:    0x7fa1ff,
		},
	}
	return &Manager{
		dimensionTypes: []entry[Type]{{name: "hieronymus:wonderland", id: 0, elem: dimType}},
		biomes:         []entry[Biome]{{name: "minecraft:plains", id: 1, elem: biome}},
		current:        0,
	}
}

// CurrentDimensionName returns the identifier of the selected dimension,
// used for Join Game's world_name and world_names fields.
func (m *Manager) CurrentDimensionName() string {
	for _, e := range m.dimensionTypes {
		if e.id == m.current {
			return e.name
		}
	}
	return m.dimensionTypes[0].name
}

func (m *Manager) currentType() Type {
	for _, e := range m.dimensionTypes {
		if e.id == m.current {
			return e.elem
		}
	}
	return m.dimensionTypes[0].elem
}

// Codec serializes the full dimension-type + biome registry as NBT, the
// "minecraft:dimension_type"/"minecraft:worldgen/biome" registry shape
// clients expect in Join Game.
func (m *Manager) Codec() []byte {
	var buf bytes.Buffer
	w := nbt.NewWriter(&buf)
	w.StartCompound("")

	writeRegistry(w, "minecraft:dimension_type", m.dimensionTypes, writeDimensionType)
	writeRegistry(w, "minecraft:worldgen/biome", m.biomes, writeBiome)

	w.EndCompound()
	return buf.Bytes()
}

// CurrentDimension serializes just the selected dimension type's NBT, used
// for Join Game's standalone current-dimension field.
func (m *Manager) CurrentDimension() []byte {
	var buf bytes.Buffer
	w := nbt.NewWriter(&buf)
	w.StartCompound("")
	writeDimensionTypeFields(w, m.currentType())
	w.EndCompound()
	return buf.Bytes()
}

func writeRegistry[T any](w *nbt.Writer, name string, entries []entry[T], writeElem func(*nbt.Writer, T)) {
	w.StartCompound(name)
	w.String("type", name)
	w.StartList("value", nbt.TagCompound, int32(len(entries)))
	for _, e := range entries {
		w.String("name", e.name)
		w.Int("id", e.id)
		w.StartCompound("element")
		writeElem(w, e.elem)
		w.EndCompound()
		w.EndCompound() // closes the list element itself
	}
	w.EndCompound()
}

func writeDimensionType(w *nbt.Writer, t Type) {
	writeDimensionTypeFields(w, t)
}

func writeDimensionTypeFields(w *nbt.Writer, t Type) {
	w.Bool("piglin_safe", t.PiglinSafe)
	w.Bool("natural", t.Natural)
	w.Float("ambient_light", t.AmbientLight)
	if t.FixedTime != nil {
		w.Long("fixed_time", *t.FixedTime)
	}
	w.String("infiniburn", t.Infiniburn)
	w.Bool("respawn_anchor_works", t.RespawnAnchorWorks)
	w.Bool("has_skylight", t.HasSkylight)
	w.Bool("bed_works", t.BedWorks)
	w.String("effects", t.Effects)
	w.Bool("has_raids", t.HasRaids)
	w.Int("min_y", t.MinY)
	w.Int("height", t.Height)
	w.Int("logical_height", t.LogicalHeight)
	w.Float("coordinate_scale", t.CoordinateScale)
	w.Bool("ultrawarm", t.Ultrawarm)
	w.Bool("has_ceiling", t.HasCeiling)
}

func writeBiome(w *nbt.Writer, b Biome) {
	w.String("precipitation", b.Precipitation)
	w.Float("depth", b.Depth)
	w.Float("temperature", b.Temperature)
	w.Float("scale", b.Scale)
	w.Float("downfall", b.Downfall)
	w.String("category", b.Category)
	w.StartCompound("effects")
	w.Int("sky_color", b.Effects.SkyColor)
	w.Int("water_fog_color", b.Effects.WaterFogColor)
	w.Int("fog_color", b.Effects.FogColor)
	w.Int("water_color", b.Effects.WaterColor)
	w.EndCompound()
}
