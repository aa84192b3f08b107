package main

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/xmodel/internal/config"
	"github.com/Faultbox/xmodel/pkg/xmodel"
)

func box() *xmodel.Container {
	c := xmodel.NewContainer("box")
	tex := &xmodel.Texture{Name: "wood", Ref: "wood.png"}
	c.Textures = []*xmodel.Texture{tex}

	mat := xmodel.NewMaterial("varnish")
	mat.DiffuseMap = tex
	mat.SpecularMap = tex
	c.Materials = []*xmodel.Material{mat}

	mesh := &xmodel.Mesh{
		Name:      "lid",
		Positions: xmodel.Pool{Size: 3, Data: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}},
		Materials: []*xmodel.Material{mat},
		Elements:  []xmodel.Element{xmodel.NewElement(0, 0, 1, 2)},
	}
	for i := int32(0); i < 3; i++ {
		v := xmodel.NewVertex()
		v.Position = i
		mesh.Vertices = append(mesh.Vertices, v)
	}
	c.Meshes = []*xmodel.Mesh{mesh}

	root := xmodel.NewNode("root")
	move := xmodel.NewTranslate(0, 0, 0)
	root.Transforms[xmodel.TransformTranslate] = move
	root.Meshes = []*xmodel.Mesh{mesh}
	root.AddChild(xmodel.NewNode("hinge"))
	c.Nodes = []*xmodel.Node{root}

	swing := xmodel.NewAnimation("open", move)
	swing.Keys = []*xmodel.AnimationKey{
		xmodel.NewAnimationKey(0, 0, 0, 0),
		xmodel.NewAnimationKey(2, 0, 1, 0),
	}
	c.AnimationSets = []*xmodel.AnimationSet{{Name: "open", Animations: []*xmodel.Animation{swing}}}
	return c
}

func dumpTree(t *testing.T, c *xmodel.Container, cfg config.DumpConfig) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, writeDump(&buf, c, cfg))

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	return doc
}

func item(t *testing.T, v any, key string, i int) map[string]any {
	t.Helper()
	seq, ok := v.(map[string]any)[key].([]any)
	require.True(t, ok, "%s is not a list", key)
	require.Greater(t, len(seq), i)
	return seq[i].(map[string]any)
}

func TestDumpSharing(t *testing.T) {
	doc := dumpTree(t, box(), config.DumpConfig{})

	assert.Equal(t, 1, doc["id"])
	assert.Equal(t, "Container", doc["kind"])

	tex := item(t, doc, "textures", 0)
	assert.Equal(t, 2, tex["id"])
	assert.Equal(t, "wood.png", tex["path"])

	mat := item(t, doc, "materials", 0)
	assert.Equal(t, 3, mat["id"])
	assert.Equal(t, map[string]any{"ref": 2}, mat["diffuse_map"])
	assert.Equal(t, map[string]any{"ref": 2}, mat["specular_map"])
	assert.Nil(t, mat["bump_map"])

	mesh := item(t, doc, "meshes", 0)
	assert.Equal(t, 4, mesh["id"])
	assert.Equal(t, []any{map[string]any{"ref": 3}}, mesh["materials"])

	root := item(t, doc, "nodes", 0)
	assert.Equal(t, 5, root["id"])
	assert.Equal(t, 6, root["translate"].(map[string]any)["id"])
	assert.Equal(t, []any{map[string]any{"ref": 4}}, root["meshes"])
	assert.Equal(t, 7, item(t, root, "children", 0)["id"])

	anim := item(t, item(t, doc, "animation_sets", 0), "animations", 0)
	assert.Equal(t, 9, anim["id"])
	assert.Equal(t, map[string]any{"ref": 6}, anim["target"])
	assert.Equal(t, 2, anim["keys"])
	assert.NotContains(t, anim, "index")
}

func TestDumpPools(t *testing.T) {
	doc := dumpTree(t, box(), config.DumpConfig{Pools: true, MaxValues: 2})

	positions := item(t, doc, "meshes", 0)["positions"].(map[string]any)
	assert.Equal(t, 3, positions["count"])
	assert.Equal(t, []any{0.0, 0.0, "+7"}, positions["data"])

	anim := item(t, item(t, doc, "animation_sets", 0), "animations", 0)
	key := item(t, anim, "keys", 1)
	assert.Equal(t, 11, key["id"])
	assert.Equal(t, 2.0, key["time"])
	assert.Equal(t, "Linear", key["interpolation"])
}

func TestDumpUserData(t *testing.T) {
	c := box()
	c.UserData = xmodel.UserData{0xca, 0xfe}

	assert.Equal(t, 2, dumpTree(t, c, config.DumpConfig{})["user_data"])
	assert.Equal(t, "cafe", dumpTree(t, c, config.DumpConfig{UserData: true})["user_data"])
}

func TestCollectStats(t *testing.T) {
	s := collectStats(box())

	want := map[xmodel.Tag]int{
		xmodel.TagContainer:    1,
		xmodel.TagTexture:      1,
		xmodel.TagMaterial:     1,
		xmodel.TagMesh:         1,
		xmodel.TagNode:         2,
		xmodel.TagTranslate:    1,
		xmodel.TagAnimationSet: 1,
		xmodel.TagAnimation:    1,
		xmodel.TagAnimationKey: 2,
	}
	assert.Equal(t, want, s.counts)
	assert.Equal(t, 2, s.depth)
	assert.Equal(t, 3, s.vertices)
	assert.Equal(t, 1, s.elements)

	kinds := s.kinds()
	require.Len(t, kinds, len(want))
	assert.Equal(t, xmodel.TagTranslate, kinds[0].tag)
	assert.Equal(t, xmodel.TagAnimationSet, kinds[len(kinds)-1].tag)
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.0"},
		{2, "2.0"},
		{-0.5, "-0.5"},
		{1e21, "1e+21"},
		{math.Inf(1), ".inf"},
		{math.Inf(-1), "-.inf"},
		{math.NaN(), ".nan"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatFloat(tt.in, 64))
	}
	assert.Equal(t, "0.1", formatFloat(float64(float32(0.1)), 32))
}

func TestFirstDifference(t *testing.T) {
	tests := []struct {
		name string
		a, b []byte
		want int
	}{
		{"equal", []byte{1, 2, 3}, []byte{1, 2, 3}, -1},
		{"empty", nil, nil, -1},
		{"differs", []byte{1, 2, 3}, []byte{1, 9, 3}, 1},
		{"shorter", []byte{1, 2}, []byte{1, 2, 3}, 2},
		{"longer", []byte{1, 2, 3}, []byte{1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, firstDifference(tt.a, tt.b))
		})
	}
}
