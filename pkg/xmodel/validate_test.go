package xmodel

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestValidateSample(t *testing.T) {
	assert.NoError(t, Validate(sampleContainer()))
	assert.NoError(t, Validate(NewContainer("")))
	assert.ErrorIs(t, Validate(nil), ErrNilContainer)
}

func TestValidateFindings(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Container)
		want   error
		path   string
	}{
		{
			name:   "ragged pool",
			mutate: func(c *Container) { c.Meshes[0].Positions.Data = c.Meshes[0].Positions.Data[:4] },
			want:   ErrMalformed,
			path:   "meshes[0].positions",
		},
		{
			name:   "position out of range",
			mutate: func(c *Container) { c.Meshes[0].Vertices[1].Position = 9 },
			want:   ErrMalformed,
			path:   "meshes[0].vertices[1].position",
		},
		{
			name:   "index into absent pool",
			mutate: func(c *Container) { c.Meshes[0].Vertices[0].Color = 0 },
			want:   ErrMalformed,
			path:   "meshes[0].vertices[0].color",
		},
		{
			name:   "skin weight out of range",
			mutate: func(c *Container) { c.Meshes[0].Vertices[2].SkinWeight = 2 },
			want:   ErrMalformed,
			path:   "meshes[0].vertices[2].skin_weight",
		},
		{
			name:   "element material out of range",
			mutate: func(c *Container) { c.Meshes[0].Elements[0].Material = 3 },
			want:   ErrMalformed,
			path:   "meshes[0].elements[0].material",
		},
		{
			name:   "element vertex out of range",
			mutate: func(c *Container) { c.Meshes[0].Elements[0].Vertices[2] = 7 },
			want:   ErrMalformed,
			path:   "meshes[0].elements[0].vertices[2]",
		},
		{
			name:   "too many element vertices",
			mutate: func(c *Container) { c.Meshes[0].Elements[0].Vertices = make([]uint32, 256) },
			want:   ErrOverflow,
			path:   "meshes[0].elements[0].vertices",
		},
		{
			name:   "skin count above stride",
			mutate: func(c *Container) { c.Meshes[0].Skin.Counts[0] = 3 },
			want:   ErrMalformed,
			path:   "meshes[0].skin.counts[0]",
		},
		{
			name:   "skin bone index out of range",
			mutate: func(c *Container) { c.Meshes[0].Skin.Indices[3] = 2 },
			want:   ErrMalformed,
			path:   "meshes[0].skin.indices[3]",
		},
		{
			name:   "missing offset matrix",
			mutate: func(c *Container) { c.Meshes[0].Skin.OffsetMatrices = c.Meshes[0].Skin.OffsetMatrices[:1] },
			want:   ErrMalformed,
			path:   "meshes[0].skin.offset_matrices",
		},
		{
			name:   "kinematic without target",
			mutate: func(c *Container) { c.Nodes[0].Children[0].Kinematics[0].Target = nil },
			want:   ErrMalformed,
			path:   "nodes[0].children[0].kinematics[0]",
		},
		{
			name:   "component index out of range",
			mutate: func(c *Container) { c.AnimationSets[0].Animations[0].Index = 4 },
			want:   ErrMalformed,
			path:   "animation_sets[0].animations[0].index",
		},
		{
			name: "key arity mismatch",
			mutate: func(c *Container) {
				c.AnimationSets[0].Animations[0].Keys[1].Value = []float32{1, 2, 3}
			},
			want: ErrMalformed,
			path: "animation_sets[0].animations[0].keys[1].value",
		},
		{
			name: "keys out of order",
			mutate: func(c *Container) {
				c.AnimationSets[0].Animations[0].Children[0].Keys[1].Time = -1
			},
			want: ErrMalformed,
			path: "animation_sets[0].animations[0].children[0].keys[1].time",
		},
		{
			name:   "keys without target",
			mutate: func(c *Container) { c.AnimationSets[0].Animations[0].Target = nil },
			want:   ErrMalformed,
			path:   "animation_sets[0].animations[0].target",
		},
		{
			name:   "name too long",
			mutate: func(c *Container) { c.Textures[0].Name = strings.Repeat("n", 1<<16) },
			want:   ErrOverflow,
			path:   "textures[0].name",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := sampleContainer()
			tt.mutate(c)
			err := Validate(c)
			require.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), tt.path+":")
		})
	}
}

func TestValidateReportsEveryFinding(t *testing.T) {
	c := sampleContainer()
	c.Meshes[0].Vertices[0].Position = 9
	c.Meshes[0].Vertices[1].Position = 9
	c.Nodes[0].Name = strings.Repeat("n", 1<<16)

	err := Validate(c)
	assert.Len(t, multierr.Errors(err), 3)
}

func TestValidateVisitsSharedStructuresOnce(t *testing.T) {
	c := sampleContainer()
	c.Textures[0].Ref = strings.Repeat("r", 1<<16)

	err := Validate(c)
	require.ErrorIs(t, err, ErrOverflow)
	assert.Len(t, multierr.Errors(err), 1)
}
