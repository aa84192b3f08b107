package xmodel

import (
	"fmt"
	"math"

	"go.uber.org/multierr"
)

// Validate checks that c can be written and read back unchanged. It reports
// every problem it finds, each wrapped with ErrMalformed or ErrOverflow and
// prefixed with the path of the offending field.
func Validate(c *Container) error {
	if c == nil {
		return ErrNilContainer
	}
	v := &validator{seen: make(map[Structure]bool)}
	v.container(c)
	return v.err
}

type validator struct {
	err  error
	seen map[Structure]bool
}

func (v *validator) malformed(path, format string, args ...any) {
	v.err = multierr.Append(v.err, fmt.Errorf("%s: %w: %s", path, ErrMalformed, fmt.Sprintf(format, args...)))
}

func (v *validator) overflow(path string, n, limit int) {
	v.err = multierr.Append(v.err, fmt.Errorf("%s: %w: %d (max %d)", path, ErrOverflow, n, limit))
}

func (v *validator) count(path string, n, limit int) {
	if n > limit {
		v.overflow(path, n, limit)
	}
}

func (v *validator) str(path, s string) {
	v.count(path, len(s), math.MaxUint16)
}

// first reports whether s is visited for the first time. Shared structures
// are checked once, at their first path.
func (v *validator) first(s Structure) bool {
	if v.seen[s] {
		return false
	}
	v.seen[s] = true
	return true
}

func (v *validator) container(c *Container) {
	v.first(c)
	v.str("name", c.Name)
	v.count("textures", len(c.Textures), math.MaxUint16)
	v.count("materials", len(c.Materials), math.MaxUint16)
	v.count("meshes", len(c.Meshes), math.MaxUint16)
	v.count("nodes", len(c.Nodes), math.MaxUint16)
	v.count("animation_sets", len(c.AnimationSets), math.MaxUint16)

	for i, t := range c.Textures {
		v.texture(fmt.Sprintf("textures[%d]", i), t)
	}
	for i, m := range c.Materials {
		v.material(fmt.Sprintf("materials[%d]", i), m)
	}
	for i, m := range c.Meshes {
		v.mesh(fmt.Sprintf("meshes[%d]", i), m)
	}
	for i, n := range c.Nodes {
		v.node(fmt.Sprintf("nodes[%d]", i), n)
	}
	for i, s := range c.AnimationSets {
		v.animationSet(fmt.Sprintf("animation_sets[%d]", i), s)
	}
}

func (v *validator) texture(path string, t *Texture) {
	if t == nil || !v.first(t) {
		return
	}
	v.str(path+".name", t.Name)
	v.str(path+".ref", t.Ref)
}

func (v *validator) material(path string, m *Material) {
	if m == nil || !v.first(m) {
		return
	}
	v.str(path+".name", m.Name)
	for i, t := range m.Maps() {
		v.texture(fmt.Sprintf("%s.maps[%d]", path, i), t)
	}
}

func (v *validator) pool(path string, p Pool) int {
	if len(p.Data) == 0 {
		return 0
	}
	if p.Size <= 0 {
		v.malformed(path, "%d values with arity %d", len(p.Data), p.Size)
		return 0
	}
	if p.Size > math.MaxUint8 {
		v.overflow(path+".size", p.Size, math.MaxUint8)
	}
	if len(p.Data)%p.Size != 0 {
		v.malformed(path, "%d values is not a multiple of arity %d", len(p.Data), p.Size)
	}
	return p.Count()
}

func checkIndex(v *validator, path string, idx int32, count int) {
	switch {
	case count == 0 && idx != -1:
		v.malformed(path, "index %d into an absent pool is not carried on the wire", idx)
	case count > 0 && (idx < 0 || int(idx) >= count):
		v.malformed(path, "index %d out of range [0, %d)", idx, count)
	}
}

func (v *validator) mesh(path string, m *Mesh) {
	if m == nil || !v.first(m) {
		return
	}
	v.str(path+".name", m.Name)
	positions := v.pool(path+".positions", m.Positions)
	normals := v.pool(path+".normals", m.Normals)
	colors := v.pool(path+".colors", m.Colors)
	texCoords := v.pool(path+".tex_coords", m.TexCoords)

	weights := 0
	if m.Skin != nil {
		weights = v.skin(path+".skin", m.Skin)
	}

	for i, vx := range m.Vertices {
		vp := fmt.Sprintf("%s.vertices[%d]", path, i)
		checkIndex(v, vp+".position", vx.Position, positions)
		checkIndex(v, vp+".normal", vx.Normal, normals)
		checkIndex(v, vp+".color", vx.Color, colors)
		checkIndex(v, vp+".tex_coord", vx.TexCoord, texCoords)
		if m.Skin != nil {
			if vx.SkinWeight < -1 || int(vx.SkinWeight) >= weights {
				v.malformed(vp+".skin_weight", "index %d out of range [-1, %d)", vx.SkinWeight, weights)
			}
		} else if vx.SkinWeight != -1 {
			v.malformed(vp+".skin_weight", "index %d without a skin is not carried on the wire", vx.SkinWeight)
		}
	}

	v.count(path+".materials", len(m.Materials), math.MaxUint16)
	for i, mat := range m.Materials {
		v.material(fmt.Sprintf("%s.materials[%d]", path, i), mat)
	}

	for i, el := range m.Elements {
		ep := fmt.Sprintf("%s.elements[%d]", path, i)
		if el.Material < -1 || int(el.Material) >= len(m.Materials) {
			v.malformed(ep+".material", "index %d out of range [-1, %d)", el.Material, len(m.Materials))
		}
		v.count(ep+".vertices", len(el.Vertices), math.MaxUint8)
		for j, vi := range el.Vertices {
			if int64(vi) >= int64(len(m.Vertices)) {
				v.malformed(fmt.Sprintf("%s.vertices[%d]", ep, j), "index %d out of range [0, %d)", vi, len(m.Vertices))
			}
		}
	}
}

// skin validates s and returns its number of weighted index entries.
func (v *validator) skin(path string, s *Skin) int {
	n := s.Count()
	if s.Stride < 0 || s.Stride > math.MaxUint8 {
		v.overflow(path+".stride", s.Stride, math.MaxUint8)
	}
	need := n * s.Stride
	if len(s.Indices) != need || len(s.Weights) != need {
		v.malformed(path, "%d indices and %d weights, stride %d over %d entries needs %d",
			len(s.Indices), len(s.Weights), s.Stride, n, need)
	}
	for i, c := range s.Counts {
		if int(c) > s.Stride {
			v.malformed(fmt.Sprintf("%s.counts[%d]", path, i), "%d active weights exceed stride %d", c, s.Stride)
		}
	}

	bones := len(s.Nodes)
	v.count(path+".nodes", bones, math.MaxUint16)
	if len(s.OffsetMatrices) != bones {
		v.malformed(path+".offset_matrices", "%d matrices for %d bones", len(s.OffsetMatrices), bones)
	}
	if len(s.OffsetQuaternions) != bones {
		v.malformed(path+".offset_quaternions", "%d quaternions for %d bones", len(s.OffsetQuaternions), bones)
	}
	for i, b := range s.Nodes {
		if b == nil {
			v.malformed(fmt.Sprintf("%s.nodes[%d]", path, i), "nil bone")
		}
	}
	if s.Stride > 0 && len(s.Indices) >= need {
		for i, c := range s.Counts {
			active := min(int(c), s.Stride)
			for j, b := range s.Indices[i*s.Stride : i*s.Stride+active] {
				if int(b) >= bones {
					v.malformed(fmt.Sprintf("%s.indices[%d]", path, i*s.Stride+j), "bone %d out of range [0, %d)", b, bones)
				}
			}
		}
	}
	return n
}

func (v *validator) node(path string, n *Node) {
	if n == nil || !v.first(n) {
		return
	}
	v.str(path+".name", n.Name)
	v.count(path+".kinematics", len(n.Kinematics), math.MaxUint16)
	v.count(path+".meshes", len(n.Meshes), math.MaxUint16)
	v.count(path+".children", len(n.Children), math.MaxUint16)

	for i, k := range n.Kinematics {
		if k != nil && k.Target == nil {
			v.malformed(fmt.Sprintf("%s.kinematics[%d]", path, i), "constraint without a target")
		}
	}
	for i, m := range n.Meshes {
		v.mesh(fmt.Sprintf("%s.meshes[%d]", path, i), m)
	}
	for i, child := range n.Children {
		v.node(fmt.Sprintf("%s.children[%d]", path, i), child)
	}
}

func (v *validator) animationSet(path string, s *AnimationSet) {
	if s == nil || !v.first(s) {
		return
	}
	v.str(path+".name", s.Name)
	v.count(path+".animations", len(s.Animations), math.MaxUint16)
	for i, a := range s.Animations {
		v.animation(fmt.Sprintf("%s.animations[%d]", path, i), a)
	}
}

func (v *validator) animation(path string, a *Animation) {
	if a == nil || !v.first(a) {
		return
	}
	v.str(path+".name", a.Name)
	v.count(path+".keys", len(a.Keys), math.MaxUint16)
	v.count(path+".children", len(a.Children), math.MaxUint16)

	if len(a.Keys) > 0 && IsNil(a.Target) {
		v.malformed(path+".target", "keys without a target")
	}
	size := 0
	if !IsNil(a.Target) {
		size = len(a.Target.Values())
		if a.Index < AllComponents || int(a.Index) >= size {
			v.malformed(path+".index", "component %d out of range [-1, %d)", a.Index, size)
		}
	}
	for i, k := range a.Keys {
		if k == nil {
			continue
		}
		kp := fmt.Sprintf("%s.keys[%d].value", path, i)
		v.count(kp, len(k.Value), math.MaxUint16)
		switch {
		case size == 0:
		case a.Index == AllComponents && len(k.Value) != size:
			v.malformed(kp, "%d values for a %s target of %d components", len(k.Value), a.Target.Tag(), size)
		case a.Index != AllComponents && len(k.Value) < 1:
			v.malformed(kp, "no value for component %d", a.Index)
		}
		if i > 0 && a.Keys[i-1] != nil && k.Time < a.Keys[i-1].Time {
			v.malformed(fmt.Sprintf("%s.keys[%d].time", path, i), "%g before previous key at %g", k.Time, a.Keys[i-1].Time)
		}
	}
	for i, child := range a.Children {
		v.animation(fmt.Sprintf("%s.children[%d]", path, i), child)
	}
}
