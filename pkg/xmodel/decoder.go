package xmodel

import (
	"fmt"

	"go.uber.org/zap"
)

// decoder mirrors encoder: it reads the same fields in the same depth-first
// order, so the n-th new identity in the stream is the n-th structure bound.
type decoder struct {
	r   *reader
	ids *decodeTable
	log *zap.Logger
	err error // first structural error; I/O errors stick in r.err
}

func (d *decoder) fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

func (d *decoder) failed() bool {
	return d.err != nil || d.r.err != nil
}

// Err returns the first error met, structural or I/O.
func (d *decoder) Err() error {
	if d.err != nil {
		return d.err
	}
	return d.r.err
}

// getStructure reads a reference. A new identity must be the next one in
// sequence and is followed by a tag and payload; the instance is bound
// before its payload is read so cycles back to it resolve.
func (d *decoder) getStructure() Structure {
	if d.failed() {
		return nil
	}
	offset := d.r.n
	id := d.r.uint32()
	if d.failed() || id == NullID {
		return nil
	}
	if s, ok := d.ids.resolve(id); ok {
		return s
	}
	if err := d.ids.expect(id); err != nil {
		d.fail(fmt.Errorf("%w at offset %d", err, offset))
		return nil
	}

	tag := Tag(d.r.uint32())
	if d.failed() {
		return nil
	}
	s, ok := newStructure(tag)
	if !ok {
		d.fail(fmt.Errorf("%w: %d for identity %d at offset %d", ErrUnknownStructureTag, uint32(tag), id, offset))
		return nil
	}
	d.ids.bind(s)
	if ce := d.log.Check(zap.DebugLevel, "decode structure"); ce != nil {
		ce.Write(zap.Uint32("id", id), zap.Stringer("tag", tag), zap.Int64("offset", offset))
	}
	d.getPayload(s)
	return s
}

func (d *decoder) getPayload(s Structure) {
	switch v := s.(type) {
	case *AxisRotate:
		d.r.float32Array(v.Value[:])
	case *Quaternion:
		d.r.float32Array(v.Value[:])
	case *Scale:
		d.r.float32Array(v.Value[:])
	case *Translate:
		d.r.float32Array(v.Value[:])
	case *Matrix:
		d.r.float32Array(v.Value[:])
	case *Container:
		d.getContainer(v)
	case *Texture:
		d.getTexture(v)
	case *Material:
		d.getMaterial(v)
	case *Mesh:
		d.getMesh(v)
	case *Node:
		d.getNode(v)
	case *Kinematic:
		d.getKinematic(v)
	case *Animation:
		d.getAnimation(v)
	case *AnimationKey:
		d.getAnimationKey(v)
	case *AnimationSet:
		d.getAnimationSet(v)
	}
}

// getRef reads a reference that must hold a T, or nil.
func getRef[T Structure](d *decoder, what string) T {
	var zero T
	s := d.getStructure()
	if s == nil {
		return zero
	}
	v, ok := s.(T)
	if !ok {
		d.fail(fmt.Errorf("%w: %s where %s expected", ErrStructureMismatch, s.Tag(), what))
		return zero
	}
	return v
}

// getList reads a u16 count followed by that many references to T.
func getList[T Structure](d *decoder, what string) []T {
	n := int(d.r.uint16())
	if n == 0 || d.failed() {
		return nil
	}
	out := make([]T, 0, n)
	for i := 0; i < n && !d.failed(); i++ {
		out = append(out, getRef[T](d, what))
	}
	return out
}

func (d *decoder) getUserData() UserData {
	if b := d.r.blob(); len(b) > 0 {
		return UserData(b)
	}
	return nil
}

func (d *decoder) getContainer(c *Container) {
	c.Name = d.r.string()
	c.Textures = getList[*Texture](d, "texture")
	c.Materials = getList[*Material](d, "material")
	c.Meshes = getList[*Mesh](d, "mesh")
	c.Nodes = getList[*Node](d, "node")
	c.TimeRate = d.r.float64()
	c.AnimationSets = getList[*AnimationSet](d, "animation set")
	c.UserData = d.getUserData()
}

func (d *decoder) getTexture(t *Texture) {
	t.Name = d.r.string()
	t.Ref = d.r.string()
	t.Data = d.r.blob()
	t.UserData = d.getUserData()
}

func (d *decoder) getMaterial(m *Material) {
	m.Name = d.r.string()

	d.r.float32Array(m.Emissive[:])
	d.r.float32Array(m.Ambient[:])
	d.r.float32Array(m.Diffuse[:])
	d.r.float32Array(m.Specular[:])
	m.Shininess = d.r.float32()
	m.Bump = d.r.float32()

	m.EmissiveMap = getRef[*Texture](d, "emissive map texture")
	m.AmbientMap = getRef[*Texture](d, "ambient map texture")
	m.DiffuseMap = getRef[*Texture](d, "diffuse map texture")
	m.SpecularMap = getRef[*Texture](d, "specular map texture")
	m.ShininessMap = getRef[*Texture](d, "shininess map texture")
	m.BumpMap = getRef[*Texture](d, "bump map texture")

	m.DrawMode = DrawMode(d.r.uint32())
	m.UserData = d.getUserData()
}

func (d *decoder) getPool() Pool {
	count := int(d.r.uint32())
	if count == 0 || d.failed() {
		return Pool{}
	}
	size := int(d.r.uint8())
	return Pool{Size: size, Data: d.r.float32s(count * size)}
}

func (d *decoder) getMesh(m *Mesh) {
	m.Name = d.r.string()

	m.Positions = d.getPool()
	m.Normals = d.getPool()
	m.Colors = d.getPool()
	m.TexCoords = d.getPool()

	hasSkin := d.r.bool()
	if hasSkin {
		m.Skin = &Skin{}
		d.getSkin(m.Skin)
	}

	hasPosition := m.Positions.Count() > 0
	hasNormal := m.Normals.Count() > 0
	hasColor := m.Colors.Count() > 0
	hasTexCoord := m.TexCoords.Count() > 0

	if n := int(d.r.uint32()); n > 0 && !d.failed() {
		m.Vertices = make([]Vertex, 0, min(n, maxPrealloc))
		for i := 0; i < n && !d.failed(); i++ {
			v := NewVertex()
			if hasPosition {
				v.Position = int32(d.r.uint32())
			}
			if hasNormal {
				v.Normal = int32(d.r.uint32())
			}
			if hasColor {
				v.Color = int32(d.r.uint32())
			}
			if hasTexCoord {
				v.TexCoord = int32(d.r.uint32())
			}
			if hasSkin {
				v.SkinWeight = int32(d.r.uint32())
			}
			m.Vertices = append(m.Vertices, v)
		}
	}

	m.Materials = getList[*Material](d, "material")

	if n := int(d.r.uint32()); n > 0 && !d.failed() {
		m.Elements = make([]Element, 0, min(n, maxPrealloc))
		for i := 0; i < n && !d.failed(); i++ {
			el := Element{Material: int16(d.r.uint16())}
			if k := int(d.r.uint8()); k > 0 {
				el.Vertices = make([]uint32, k)
				for j := range el.Vertices {
					el.Vertices[j] = d.r.uint32()
				}
			}
			m.Elements = append(m.Elements, el)
		}
	}

	m.UserData = d.getUserData()
}

func (d *decoder) getSkin(s *Skin) {
	n := int(d.r.uint32())
	s.Stride = int(d.r.uint8())
	if n > 0 && !d.failed() {
		s.Counts = make([]uint8, 0, min(n, maxPrealloc))
		s.Indices = make([]uint16, 0, min(n*s.Stride, maxPrealloc))
		s.Weights = make([]float32, 0, min(n*s.Stride, maxPrealloc))
		for i := 0; i < n && !d.failed(); i++ {
			active := d.r.uint8()
			if int(active) > s.Stride {
				d.fail(fmt.Errorf("%w: skin entry %d has %d weights, stride %d",
					ErrMalformed, i, active, s.Stride))
				return
			}
			s.Counts = append(s.Counts, active)
			for j := 0; j < s.Stride; j++ {
				if j < int(active) {
					s.Indices = append(s.Indices, d.r.uint16())
					s.Weights = append(s.Weights, d.r.float32())
				} else {
					s.Indices = append(s.Indices, 0)
					s.Weights = append(s.Weights, 0)
				}
			}
		}
	}

	bones := int(d.r.uint16())
	if bones == 0 || d.failed() {
		return
	}
	s.Nodes = make([]*Node, 0, bones)
	for i := 0; i < bones && !d.failed(); i++ {
		s.Nodes = append(s.Nodes, getRef[*Node](d, "bone node"))
	}
	s.OffsetMatrices = make([][SizeMatrix]float32, bones)
	for i := range s.OffsetMatrices {
		d.r.float32Array(s.OffsetMatrices[i][:])
	}
	s.OffsetQuaternions = make([][SizeQuaternion]float32, bones)
	for i := range s.OffsetQuaternions {
		d.r.float32Array(s.OffsetQuaternions[i][:])
	}
}

func (d *decoder) getNode(n *Node) {
	n.Name = d.r.string()
	n.Connected = d.r.bool()

	d.r.boolArray(n.IKLockAxis[:])
	d.r.boolArray(n.IKLimitAngle[:])
	d.r.float32Array(n.IKMinAngle[:])
	d.r.float32Array(n.IKMaxAngle[:])
	d.r.float32Array(n.BoneTail[:])

	for i := range n.Transforms {
		n.Transforms[i] = getRef[Transform](d, "transform")
	}

	n.Kinematics = getList[*Kinematic](d, "kinematic")
	n.Meshes = getList[*Mesh](d, "mesh")
	n.Children = getList[*Node](d, "child node")
	for _, child := range n.Children {
		if child != nil {
			child.parent = n
		}
	}
	n.UserData = d.getUserData()
}

func (d *decoder) getKinematic(k *Kinematic) {
	k.Target = getRef[*Node](d, "kinematic target node")
	k.MaxIterations = d.r.uint16()
	k.ChainLength = d.r.uint16()
	k.Influence = d.r.float32()
}

func (d *decoder) getAnimation(a *Animation) {
	a.Name = d.r.string()
	a.Target = getRef[Transform](d, "animation target transform")
	a.Index = int16(d.r.uint16())
	a.Keys = getList[*AnimationKey](d, "animation key")
	a.Children = getList[*Animation](d, "child animation")
	a.UserData = d.getUserData()
}

func (d *decoder) getAnimationKey(k *AnimationKey) {
	k.Interpolation = Interpolation(int8(d.r.uint8()))
	k.Time = d.r.float64()
	k.Value = d.r.float32s(int(d.r.uint16()))
}

func (d *decoder) getAnimationSet(s *AnimationSet) {
	s.Name = d.r.string()
	s.Animations = getList[*Animation](d, "animation")
	s.UserData = d.getUserData()
}
